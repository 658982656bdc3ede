package domain

import "context"

type Service interface {
	Stats(ctx context.Context) (Stats, error)
	TopVendors(ctx context.Context, n int) ([]VendorSpend, error)
	ListVendors(ctx context.Context) ([]VendorSummary, error)
	CategorySpend(ctx context.Context) ([]CategorySpend, error)
	InvoiceTrends(ctx context.Context) ([]MonthlyTrend, error)
	CashOutflow(ctx context.Context) ([]WeeklyOutflow, error)
}
