package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	DefaultCurrency      = "USD"
	UncategorizedLabel   = "Uncategorized"
	UnknownVendorLabel   = "Unknown"
	MaxTopVendorsLimit   = 100
	cashOutflowWeekStart = time.Sunday
)

type Stats struct {
	TotalSpend           decimal.Decimal `json:"totalSpend"`
	InvoiceCount         int64           `json:"invoiceCount"`
	VendorCount          int64           `json:"vendorCount"`
	AverageInvoiceAmount decimal.Decimal `json:"averageInvoiceAmount"`
	DocumentsUploaded    int64           `json:"documentsUploaded"`
	PendingInvoices      int64           `json:"pendingInvoices"`
	OverdueInvoices      int64           `json:"overdueInvoices"`
	PaidInvoices         int64           `json:"paidInvoices"`
	TotalPaid            decimal.Decimal `json:"totalPaid"`
	Currency             string          `json:"currency"`
	LastUpdated          time.Time       `json:"lastUpdated"`
}

type VendorSpend struct {
	VendorID   snowflake.ID    `json:"vendorId"`
	VendorName string          `json:"vendorName"`
	TotalSpend decimal.Decimal `json:"totalSpend"`
}

type VendorSummary struct {
	ID           snowflake.ID    `json:"id"`
	Name         string          `json:"name"`
	Email        *string         `json:"email"`
	Phone        *string         `json:"phone"`
	InvoiceCount int64           `json:"invoiceCount"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
}

type CategorySpend struct {
	Category     string          `json:"category"`
	TotalSpend   decimal.Decimal `json:"totalSpend"`
	InvoiceCount int64           `json:"invoiceCount"`
}

type MonthlyTrend struct {
	Month        string          `json:"month"`
	InvoiceCount int64           `json:"invoiceCount"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
}

// WeeklyOutflow is the open balance due in the week starting on Week.
// Month repeats the week key for dashboards that read the older field name.
type WeeklyOutflow struct {
	Week   string          `json:"week"`
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// WeekStart returns the Sunday that opens the UTC week containing t.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) - int(cashOutflowWeekStart) + 7) % 7
	return day.AddDate(0, 0, -offset)
}
