package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"gorm.io/gorm"
)

// InvoiceTotals is the single-pass aggregate over the invoices table.
type InvoiceTotals struct {
	InvoiceCount    int64
	TotalAmount     decimal.Decimal
	TotalPaid       decimal.Decimal
	YearToDateSpend decimal.Decimal
	PendingCount    int64
	OverdueCount    int64
	PaidCount       int64
}

type VendorTotal struct {
	VendorID   snowflake.ID
	TotalSpend decimal.Decimal
}

type IssuedAmount struct {
	IssueDate   time.Time
	TotalAmount decimal.Decimal
}

type DueBalance struct {
	DueDate     time.Time
	TotalAmount decimal.Decimal
	PaidAmount  decimal.Decimal
}

type Repository interface {
	InvoiceTotals(ctx context.Context, db *gorm.DB, yearStart time.Time) (InvoiceTotals, error)
	CountVendors(ctx context.Context, db *gorm.DB) (int64, error)
	CountLineItems(ctx context.Context, db *gorm.DB) (int64, error)
	SpendByVendor(ctx context.Context, db *gorm.DB, limit int) ([]VendorTotal, error)
	FindVendors(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]invoicedomain.Vendor, error)
	VendorSummaries(ctx context.Context, db *gorm.DB) ([]VendorSummary, error)
	SpendByCategory(ctx context.Context, db *gorm.DB) ([]CategorySpend, error)
	IssuedAmounts(ctx context.Context, db *gorm.DB) ([]IssuedAmount, error)
	OpenBalancesDue(ctx context.Context, db *gorm.DB, from, to time.Time, statuses []invoicedomain.InvoiceStatus) ([]DueBalance, error)
}
