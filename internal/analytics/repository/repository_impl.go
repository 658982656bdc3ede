package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const totalsQuery = `SELECT
	COUNT(*) AS invoice_count,
	COALESCE(SUM(total_amount), 0) AS total_amount,
	COALESCE(SUM(paid_amount), 0) AS total_paid,
	COALESCE(SUM(CASE WHEN issue_date >= ? THEN total_amount ELSE 0 END), 0) AS year_to_date_spend,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending_count,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS overdue_count,
	COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS paid_count
FROM invoices`

func (r *repo) InvoiceTotals(ctx context.Context, db *gorm.DB, yearStart time.Time) (domain.InvoiceTotals, error) {
	var totals domain.InvoiceTotals
	err := db.WithContext(ctx).
		Raw(totalsQuery, yearStart,
			invoicedomain.StatusPending, invoicedomain.StatusOverdue, invoicedomain.StatusPaid).
		Scan(&totals).Error
	return totals, err
}

func (r *repo) CountVendors(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&invoicedomain.Vendor{}).Count(&count).Error
	return count, err
}

func (r *repo) CountLineItems(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&invoicedomain.LineItem{}).Count(&count).Error
	return count, err
}

func (r *repo) SpendByVendor(ctx context.Context, db *gorm.DB, limit int) ([]domain.VendorTotal, error) {
	var rows []domain.VendorTotal
	err := db.WithContext(ctx).
		Table("invoices").
		Select("vendor_id, COALESCE(SUM(total_amount), 0) AS total_spend").
		Group("vendor_id").
		Order("total_spend DESC, vendor_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *repo) FindVendors(ctx context.Context, db *gorm.DB, ids []snowflake.ID) ([]invoicedomain.Vendor, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var vendors []invoicedomain.Vendor
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&vendors).Error
	return vendors, err
}

func (r *repo) VendorSummaries(ctx context.Context, db *gorm.DB) ([]domain.VendorSummary, error) {
	var rows []domain.VendorSummary
	err := db.WithContext(ctx).
		Table("vendors AS v").
		Select(`v.id, v.name, v.email, v.phone,
			COUNT(i.id) AS invoice_count,
			COALESCE(SUM(i.total_amount), 0) AS total_spend`).
		Joins("LEFT JOIN invoices i ON i.vendor_id = v.id").
		Group("v.id, v.name, v.email, v.phone").
		Order("v.name ASC, v.id ASC").
		Scan(&rows).Error
	return rows, err
}

const categoryExpr = "COALESCE(NULLIF(TRIM(category), ''), '" + domain.UncategorizedLabel + "')"

func (r *repo) SpendByCategory(ctx context.Context, db *gorm.DB) ([]domain.CategorySpend, error) {
	var rows []domain.CategorySpend
	err := db.WithContext(ctx).
		Table("invoices").
		Select(categoryExpr + " AS category, COALESCE(SUM(total_amount), 0) AS total_spend, COUNT(*) AS invoice_count").
		Group(categoryExpr).
		Order("total_spend DESC, category ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repo) IssuedAmounts(ctx context.Context, db *gorm.DB) ([]domain.IssuedAmount, error) {
	var rows []domain.IssuedAmount
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("issue_date, total_amount").
		Order("issue_date ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *repo) OpenBalancesDue(ctx context.Context, db *gorm.DB, from, to time.Time, statuses []invoicedomain.InvoiceStatus) ([]domain.DueBalance, error) {
	var rows []domain.DueBalance
	err := db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Select("due_date, total_amount, paid_amount").
		Where("due_date IS NOT NULL AND due_date >= ? AND due_date < ?", from, to).
		Where("status IN ?", statuses).
		Order("due_date ASC").
		Scan(&rows).Error
	return rows, err
}
