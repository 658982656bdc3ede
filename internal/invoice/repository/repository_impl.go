package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/invoice/domain"
	"github.com/smallbiznis/spendlens/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const rowColumns = `i.id, i.invoice_number, v.name AS vendor, v.email AS vendor_email,
	c.name AS customer, i.issue_date, i.due_date, i.total_amount, i.paid_amount,
	i.status, i.category, i.currency,
	(SELECT COUNT(*) FROM line_items li WHERE li.invoice_id = i.id) AS line_items_count,
	(SELECT COUNT(*) FROM payments p WHERE p.invoice_id = i.id) AS payments_count`

var sortColumns = map[domain.SortField]string{
	domain.SortIssueDate:     "i.issue_date",
	domain.SortDueDate:       "i.due_date",
	domain.SortTotalAmount:   "i.total_amount",
	domain.SortPaidAmount:    "i.paid_amount",
	domain.SortInvoiceNumber: "i.invoice_number",
	domain.SortStatus:        "i.status",
	domain.SortCreatedAt:     "i.created_at",
}

func (r *repo) base(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) *gorm.DB {
	stmt := db.WithContext(ctx).
		Table("invoices AS i").
		Joins("LEFT JOIN vendors v ON v.id = i.vendor_id").
		Joins("LEFT JOIN customers c ON c.id = i.customer_id")

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := containsPattern(search)
		stmt = stmt.Where(
			"LOWER(i.invoice_number) LIKE ? ESCAPE '!' OR LOWER(COALESCE(v.name, '')) LIKE ? ESCAPE '!' OR LOWER(COALESCE(i.notes, '')) LIKE ? ESCAPE '!'",
			like, like, like,
		)
	}
	if filter.Status != "" {
		stmt = stmt.Where("i.status = ?", string(filter.Status))
	}
	if vendor := strings.ToLower(strings.TrimSpace(filter.Vendor)); vendor != "" {
		stmt = stmt.Where("LOWER(COALESCE(v.name, '')) LIKE ? ESCAPE '!'", containsPattern(vendor))
	}
	return stmt
}

// '!' is the escape character because a backslash literal is not portable to MySQL.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern matches term anywhere, with LIKE wildcards taken literally.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

func orderClause(sort domain.Sort) string {
	column, ok := sortColumns[sort.Field]
	if !ok {
		column = sortColumns[domain.SortIssueDate]
	}
	direction := "ASC"
	if sort.Descending {
		direction = "DESC"
	}
	// id breaks ties so offset pages never overlap.
	return column + " " + direction + ", i.id " + direction
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, sort domain.Sort, page pagination.Pagination) ([]domain.InvoiceRow, error) {
	var rows []domain.InvoiceRow
	err := r.base(ctx, db, filter).
		Select(rowColumns).
		Order(orderClause(sort)).
		Limit(page.Limit).
		Offset(page.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) (int64, error) {
	var total int64
	if err := r.base(ctx, db, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ListForExport(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter) ([]domain.InvoiceRow, error) {
	var rows []domain.InvoiceRow
	err := r.base(ctx, db, filter).
		Select(rowColumns).
		Order(orderClause(domain.Sort{Field: domain.SortIssueDate, Descending: true})).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := db.WithContext(ctx).Where("id = ?", id).Take(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repo) FindVendor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := db.WithContext(ctx).Where("id = ?", id).Take(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repo) FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := db.WithContext(ctx).Where("id = ?", id).Take(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repo) ListLineItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.LineItem, error) {
	items := []domain.LineItem{}
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC, id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]domain.Payment, error) {
	payments := []domain.Payment{}
	err := db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("payment_date ASC, id ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repo) InsertVendor(ctx context.Context, db *gorm.DB, vendor *domain.Vendor) error {
	return db.WithContext(ctx).Create(vendor).Error
}

func (r *repo) InsertCustomer(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Create(customer).Error
}

// InsertInvoice writes the invoice and its owned rows in one transaction.
func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.Invoice, items []domain.LineItem, payments []domain.Payment) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(invoice).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		if len(payments) > 0 {
			if err := tx.Create(&payments).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
