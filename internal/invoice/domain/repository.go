package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, sort Sort, page pagination.Pagination) ([]InvoiceRow, error)
	Count(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) (int64, error)
	ListForExport(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter) ([]InvoiceRow, error)

	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Invoice, error)
	FindVendor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Vendor, error)
	FindCustomer(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Customer, error)
	ListLineItems(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]LineItem, error)
	ListPayments(ctx context.Context, db *gorm.DB, invoiceID snowflake.ID) ([]Payment, error)

	InsertVendor(ctx context.Context, db *gorm.DB, vendor *Vendor) error
	InsertCustomer(ctx context.Context, db *gorm.DB, customer *Customer) error
	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *Invoice, items []LineItem, payments []Payment) error
}
