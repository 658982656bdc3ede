package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	chatdomain "github.com/smallbiznis/spendlens/internal/chat/domain"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidDocument = errors.New("invalid_seed_document")
	ErrInvalidDate     = errors.New("invalid_seed_date")
)

// Document is one invoice in the seed file format.
type Document struct {
	InvoiceNumber  string              `json:"invoice_number"`
	Vendor         VendorDoc           `json:"vendor"`
	Customer       CustomerDoc         `json:"customer"`
	IssueDate      string              `json:"issue_date"`
	DueDate        string              `json:"due_date,omitempty"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaidAmount     decimal.NullDecimal `json:"paid_amount"`
	Status         string              `json:"status"`
	Category       string              `json:"category,omitempty"`
	Currency       string              `json:"currency,omitempty"`
	TaxAmount      decimal.NullDecimal `json:"tax_amount"`
	DiscountAmount decimal.NullDecimal `json:"discount_amount"`
	Notes          string              `json:"notes,omitempty"`
	LineItems      []LineItemDoc       `json:"line_items"`
	Payments       []PaymentDoc        `json:"payments,omitempty"`
}

type VendorDoc struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

type CustomerDoc struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type LineItemDoc struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Amount      decimal.Decimal `json:"amount"`
	Category    string          `json:"category,omitempty"`
}

type PaymentDoc struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   string          `json:"payment_date"`
	PaymentMethod string          `json:"payment_method"`
	ReferenceNo   string          `json:"reference_no,omitempty"`
	Notes         string          `json:"notes,omitempty"`
}

// Summary holds row counts after a seed run.
type Summary struct {
	Vendors   int64
	Customers int64
	Invoices  int64
	LineItems int64
	Payments  int64
}

// LoadFile reads a JSON array of seed documents.
func LoadFile(path string) ([]Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return docs, nil
}

type Seeder struct {
	db   *gorm.DB
	log  *zap.Logger
	node *snowflake.Node
	repo invoicedomain.Repository

	vendors   map[string]snowflake.ID
	customers map[string]snowflake.ID
}

func New(db *gorm.DB, log *zap.Logger, node *snowflake.Node, repo invoicedomain.Repository) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{
		db:        db,
		log:       log.Named("seed"),
		node:      node,
		repo:      repo,
		vendors:   map[string]snowflake.ID{},
		customers: map[string]snowflake.ID{},
	}
}

// Reset deletes every row from the six tables, children first.
func (s *Seeder) Reset(ctx context.Context) error {
	if s.db == nil {
		return errors.New("seed database handle is required")
	}
	models := []any{
		&chatdomain.ChatHistoryEntry{},
		&invoicedomain.Payment{},
		&invoicedomain.LineItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.Vendor{},
		&invoicedomain.Customer{},
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range models {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.vendors = map[string]snowflake.ID{}
	s.customers = map[string]snowflake.ID{}
	return nil
}

// Load validates and inserts every document. The first invalid document
// aborts the run; invoices inserted before it are kept.
func (s *Seeder) Load(ctx context.Context, docs []Document) (Summary, error) {
	if s.db == nil {
		return Summary{}, errors.New("seed database handle is required")
	}
	for i, doc := range docs {
		if err := s.insert(ctx, doc); err != nil {
			return Summary{}, fmt.Errorf("document %d (%s): %w", i, doc.InvoiceNumber, err)
		}
		s.log.Debug("seeded invoice", zap.String("invoice_number", doc.InvoiceNumber))
	}
	summary, err := s.Summary(ctx)
	if err != nil {
		return Summary{}, err
	}
	s.log.Info("seed complete",
		zap.Int64("vendors", summary.Vendors),
		zap.Int64("customers", summary.Customers),
		zap.Int64("invoices", summary.Invoices),
		zap.Int64("line_items", summary.LineItems),
		zap.Int64("payments", summary.Payments),
	)
	return summary, nil
}

func (s *Seeder) Summary(ctx context.Context) (Summary, error) {
	var summary Summary
	counts := []struct {
		model any
		dest  *int64
	}{
		{&invoicedomain.Vendor{}, &summary.Vendors},
		{&invoicedomain.Customer{}, &summary.Customers},
		{&invoicedomain.Invoice{}, &summary.Invoices},
		{&invoicedomain.LineItem{}, &summary.LineItems},
		{&invoicedomain.Payment{}, &summary.Payments},
	}
	for _, c := range counts {
		if err := s.db.WithContext(ctx).Model(c.model).Count(c.dest).Error; err != nil {
			return Summary{}, err
		}
	}
	return summary, nil
}

func (s *Seeder) insert(ctx context.Context, doc Document) error {
	invoice, items, payments, err := s.build(doc)
	if err != nil {
		return err
	}

	vendorID, err := s.ensureVendor(ctx, doc.Vendor)
	if err != nil {
		return err
	}
	customerID, err := s.ensureCustomer(ctx, doc.Customer)
	if err != nil {
		return err
	}
	invoice.VendorID = vendorID
	invoice.CustomerID = customerID

	return s.repo.InsertInvoice(ctx, s.db, invoice, items, payments)
}

func (s *Seeder) build(doc Document) (*invoicedomain.Invoice, []invoicedomain.LineItem, []invoicedomain.Payment, error) {
	number := strings.TrimSpace(doc.InvoiceNumber)
	if number == "" {
		return nil, nil, nil, fmt.Errorf("%w: invoice_number is required", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Vendor.Name) == "" {
		return nil, nil, nil, fmt.Errorf("%w: vendor.name is required", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Customer.Name) == "" {
		return nil, nil, nil, fmt.Errorf("%w: customer.name is required", ErrInvalidDocument)
	}
	status, err := invoicedomain.ParseInvoiceStatus(doc.Status)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%w: status %q", err, doc.Status)
	}
	if doc.TotalAmount.IsNegative() {
		return nil, nil, nil, fmt.Errorf("%w: total_amount is negative", ErrInvalidDocument)
	}
	issueDate, err := parseDate(doc.IssueDate)
	if err != nil {
		return nil, nil, nil, err
	}
	var dueDate *time.Time
	if strings.TrimSpace(doc.DueDate) != "" {
		parsed, err := parseDate(doc.DueDate)
		if err != nil {
			return nil, nil, nil, err
		}
		dueDate = &parsed
	}

	paid := decimal.Zero
	if doc.PaidAmount.Valid {
		paid = doc.PaidAmount.Decimal
	}
	currency := strings.ToUpper(strings.TrimSpace(doc.Currency))
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	invoice := &invoicedomain.Invoice{
		ID:             s.node.Generate(),
		InvoiceNumber:  number,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		TotalAmount:    doc.TotalAmount,
		PaidAmount:     paid,
		Status:         status,
		Category:       optional(doc.Category),
		Currency:       currency,
		TaxAmount:      doc.TaxAmount,
		DiscountAmount: doc.DiscountAmount,
		Notes:          optional(doc.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	items := make([]invoicedomain.LineItem, 0, len(doc.LineItems))
	for _, item := range doc.LineItems {
		items = append(items, invoicedomain.LineItem{
			ID:          s.node.Generate(),
			InvoiceID:   invoice.ID,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Amount:      item.Amount,
			Category:    optional(item.Category),
			CreatedAt:   now,
		})
	}

	payments := make([]invoicedomain.Payment, 0, len(doc.Payments))
	for _, p := range doc.Payments {
		paidAt, err := parseDate(p.PaymentDate)
		if err != nil {
			return nil, nil, nil, err
		}
		payments = append(payments, invoicedomain.Payment{
			ID:            s.node.Generate(),
			InvoiceID:     invoice.ID,
			Amount:        p.Amount,
			PaymentDate:   paidAt,
			PaymentMethod: p.PaymentMethod,
			ReferenceNo:   optional(p.ReferenceNo),
			Notes:         optional(p.Notes),
			CreatedAt:     now,
		})
	}

	return invoice, items, payments, nil
}

func (s *Seeder) ensureVendor(ctx context.Context, doc VendorDoc) (snowflake.ID, error) {
	name := strings.TrimSpace(doc.Name)
	if id, ok := s.vendors[name]; ok {
		return id, nil
	}

	var vendor invoicedomain.Vendor
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&vendor).Error
	if err == nil {
		s.vendors[name] = vendor.ID
		return vendor.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	now := time.Now().UTC()
	vendor = invoicedomain.Vendor{
		ID:        s.node.Generate(),
		Name:      name,
		Email:     optional(doc.Email),
		Phone:     optional(doc.Phone),
		Address:   optional(doc.Address),
		TaxID:     optional(doc.TaxID),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertVendor(ctx, s.db, &vendor); err != nil {
		return 0, err
	}
	s.vendors[name] = vendor.ID
	return vendor.ID, nil
}

func (s *Seeder) ensureCustomer(ctx context.Context, doc CustomerDoc) (snowflake.ID, error) {
	name := strings.TrimSpace(doc.Name)
	if id, ok := s.customers[name]; ok {
		return id, nil
	}

	var customer invoicedomain.Customer
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&customer).Error
	if err == nil {
		s.customers[name] = customer.ID
		return customer.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	now := time.Now().UTC()
	customer = invoicedomain.Customer{
		ID:        s.node.Generate(),
		Name:      name,
		Email:     optional(doc.Email),
		Phone:     optional(doc.Phone),
		Address:   optional(doc.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertCustomer(ctx, s.db, &customer); err != nil {
		return 0, err
	}
	s.customers[name] = customer.ID
	return customer.ID, nil
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly}

func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
