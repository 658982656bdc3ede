package domain

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts leave the API as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type InvoiceStatus string

const (
	StatusPending InvoiceStatus = "pending"
	StatusPartial InvoiceStatus = "partial"
	StatusPaid    InvoiceStatus = "paid"
	StatusOverdue InvoiceStatus = "overdue"
)

// Statuses lists every accepted invoice status.
var Statuses = []InvoiceStatus{StatusPending, StatusPartial, StatusPaid, StatusOverdue}

func ParseInvoiceStatus(value string) (InvoiceStatus, error) {
	status := InvoiceStatus(strings.ToLower(strings.TrimSpace(value)))
	for _, known := range Statuses {
		if status == known {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

type Vendor struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"not null;index" json:"name"`
	Email     *string      `json:"email"`
	Phone     *string      `json:"phone"`
	Address   *string      `json:"address"`
	TaxID     *string      `json:"taxId"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Vendor) TableName() string { return "vendors" }

type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"not null;index" json:"name"`
	Email     *string      `json:"email"`
	Phone     *string      `json:"phone"`
	Address   *string      `json:"address"`
	CreatedAt time.Time    `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time    `gorm:"not null" json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }

type Invoice struct {
	ID             snowflake.ID        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	InvoiceNumber  string              `gorm:"not null;index" json:"invoiceNumber"`
	VendorID       snowflake.ID        `gorm:"not null;index" json:"vendorId"`
	CustomerID     snowflake.ID        `gorm:"not null;index" json:"customerId"`
	IssueDate      time.Time           `gorm:"not null;index" json:"issueDate"`
	DueDate        *time.Time          `gorm:"index" json:"dueDate"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(14,2);not null" json:"totalAmount"`
	PaidAmount     decimal.Decimal     `gorm:"type:decimal(14,2);not null;default:0" json:"paidAmount"`
	Status         InvoiceStatus       `gorm:"type:varchar(16);not null;index" json:"status"`
	Category       *string             `gorm:"index" json:"category"`
	Currency       string              `gorm:"type:varchar(3);not null;default:'USD'" json:"currency"`
	TaxAmount      decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"taxAmount"`
	DiscountAmount decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"discountAmount"`
	Notes          *string             `json:"notes"`
	CreatedAt      time.Time           `gorm:"not null" json:"createdAt"`
	UpdatedAt      time.Time           `gorm:"not null" json:"updatedAt"`
}

func (Invoice) TableName() string { return "invoices" }

// Balance is the outstanding amount. It is never stored.
func (i Invoice) Balance() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

type LineItem struct {
	ID          snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoiceId"`
	Description string          `gorm:"not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unitPrice"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Category    *string         `json:"category"`
	CreatedAt   time.Time       `gorm:"not null" json:"createdAt"`
}

func (LineItem) TableName() string { return "line_items" }

type Payment struct {
	ID            snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	InvoiceID     snowflake.ID    `gorm:"not null;index" json:"invoiceId"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaymentDate   time.Time       `gorm:"not null" json:"paymentDate"`
	PaymentMethod string          `gorm:"not null" json:"paymentMethod"`
	ReferenceNo   *string         `json:"referenceNo"`
	Notes         *string         `json:"notes"`
	CreatedAt     time.Time       `gorm:"not null" json:"createdAt"`
}

func (Payment) TableName() string { return "payments" }
