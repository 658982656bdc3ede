package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceRow is the flattened list representation joined with party names.
type InvoiceRow struct {
	ID             snowflake.ID    `json:"id"`
	InvoiceNumber  string          `json:"invoiceNumber"`
	Vendor         string          `json:"vendor"`
	VendorEmail    *string         `json:"vendorEmail"`
	Customer       string          `json:"customer"`
	IssueDate      time.Time       `json:"issueDate"`
	DueDate        *time.Time      `json:"dueDate"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	PaidAmount     decimal.Decimal `json:"paidAmount"`
	Balance        decimal.Decimal `gorm:"-" json:"balance"`
	Status         InvoiceStatus   `json:"status"`
	Category       *string         `json:"category"`
	Currency       string          `json:"currency"`
	LineItemsCount int64           `json:"lineItemsCount"`
	PaymentsCount  int64           `json:"paymentsCount"`
}

// InvoiceDetail is a single invoice with its parties and owned rows.
type InvoiceDetail struct {
	Invoice
	Balance   decimal.Decimal `json:"balance"`
	Vendor    *Vendor         `json:"vendor"`
	Customer  *Customer       `json:"customer"`
	LineItems []LineItem      `json:"lineItems"`
	Payments  []Payment       `json:"payments"`
}
