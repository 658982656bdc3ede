package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/spendlens/pkg/db/pagination"
)

type SortField string

const (
	SortIssueDate     SortField = "issueDate"
	SortDueDate       SortField = "dueDate"
	SortTotalAmount   SortField = "totalAmount"
	SortPaidAmount    SortField = "paidAmount"
	SortInvoiceNumber SortField = "invoiceNumber"
	SortStatus        SortField = "status"
	SortCreatedAt     SortField = "createdAt"
)

type Sort struct {
	Field      SortField
	Descending bool
}

type ListInvoiceRequest struct {
	Page      int
	Limit     int
	Search    string
	Status    string
	Vendor    string
	SortBy    string
	SortOrder string
}

type ListInvoiceFilter struct {
	Search string
	Status InvoiceStatus
	Vendor string
}

type ListInvoiceResponse struct {
	Data       []InvoiceRow        `json:"data"`
	Pagination pagination.PageInfo `json:"pagination"`
}

type GetInvoiceRequest struct {
	ID string
}

type ExportFilter struct {
	Status string `json:"status"`
	Vendor string `json:"vendor"`
}

type Service interface {
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
	GetByID(context.Context, GetInvoiceRequest) (InvoiceDetail, error)
	ListForExport(context.Context, ExportFilter) ([]InvoiceRow, error)
}

var (
	ErrInvalidPage      = errors.New("invalid_page")
	ErrInvalidLimit     = errors.New("invalid_limit")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidSortBy    = errors.New("invalid_sort_by")
	ErrInvalidSortOrder = errors.New("invalid_sort_order")
	ErrNotFound         = errors.New("not_found")
)
