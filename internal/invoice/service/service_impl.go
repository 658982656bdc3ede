package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/spendlens/internal/invoice/domain"
	"github.com/smallbiznis/spendlens/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("invoice.service"),
		repo: p.Repo,
	}
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	page := pagination.Pagination{Page: req.Page, Limit: req.Limit}
	if page.Page == 0 {
		page.Page = pagination.DefaultPage
	}
	if page.Limit == 0 {
		page.Limit = pagination.DefaultLimit
	}
	if page.Page < 1 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidPage
	}
	if page.Limit < 1 || page.Limit > pagination.MaxLimit {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidLimit
	}
	if page.OffsetOverflows() {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidPage
	}

	filter, err := buildFilter(req.Search, req.Status, req.Vendor)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	sort, err := parseSort(req.SortBy, req.SortOrder)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	total, err := s.repo.Count(ctx, s.db, filter)
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	rows := []domain.InvoiceRow{}
	if int64(page.Offset()) < total {
		rows, err = s.repo.List(ctx, s.db, filter, sort, page)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
	}

	return domain.ListInvoiceResponse{
		Data:       withBalances(rows),
		Pagination: pagination.BuildPageInfo(page, total),
	}, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetInvoiceRequest) (domain.InvoiceDetail, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(req.ID))
	if err != nil || id == 0 {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	invoice, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	if invoice == nil {
		return domain.InvoiceDetail{}, domain.ErrNotFound
	}

	vendor, err := s.repo.FindVendor(ctx, s.db, invoice.VendorID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	customer, err := s.repo.FindCustomer(ctx, s.db, invoice.CustomerID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	items, err := s.repo.ListLineItems(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}
	payments, err := s.repo.ListPayments(ctx, s.db, invoice.ID)
	if err != nil {
		return domain.InvoiceDetail{}, err
	}

	return domain.InvoiceDetail{
		Invoice:   *invoice,
		Balance:   invoice.Balance(),
		Vendor:    vendor,
		Customer:  customer,
		LineItems: items,
		Payments:  payments,
	}, nil
}

func (s *Service) ListForExport(ctx context.Context, req domain.ExportFilter) ([]domain.InvoiceRow, error) {
	filter, err := buildFilter("", req.Status, req.Vendor)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListForExport(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return withBalances(rows), nil
}

func buildFilter(search, status, vendor string) (domain.ListInvoiceFilter, error) {
	filter := domain.ListInvoiceFilter{
		Search: strings.TrimSpace(search),
		Vendor: strings.TrimSpace(vendor),
	}
	if strings.TrimSpace(status) != "" {
		parsed, err := domain.ParseInvoiceStatus(status)
		if err != nil {
			return domain.ListInvoiceFilter{}, err
		}
		filter.Status = parsed
	}
	return filter, nil
}

func parseSort(sortBy, sortOrder string) (domain.Sort, error) {
	sort := domain.Sort{Field: domain.SortIssueDate, Descending: true}

	if value := strings.TrimSpace(sortBy); value != "" {
		field := domain.SortField(value)
		switch field {
		case domain.SortIssueDate, domain.SortDueDate, domain.SortTotalAmount, domain.SortPaidAmount,
			domain.SortInvoiceNumber, domain.SortStatus, domain.SortCreatedAt:
			sort.Field = field
		default:
			return domain.Sort{}, domain.ErrInvalidSortBy
		}
	}

	switch strings.ToLower(strings.TrimSpace(sortOrder)) {
	case "", "desc":
		sort.Descending = true
	case "asc":
		sort.Descending = false
	default:
		return domain.Sort{}, domain.ErrInvalidSortOrder
	}
	return sort, nil
}

func withBalances(rows []domain.InvoiceRow) []domain.InvoiceRow {
	if rows == nil {
		return []domain.InvoiceRow{}
	}
	for i := range rows {
		rows[i].Balance = rows[i].TotalAmount.Sub(rows[i].PaidAmount)
	}
	return rows
}
