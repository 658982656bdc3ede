package export

import (
	"context"
	"errors"
	"strings"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Type string

const (
	TypeInvoices Type = "invoices"
	TypeVendors  Type = "vendors"
)

var ErrUnknownType = errors.New("unknown_export_type")

func ParseType(value string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(value))); t {
	case TypeInvoices, TypeVendors:
		return t, nil
	default:
		return "", ErrUnknownType
	}
}

type CSVRequest struct {
	Type    string
	Filters invoicedomain.ExportFilter
}

// File is a rendered document ready to be served as an attachment.
type File struct {
	Filename    string
	ContentType string
	Body        []byte
}

type Params struct {
	fx.In

	Log       *zap.Logger
	Invoices  invoicedomain.Service
	Analytics analyticsdomain.Service
}

type Service struct {
	log       *zap.Logger
	invoices  invoicedomain.Service
	analytics analyticsdomain.Service
}

func New(p Params) *Service {
	return &Service{
		log:       p.Log.Named("export.service"),
		invoices:  p.Invoices,
		analytics: p.Analytics,
	}
}

func (s *Service) CSV(ctx context.Context, req CSVRequest) (File, error) {
	kind, err := ParseType(req.Type)
	if err != nil {
		return File{}, err
	}

	var body []byte
	switch kind {
	case TypeInvoices:
		rows, err := s.invoices.ListForExport(ctx, req.Filters)
		if err != nil {
			return File{}, err
		}
		body, err = InvoicesCSV(rows)
		if err != nil {
			return File{}, err
		}
	case TypeVendors:
		rows, err := s.analytics.ListVendors(ctx)
		if err != nil {
			return File{}, err
		}
		body, err = VendorsCSV(rows)
		if err != nil {
			return File{}, err
		}
	}

	s.log.Debug("csv export rendered", zap.String("type", string(kind)), zap.Int("bytes", len(body)))
	return File{
		Filename:    string(kind) + "-export.csv",
		ContentType: "text/csv; charset=utf-8",
		Body:        body,
	}, nil
}

func (s *Service) InvoicePDF(ctx context.Context, id string) (File, error) {
	detail, err := s.invoices.GetByID(ctx, invoicedomain.GetInvoiceRequest{ID: id})
	if err != nil {
		return File{}, err
	}
	body, err := RenderInvoicePDF(detail)
	if err != nil {
		return File{}, err
	}
	return File{
		Filename:    PDFFilename(detail.InvoiceNumber),
		ContentType: "application/pdf",
		Body:        body,
	}, nil
}
