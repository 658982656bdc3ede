package service

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/spendlens/internal/invoice/domain"
	"github.com/smallbiznis/spendlens/internal/invoice/repository"
	"github.com/smallbiznis/spendlens/internal/migration"
	"github.com/smallbiznis/spendlens/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

var baseDate = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	svc      domain.Service
	conn     *gorm.DB
	node     *snowflake.Node
	repo     domain.Repository
	vendors  map[string]snowflake.ID
	customer snowflake.ID
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(conn))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	repo := repository.Provide()
	h := &harness{
		svc:     New(Params{DB: conn, Log: zaptest.NewLogger(t), Repo: repo}),
		conn:    conn,
		node:    node,
		repo:    repo,
		vendors: map[string]snowflake.ID{},
	}

	ctx := context.Background()
	for _, name := range []string{"Acme Corp", "Globex", "Initech"} {
		v := &domain.Vendor{ID: node.Generate(), Name: name, CreatedAt: baseDate, UpdatedAt: baseDate}
		require.NoError(t, repo.InsertVendor(ctx, conn, v))
		h.vendors[name] = v.ID
	}
	c := &domain.Customer{ID: node.Generate(), Name: "ABC Company", CreatedAt: baseDate, UpdatedAt: baseDate}
	require.NoError(t, repo.InsertCustomer(ctx, conn, c))
	h.customer = c.ID
	return h
}

type invoiceOpt func(*domain.Invoice)

func withNotes(notes string) invoiceOpt {
	return func(i *domain.Invoice) { i.Notes = &notes }
}

func withStatus(status domain.InvoiceStatus) invoiceOpt {
	return func(i *domain.Invoice) { i.Status = status }
}

func (h *harness) add(t *testing.T, number, vendor string, total, paid int64, issued time.Time, opts ...invoiceOpt) *domain.Invoice {
	t.Helper()
	due := issued.AddDate(0, 0, 30)
	inv := &domain.Invoice{
		ID:            h.node.Generate(),
		InvoiceNumber: number,
		VendorID:      h.vendors[vendor],
		CustomerID:    h.customer,
		IssueDate:     issued,
		DueDate:       &due,
		TotalAmount:   decimal.NewFromInt(total),
		PaidAmount:    decimal.NewFromInt(paid),
		Status:        domain.StatusPending,
		Currency:      "USD",
		CreatedAt:     issued,
		UpdatedAt:     issued,
	}
	for _, opt := range opts {
		opt(inv)
	}
	require.NoError(t, h.repo.InsertInvoice(context.Background(), h.conn, inv, nil, nil))
	return inv
}

func TestListPagesAreDisjoint(t *testing.T) {
	h := newHarness(t)
	// Shared issue dates force the id tie-break to decide page boundaries.
	for i := 0; i < 25; i++ {
		h.add(t, fmt.Sprintf("INV-%03d", i), "Acme Corp", int64(100+i), 0, baseDate.AddDate(0, 0, i%3))
	}

	seen := map[snowflake.ID]bool{}
	for page := 1; page <= 3; page++ {
		resp, err := h.svc.List(context.Background(), domain.ListInvoiceRequest{Page: page, Limit: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 25, resp.Pagination.Total)
		assert.Equal(t, 3, resp.Pagination.TotalPages)
		assert.Equal(t, page, resp.Pagination.Page)
		for _, row := range resp.Data {
			assert.False(t, seen[row.ID], "invoice %s appeared twice", row.InvoiceNumber)
			seen[row.ID] = true
		}
		if page == 3 {
			assert.Len(t, resp.Data, 5)
		}
	}
	assert.Len(t, seen, 25)

	resp, err := h.svc.List(context.Background(), domain.ListInvoiceRequest{Page: 4, Limit: 10})
	require.NoError(t, err)
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestListDefaultsAndRowShape(t *testing.T) {
	h := newHarness(t)
	older := h.add(t, "INV-1", "Acme Corp", 1000, 400, baseDate)
	newer := h.add(t, "INV-2", "Globex", 50, 0, baseDate.AddDate(0, 1, 0))

	resp, err := h.svc.List(context.Background(), domain.ListInvoiceRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.Page)
	assert.Equal(t, 10, resp.Pagination.Limit)
	require.Len(t, resp.Data, 2)

	// Newest issue date first by default.
	assert.Equal(t, newer.ID, resp.Data[0].ID)
	assert.Equal(t, older.ID, resp.Data[1].ID)

	row := resp.Data[1]
	assert.Equal(t, "Acme Corp", row.Vendor)
	assert.Equal(t, "ABC Company", row.Customer)
	assert.True(t, decimal.NewFromInt(600).Equal(row.Balance), row.Balance.String())
	assert.EqualValues(t, 0, row.LineItemsCount)
}

func TestListFilters(t *testing.T) {
	h := newHarness(t)
	h.add(t, "INV-ALPHA", "Acme Corp", 10, 0, baseDate, withNotes("50% deposit"))
	h.add(t, "INV-BETA", "Globex", 20, 20, baseDate, withStatus(domain.StatusPaid))
	h.add(t, "INV-GAMMA", "Initech", 30, 0, baseDate, withNotes("Quarterly TPS reports"))

	tests := []struct {
		name string
		req  domain.ListInvoiceRequest
		want []string
	}{
		{"search invoice number", domain.ListInvoiceRequest{Search: "alpha"}, []string{"INV-ALPHA"}},
		{"search vendor name", domain.ListInvoiceRequest{Search: "GLOBEX"}, []string{"INV-BETA"}},
		{"search notes", domain.ListInvoiceRequest{Search: "tps"}, []string{"INV-GAMMA"}},
		{"status", domain.ListInvoiceRequest{Status: "Paid"}, []string{"INV-BETA"}},
		{"vendor", domain.ListInvoiceRequest{Vendor: "acme"}, []string{"INV-ALPHA"}},
		{"search percent is literal", domain.ListInvoiceRequest{Search: "%"}, []string{"INV-ALPHA"}},
		{"search underscore is literal", domain.ListInvoiceRequest{Search: "_"}, []string{}},
		{"search literal with wildcard", domain.ListInvoiceRequest{Search: "50% dep"}, []string{"INV-ALPHA"}},
		{"vendor percent is literal", domain.ListInvoiceRequest{Vendor: "%"}, []string{}},
		{"sort by amount asc", domain.ListInvoiceRequest{SortBy: "totalAmount", SortOrder: "asc"}, []string{"INV-ALPHA", "INV-BETA", "INV-GAMMA"}},
		{"sort by number desc", domain.ListInvoiceRequest{SortBy: "invoiceNumber"}, []string{"INV-GAMMA", "INV-BETA", "INV-ALPHA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.svc.List(context.Background(), tt.req)
			require.NoError(t, err)
			got := make([]string, 0, len(resp.Data))
			for _, row := range resp.Data {
				got = append(got, row.InvoiceNumber)
			}
			assert.Equal(t, tt.want, got)
			assert.EqualValues(t, len(tt.want), resp.Pagination.Total)
		})
	}
}

func TestListRejectsInvalidRequests(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		req  domain.ListInvoiceRequest
		want error
	}{
		{"negative page", domain.ListInvoiceRequest{Page: -1}, domain.ErrInvalidPage},
		{"page offset overflows", domain.ListInvoiceRequest{Page: math.MaxInt / 5, Limit: 10}, domain.ErrInvalidPage},
		{"limit too large", domain.ListInvoiceRequest{Limit: 101}, domain.ErrInvalidLimit},
		{"negative limit", domain.ListInvoiceRequest{Limit: -5}, domain.ErrInvalidLimit},
		{"unknown status", domain.ListInvoiceRequest{Status: "void"}, domain.ErrInvalidStatus},
		{"unknown sort field", domain.ListInvoiceRequest{SortBy: "vendor"}, domain.ErrInvalidSortBy},
		{"unknown sort order", domain.ListInvoiceRequest{SortOrder: "up"}, domain.ErrInvalidSortOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.List(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestListFarPageIsEmpty(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.add(t, fmt.Sprintf("INV-%03d", i), "Acme Corp", 100, 0, baseDate)
	}

	resp, err := h.svc.List(context.Background(), domain.ListInvoiceRequest{Page: math.MaxInt / 100, Limit: 100})
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
	assert.EqualValues(t, 3, resp.Pagination.Total)
	assert.Equal(t, 1, resp.Pagination.TotalPages)
}

func TestGetByID(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	due := baseDate.AddDate(0, 0, 30)
	inv := &domain.Invoice{
		ID:            h.node.Generate(),
		InvoiceNumber: "INV-100",
		VendorID:      h.vendors["Acme Corp"],
		CustomerID:    h.customer,
		IssueDate:     baseDate,
		DueDate:       &due,
		TotalAmount:   decimal.NewFromInt(1000),
		PaidAmount:    decimal.NewFromInt(400),
		Status:        domain.StatusPartial,
		Currency:      "USD",
		CreatedAt:     baseDate,
		UpdatedAt:     baseDate,
	}
	items := []domain.LineItem{{
		ID:          h.node.Generate(),
		InvoiceID:   inv.ID,
		Description: "Consulting",
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(100),
		Amount:      decimal.NewFromInt(1000),
		CreatedAt:   baseDate,
	}}
	payments := []domain.Payment{{
		ID:            h.node.Generate(),
		InvoiceID:     inv.ID,
		Amount:        decimal.NewFromInt(400),
		PaymentDate:   baseDate.AddDate(0, 0, 5),
		PaymentMethod: "bank_transfer",
		CreatedAt:     baseDate,
	}}
	require.NoError(t, h.repo.InsertInvoice(ctx, h.conn, inv, items, payments))

	detail, err := h.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: inv.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, "INV-100", detail.InvoiceNumber)
	assert.True(t, decimal.NewFromInt(600).Equal(detail.Balance))
	require.NotNil(t, detail.Vendor)
	assert.Equal(t, "Acme Corp", detail.Vendor.Name)
	require.NotNil(t, detail.Customer)
	assert.Equal(t, "ABC Company", detail.Customer.Name)
	require.Len(t, detail.LineItems, 1)
	assert.Equal(t, "Consulting", detail.LineItems[0].Description)
	require.Len(t, detail.Payments, 1)
	assert.Equal(t, "bank_transfer", detail.Payments[0].PaymentMethod)

	for _, id := range []string{"", "abc", "0", h.node.Generate().String()} {
		_, err := h.svc.GetByID(ctx, domain.GetInvoiceRequest{ID: id})
		assert.ErrorIs(t, err, domain.ErrNotFound, "id %q", id)
	}
}

func TestListForExport(t *testing.T) {
	h := newHarness(t)
	h.add(t, "INV-1", "Acme Corp", 100, 0, baseDate)
	h.add(t, "INV-2", "Acme Corp", 200, 200, baseDate.AddDate(0, 0, 1), withStatus(domain.StatusPaid))
	h.add(t, "INV-3", "Globex", 300, 100, baseDate.AddDate(0, 0, 2), withStatus(domain.StatusPartial))

	rows, err := h.svc.ListForExport(context.Background(), domain.ExportFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "INV-3", rows[0].InvoiceNumber)
	assert.True(t, decimal.NewFromInt(200).Equal(rows[0].Balance))

	rows, err = h.svc.ListForExport(context.Background(), domain.ExportFilter{Vendor: "acme", Status: "pending"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "INV-1", rows[0].InvoiceNumber)

	_, err = h.svc.ListForExport(context.Background(), domain.ExportFilter{Status: "draft"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
