package service

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/config"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var openStatuses = []invoicedomain.InvoiceStatus{invoicedomain.StatusPending, invoicedomain.StatusPartial}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Repo      domain.Repository
	Clock     clock.Clock
	Analytics *config.AnalyticsConfigHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	repo      domain.Repository
	clock     clock.Clock
	analytics *config.AnalyticsConfigHolder
}

func New(p Params) domain.Service {
	analytics := p.Analytics
	if analytics == nil {
		analytics = config.NewStaticAnalyticsConfigHolder(config.DefaultAnalyticsConfig())
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("analytics.service"),
		repo:      p.Repo,
		clock:     p.Clock,
		analytics: analytics,
	}
}

func (s *Service) Stats(ctx context.Context) (domain.Stats, error) {
	now := s.clock.Now().UTC()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	totals, err := s.repo.InvoiceTotals(ctx, s.db, yearStart)
	if err != nil {
		return domain.Stats{}, err
	}
	vendors, err := s.repo.CountVendors(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}
	documents, err := s.repo.CountLineItems(ctx, s.db)
	if err != nil {
		return domain.Stats{}, err
	}

	average := decimal.Zero
	if totals.InvoiceCount > 0 {
		average = totals.TotalAmount.Div(decimal.NewFromInt(totals.InvoiceCount)).Round(2)
	}

	return domain.Stats{
		TotalSpend:           totals.YearToDateSpend,
		InvoiceCount:         totals.InvoiceCount,
		VendorCount:          vendors,
		AverageInvoiceAmount: average,
		DocumentsUploaded:    documents,
		PendingInvoices:      totals.PendingCount,
		OverdueInvoices:      totals.OverdueCount,
		PaidInvoices:         totals.PaidCount,
		TotalPaid:            totals.TotalPaid,
		Currency:             domain.DefaultCurrency,
		LastUpdated:          now,
	}, nil
}

// TopVendors ranks vendors by invoiced total. n outside 1..100 falls back to
// the configured default or the upper bound.
func (s *Service) TopVendors(ctx context.Context, n int) ([]domain.VendorSpend, error) {
	if n <= 0 {
		n = s.analytics.Get().TopVendorsLimit
	}
	if n > domain.MaxTopVendorsLimit {
		n = domain.MaxTopVendorsLimit
	}

	totals, err := s.repo.SpendByVendor(ctx, s.db, n)
	if err != nil {
		return nil, err
	}

	ids := make([]snowflake.ID, 0, len(totals))
	for _, t := range totals {
		ids = append(ids, t.VendorID)
	}
	vendors, err := s.repo.FindVendors(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[snowflake.ID]string, len(vendors))
	for _, v := range vendors {
		names[v.ID] = v.Name
	}

	out := make([]domain.VendorSpend, 0, len(totals))
	for _, t := range totals {
		name, ok := names[t.VendorID]
		if !ok {
			name = domain.UnknownVendorLabel
		}
		out = append(out, domain.VendorSpend{
			VendorID:   t.VendorID,
			VendorName: name,
			TotalSpend: t.TotalSpend,
		})
	}
	return out, nil
}

func (s *Service) ListVendors(ctx context.Context) ([]domain.VendorSummary, error) {
	rows, err := s.repo.VendorSummaries(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.VendorSummary{}
	}
	return rows, nil
}

func (s *Service) CategorySpend(ctx context.Context) ([]domain.CategorySpend, error) {
	rows, err := s.repo.SpendByCategory(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.CategorySpend{}
	}
	return rows, nil
}

func (s *Service) InvoiceTrends(ctx context.Context) ([]domain.MonthlyTrend, error) {
	issued, err := s.repo.IssuedAmounts(ctx, s.db)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*domain.MonthlyTrend)
	for _, row := range issued {
		key := row.IssueDate.UTC().Format("2006-01")
		bucket, ok := buckets[key]
		if !ok {
			bucket = &domain.MonthlyTrend{Month: key, TotalAmount: decimal.Zero}
			buckets[key] = bucket
		}
		bucket.InvoiceCount++
		bucket.TotalAmount = bucket.TotalAmount.Add(row.TotalAmount)
	}

	out := make([]domain.MonthlyTrend, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

// CashOutflow sums open balances due from today through the configured
// horizon, inclusive of the last day.
func (s *Service) CashOutflow(ctx context.Context) ([]domain.WeeklyOutflow, error) {
	now := s.clock.Now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, s.analytics.Get().CashOutflowHorizonDays+1)

	rows, err := s.repo.OpenBalancesDue(ctx, s.db, from, to, openStatuses)
	if err != nil {
		return nil, err
	}

	weeks := make(map[string]decimal.Decimal)
	for _, row := range rows {
		key := domain.WeekStart(row.DueDate).Format(time.DateOnly)
		weeks[key] = weeks[key].Add(row.TotalAmount.Sub(row.PaidAmount))
	}

	out := make([]domain.WeeklyOutflow, 0, len(weeks))
	for key, amount := range weeks {
		out = append(out, domain.WeeklyOutflow{Week: key, Month: key, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Week < out[j].Week })
	return out, nil
}
