package cloudmetrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/snappy"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/prometheus/prompb"
	"github.com/shopspring/decimal"
	chatdomain "github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/config"
	invoicedomain "github.com/smallbiznis/spendlens/internal/invoice/domain"
	"github.com/smallbiznis/spendlens/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()

	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "requests_total", Help: "h"}, []string{"route"})
	counter.WithLabelValues("/api/stats").Add(3)
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "inflight", Help: "h"})
	gauge.Set(2)
	hist := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "latency_seconds", Help: "h"})
	hist.Observe(0.5)
	hist.Observe(1.5)

	reg.MustRegister(counter, gauge, hist)
	return reg
}

func TestBuildRemoteWriteSeries(t *testing.T) {
	families, err := testRegistry(t).Gather()
	require.NoError(t, err)

	series := buildRemoteWriteSeries(families, 1000)
	byName := map[string]prompb.TimeSeries{}
	for _, s := range series {
		for _, l := range s.Labels {
			if l.Name == "__name__" {
				byName[l.Value] = s
			}
		}
	}

	require.Contains(t, byName, "requests_total")
	assert.Equal(t, 3.0, byName["requests_total"].Samples[0].Value)
	assert.Equal(t, int64(1000), byName["requests_total"].Samples[0].Timestamp)
	assert.Equal(t, []prompb.Label{{Name: "__name__", Value: "requests_total"}, {Name: "route", Value: "/api/stats"}},
		byName["requests_total"].Labels)

	assert.Equal(t, 2.0, byName["inflight"].Samples[0].Value)
	assert.Equal(t, 2.0, byName["latency_seconds_count"].Samples[0].Value)
	assert.Equal(t, 2.0, byName["latency_seconds_sum"].Samples[0].Value)
}

func TestRemoteWritePusher(t *testing.T) {
	var received prompb.WriteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "snappy", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		raw, err := snappy.Decode(nil, body)
		require.NoError(t, err)
		require.NoError(t, received.Unmarshal(raw))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pusher := NewRemoteWritePusher(srv.URL, "secret")
	pusher.now = func() time.Time { return time.UnixMilli(42) }

	require.NoError(t, pusher.Push(context.Background(), testRegistry(t)))
	assert.Len(t, received.Timeseries, 4)
	assert.Equal(t, int64(42), received.Timeseries[0].Samples[0].Timestamp)
}

func TestRemoteWritePusherReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewRemoteWritePusher(srv.URL, "").Push(context.Background(), testRegistry(t))
	assert.ErrorContains(t, err, "502")
}

func TestNewPusher(t *testing.T) {
	log := zaptest.NewLogger(t)

	assert.Nil(t, NewPusher(config.Config{}, log))
	assert.Nil(t, NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: ExporterRemoteWrite}}, log))
	assert.Nil(t, NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: "statsd", Endpoint: "x"}}, log))

	p := NewPusher(config.Config{Push: config.MetricsPushConfig{Exporter: ExporterRemoteWrite, Endpoint: "http://prom:9090/api/v1/write"}}, log)
	assert.IsType(t, &RemoteWritePusher{}, p)

	p = NewPusher(config.Config{AppName: "spendlens", Push: config.MetricsPushConfig{Exporter: ExporterPushgateway, Endpoint: "http://gw:9091"}}, log)
	assert.IsType(t, &PushgatewayPusher{}, p)
}

func TestRecorderRefresh(t *testing.T) {
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&invoicedomain.Vendor{}, &invoicedomain.Invoice{}, &chatdomain.ChatHistoryEntry{}))

	require.NoError(t, conn.Create(&invoicedomain.Vendor{ID: 1, Name: "Acme"}).Error)
	require.NoError(t, conn.Create(&[]invoicedomain.Invoice{
		{ID: 1, InvoiceNumber: "A", VendorID: 1, CustomerID: 1, IssueDate: time.Now(), TotalAmount: decimal.NewFromInt(100), PaidAmount: decimal.NewFromInt(40), Status: invoicedomain.StatusPartial, Currency: "USD"},
		{ID: 2, InvoiceNumber: "B", VendorID: 1, CustomerID: 1, IssueDate: time.Now(), TotalAmount: decimal.NewFromInt(50), PaidAmount: decimal.NewFromInt(50), Status: invoicedomain.StatusPaid, Currency: "USD"},
	}).Error)

	rec := NewRecorder()
	require.NoError(t, rec.Refresh(context.Background(), conn))

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.invoices))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.vendors))
	assert.Equal(t, 60.0, testutil.ToFloat64(rec.openBalance))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.chatAttempts))
}
