package cloudmetrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Recorder keeps dataset-level gauges that are refreshed from the store
// before every push.
type Recorder struct {
	invoices     prometheus.Gauge
	vendors      prometheus.Gauge
	openBalance  prometheus.Gauge
	chatAttempts prometheus.Gauge
}

func NewRecorder() *Recorder {
	return &Recorder{
		invoices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spendlens_invoices",
			Help: "Invoices in the store.",
		}),
		vendors: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spendlens_vendors",
			Help: "Vendors in the store.",
		}),
		openBalance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spendlens_open_balance",
			Help: "Sum of total minus paid over pending and partial invoices.",
		}),
		chatAttempts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "spendlens_chat_history_entries",
			Help: "Recorded chat attempts.",
		}),
	}
}

func (r *Recorder) Collectors() []prometheus.Collector {
	return []prometheus.Collector{r.invoices, r.vendors, r.openBalance, r.chatAttempts}
}

type datasetCounts struct {
	Invoices     int64
	Vendors      int64
	OpenBalance  float64
	ChatAttempts int64
}

const datasetQuery = `SELECT
	(SELECT COUNT(*) FROM invoices) AS invoices,
	(SELECT COUNT(*) FROM vendors) AS vendors,
	(SELECT COALESCE(SUM(total_amount - paid_amount), 0) FROM invoices WHERE status IN ('pending', 'partial')) AS open_balance,
	(SELECT COUNT(*) FROM chat_history) AS chat_attempts`

func (r *Recorder) Refresh(ctx context.Context, db *gorm.DB) error {
	if r == nil || db == nil {
		return nil
	}
	var counts datasetCounts
	if err := db.WithContext(ctx).Raw(datasetQuery).Scan(&counts).Error; err != nil {
		return err
	}
	r.invoices.Set(float64(counts.Invoices))
	r.vendors.Set(float64(counts.Vendors))
	r.openBalance.Set(counts.OpenBalance)
	r.chatAttempts.Set(float64(counts.ChatAttempts))
	return nil
}
