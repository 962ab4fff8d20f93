// Package metrics records run metrics in a Prometheus registry and pushes
// them to a Pushgateway, since a one-shot run has no scrape window.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/airdrop-checker/internal/model"
)

// JobName is the Pushgateway job the metrics are grouped under.
const JobName = "airdrop_checker"

// Fetch sources used as label values.
const (
	SourceIndexer = "indexer"
	SourceRPC     = "rpc"
)

// Recorder holds the Prometheus collectors for one run.
type Recorder struct {
	registry *prometheus.Registry

	fetchDuration *prometheus.HistogramVec
	fetchErrors   *prometheus.CounterVec
	criterionMet  *prometheus.GaugeVec
	walletAgeDays prometheus.Gauge
	txCount       prometheus.Gauge
	historyLength prometheus.Gauge
	eligible      prometheus.Gauge
	lastRun       prometheus.Gauge
}

// NewRecorder creates a Recorder with its own registry, so nothing leaks into
// the global default registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		fetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "airdrop_fetch_duration_seconds",
				Help:    "Remote fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "status"},
		),
		fetchErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "airdrop_fetch_errors_total",
				Help: "Total number of failed remote fetches",
			},
			[]string{"source"},
		),
		criterionMet: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "airdrop_criterion_met",
				Help: "Whether an eligibility criterion was met (1) or not (0)",
			},
			[]string{"criterion"},
		),
		walletAgeDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdrop_wallet_age_days",
			Help: "Whole days since the wallet's first transaction",
		}),
		txCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdrop_wallet_tx_count",
			Help: "Transaction count reported by the node",
		}),
		historyLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdrop_wallet_history_length",
			Help: "Number of transactions returned by the indexer",
		}),
		eligible: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdrop_wallet_eligible",
			Help: "Whether every criterion was met (1) or not (0)",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "airdrop_last_run_timestamp_seconds",
			Help: "Unix time of the last completed evaluation",
		}),
	}

	r.registry.MustRegister(
		r.fetchDuration,
		r.fetchErrors,
		r.criterionMet,
		r.walletAgeDays,
		r.txCount,
		r.historyLength,
		r.eligible,
		r.lastRun,
	)

	return r
}

// ObserveFetch records the duration and outcome of one remote call.
func (r *Recorder) ObserveFetch(source string, elapsed time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		r.fetchErrors.WithLabelValues(source).Inc()
	}
	r.fetchDuration.WithLabelValues(source, status).Observe(elapsed.Seconds())
}

// RecordReport stores the evaluated results.
func (r *Recorder) RecordReport(report model.Report) {
	for _, res := range report.Results() {
		r.criterionMet.WithLabelValues(string(res.Criterion)).Set(boolToFloat(res.Met))
	}
	r.walletAgeDays.Set(float64(report.WalletAge.Value))
	r.txCount.Set(float64(report.TxCount.Value))
	r.historyLength.Set(float64(report.HistoryLength))
	r.eligible.Set(boolToFloat(report.Eligible()))
	r.lastRun.Set(float64(report.CheckedAt.Unix()))
}

// Gatherer exposes the registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Push replaces the metrics for this address's group on the Pushgateway.
func (r *Recorder) Push(gatewayURL, address string, client push.HTTPDoer) error {
	pusher := push.New(gatewayURL, JobName).
		Gatherer(r.registry).
		Grouping("address", address)
	if client != nil {
		pusher = pusher.Client(client)
	}

	if err := pusher.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}

	logrus.WithFields(logrus.Fields{
		"gateway": gatewayURL,
		"job":     JobName,
	}).Debug("Metrics pushed")
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
