package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/pocketledger/internal/domain"
)

const namespace = "pocketledger"

// Metrics holds the ledger's Prometheus metrics and implements usecase.Metrics.
type Metrics struct {
	// Entry metrics
	EntriesCreatedTotal    *prometheus.CounterVec
	InstallmentSeriesTotal prometheus.Counter
	StatusTogglesTotal     *prometheus.CounterVec
	EntriesDeletedTotal    prometheus.Counter

	// Backup metrics
	BackupImportsTotal prometheus.Counter
	BackupEntriesTotal prometheus.Counter

	// Store metrics
	PersistenceFailuresTotal *prometheus.CounterVec
	SettingsFlushesTotal     prometheus.Counter

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates the metrics and registers them with reg. A nil reg means the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		EntriesCreatedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "entries_created_total",
				Help:      "Total number of entries created, installments counted individually",
			},
			[]string{"type"},
		),
		InstallmentSeriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installment_series_created_total",
			Help:      "Total number of entries split into more than one installment",
		}),
		StatusTogglesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_toggles_total",
				Help:      "Total status toggles by resulting status",
			},
			[]string{"status"},
		),
		EntriesDeletedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_deleted_total",
			Help:      "Total number of entries soft-deleted",
		}),

		BackupImportsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_imports_total",
			Help:      "Total number of completed backup imports",
		}),
		BackupEntriesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_entries_imported_total",
			Help:      "Total number of entries written by backup imports",
		}),

		PersistenceFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "persistence_failures_total",
				Help:      "Total store write failures by operation",
			},
			[]string{"operation"},
		),
		SettingsFlushesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_flushes_total",
			Help:      "Total debounced settings writes",
		}),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Total requests rejected by the rate limiter",
		}),
	}
}

// EntriesCreated counts the entries produced by one create request.
func (m *Metrics) EntriesCreated(entryType domain.EntryType, installments int) {
	m.EntriesCreatedTotal.WithLabelValues(string(entryType)).Add(float64(installments))
	if installments > 1 {
		m.InstallmentSeriesTotal.Inc()
	}
}

func (m *Metrics) StatusToggled(status domain.EntryStatus) {
	m.StatusTogglesTotal.WithLabelValues(string(status)).Inc()
}

func (m *Metrics) EntryDeleted() {
	m.EntriesDeletedTotal.Inc()
}

func (m *Metrics) BackupImported(entries int) {
	m.BackupImportsTotal.Inc()
	m.BackupEntriesTotal.Add(float64(entries))
}

func (m *Metrics) PersistenceFailed(operation string) {
	m.PersistenceFailuresTotal.WithLabelValues(operation).Inc()
}

func (m *Metrics) SettingsFlushed() {
	m.SettingsFlushesTotal.Inc()
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited() {
	m.RateLimitHits.Inc()
}
