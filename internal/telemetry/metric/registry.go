package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yndnr/certrotate-go/internal/core/domain"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// unknownDomain labels a record without any domain name.
const unknownDomain = "unknown"

// Registry holds all service metrics.
type Registry struct {
	reg *prometheus.Registry

	CertExpiryDays      *prometheus.GaugeVec
	CertExpired         *prometheus.GaugeVec
	SyncOperations      *prometheus.CounterVec
	SyncDuration        prometheus.Histogram
	SecretsRequests     *prometheus.CounterVec
	ProxyReloads        *prometheus.CounterVec
	CertificatesManaged prometheus.Gauge
	LastSyncTimestamp   prometheus.Gauge
	FileChanges         *prometheus.CounterVec
}

// NewRegistry creates the registry with Go runtime and process collectors.
func NewRegistry() *Registry {
	start := time.Now()
	r := &Registry{
		reg: prometheus.NewRegistry(),
		CertExpiryDays: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cert_expiry_days",
			Help: "Days until certificate expires",
		}, []string{"cert_path", "domain"}),
		CertExpired: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cert_expired",
			Help: "Certificate is expired (1) or not (0)",
		}, []string{"cert_path", "domain"}),
		SyncOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cert_sync_operations_total",
			Help: "Total number of certificate sync operations",
		}, []string{"status"}),
		SyncDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cert_sync_duration_seconds",
			Help:    "Time spent syncing certificates",
			Buckets: prometheus.DefBuckets,
		}),
		SecretsRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secrets_requests_total",
			Help: "Total number of remote secret store requests",
		}, []string{"operation", "status"}),
		ProxyReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "haproxy_reload_total",
			Help: "Total number of proxy reload attempts",
		}, []string{"transport", "status"}),
		CertificatesManaged: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certificates_managed_total",
			Help: "Total number of certificates being managed",
		}),
		LastSyncTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "last_sync_timestamp_seconds",
			Help: "Timestamp of last successful sync",
		}),
		FileChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cert_file_changes_total",
			Help: "Total number of certificate file changes detected",
		}, []string{"change_type"}),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "service_uptime_seconds",
			Help: "Seconds since the service started",
		}, func() float64 { return time.Since(start).Seconds() }),
		r.CertExpiryDays,
		r.CertExpired,
		r.SyncOperations,
		r.SyncDuration,
		r.SecretsRequests,
		r.ProxyReloads,
		r.CertificatesManaged,
		r.LastSyncTimestamp,
		r.FileChanges,
	)
	return r
}

// Gatherer returns the underlying registry for scraping or tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveSync records one finished cycle.
func (r *Registry) ObserveSync(outcome *domain.SyncOutcome) {
	if outcome == nil {
		return
	}
	r.SyncOperations.WithLabelValues(statusLabel(outcome.Succeeded)).Inc()
	r.SyncDuration.Observe(outcome.DurationSeconds)
	if outcome.Succeeded {
		r.LastSyncTimestamp.Set(float64(outcome.StartedAt.Unix()) + outcome.DurationSeconds)
	}
}

// ObserveCertificates replaces the per-certificate gauges with records.
func (r *Registry) ObserveCertificates(records []*domain.CertificateRecord, now time.Time) {
	r.CertExpiryDays.Reset()
	r.CertExpired.Reset()

	for _, rec := range records {
		d := unknownDomain
		if len(rec.DomainNames) > 0 {
			d = rec.DomainNames[0]
		}
		r.CertExpiryDays.WithLabelValues(rec.CertificatePath, d).Set(float64(rec.DaysUntilExpiry(now)))
		expired := 0.0
		if rec.IsExpired(now) {
			expired = 1
		}
		r.CertExpired.WithLabelValues(rec.CertificatePath, d).Set(expired)
	}
	r.CertificatesManaged.Set(float64(len(records)))
}

// ObserveRemoteRequest counts one remote store call.
func (r *Registry) ObserveRemoteRequest(operation, status string) {
	r.SecretsRequests.WithLabelValues(operation, status).Inc()
}

// ObserveReload counts one reload attempt on a transport.
func (r *Registry) ObserveReload(transport string, ok bool) {
	r.ProxyReloads.WithLabelValues(transport, statusLabel(ok)).Inc()
}

// ObserveFileChange counts one certificate file change.
func (r *Registry) ObserveFileChange(changeType string) {
	r.FileChanges.WithLabelValues(changeType).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return StatusSuccess
	}
	return StatusFailure
}
