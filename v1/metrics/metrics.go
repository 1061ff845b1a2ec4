package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// AcquireCounter tracks successful lock acquisitions.
	AcquireCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_acquire_total",
		Help: "Total number of successful lock acquisitions",
	})
	// ContentionCounter tracks wait cycles spent parked behind a held lock.
	ContentionCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_contention_total",
		Help: "Total number of blocking waits behind a held lock",
	})
	// ReleaseCounter tracks successful lock releases.
	ReleaseCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_release_total",
		Help: "Total number of successful lock releases",
	})
	// RenewalCounter tracks successful lease extensions.
	RenewalCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_renewal_total",
		Help: "Total number of successful lease renewals",
	})
	// LostCounter tracks locks lost out-of-band, discovered during renewal.
	LostCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_lost_total",
		Help: "Total number of locks lost while supposedly held",
	})
	// ResetCounter tracks administrative resets.
	ResetCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "latch_reset_total",
		Help: "Total number of administrative lock resets",
	})
	// HoldersGauge reports the number of locks currently held by this process.
	HoldersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "latch_holders",
		Help: "Current number of locks held by this process",
	})
	// WaitersGauge reports the number of goroutines parked in blocking acquisition.
	WaitersGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "latch_waiters",
		Help: "Current number of goroutines blocked waiting for a lock",
	})
)

// NewRegistry creates a new Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// RegisterLockMetrics registers the lock metrics on the provided registry.
func RegisterLockMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		AcquireCounter,
		ContentionCounter,
		ReleaseCounter,
		RenewalCounter,
		LostCounter,
		ResetCounter,
		HoldersGauge,
		WaitersGauge,
	)
}
