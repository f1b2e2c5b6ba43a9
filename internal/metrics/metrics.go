package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CertificatesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificates_generated_total",
			Help: "Total certificates rendered successfully",
		},
	)

	CertificateFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "certificate_failures_total",
			Help: "Total certificate renders that failed",
		},
	)

	EmailsSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total emails sent",
		},
	)

	EmailFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "email_failures_total",
			Help: "Total failed emails",
		},
	)

	JobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "batch_jobs_running",
			Help: "Batch jobs currently processing",
		},
	)
)

func Init() {
	prometheus.MustRegister(
		CertificatesGenerated,
		CertificateFailures,
		EmailsSent,
		EmailFailures,
		JobsRunning,
	)
}
