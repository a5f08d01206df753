package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "payroll"

// Calculation outcomes used as the "result" label.
const (
	ResultSuccess    = "success"
	ResultValidation = "validation_error"
	ResultNotFound   = "not_found"
	ResultLocked     = "locked"
	ResultError      = "error"
)

type metrics struct {
	calculationsTotal  *prometheus.CounterVec
	batchDuration      *prometheus.HistogramVec
	batchEmployees     *prometheus.CounterVec
	complianceWarnings *prometheus.CounterVec
	eventsPublished    *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		calculationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Total number of employee payroll calculations.",
		}, []string{"source", "result"}),
		batchDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a period batch run.",
			Buckets: []float64{
				0.05, 0.1, 0.25, 0.5,
				1, 2.5, 5, 10,
				30, 60, 120,
			},
		}, []string{"rate_version"}),
		batchEmployees: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_employees_total",
			Help:      "Employees processed by batch runs.",
		}, []string{"result"}),
		complianceWarnings: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overtime_compliance_warnings_total",
			Help:      "Overtime compliance warnings raised.",
		}, []string{"code"}),
		eventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Result events handed to the broker.",
		}, []string{"topic", "result"}),
		jobRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduled_job_runs_total",
			Help:      "Scheduled job executions.",
		}, []string{"job", "result"}),
		jobDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduled_job_duration_seconds",
			Help:      "Wall time of scheduled job executions.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 4, 8),
		}, []string{"job"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}

// ObserveCalculation counts one employee calculation. source is
// "preview", "employee" or "batch".
func ObserveCalculation(source, result string) {
	getMetrics().calculationsTotal.WithLabelValues(source, result).Inc()
}

func ObserveBatch(rateVersion string, elapsed time.Duration, succeeded, failed int) {
	m := getMetrics()
	m.batchDuration.WithLabelValues(rateVersion).Observe(elapsed.Seconds())
	m.batchEmployees.WithLabelValues(ResultSuccess).Add(float64(succeeded))
	m.batchEmployees.WithLabelValues(ResultError).Add(float64(failed))
}

func ObserveComplianceWarning(code string) {
	getMetrics().complianceWarnings.WithLabelValues(code).Inc()
}

func ObserveEventPublished(topic string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	getMetrics().eventsPublished.WithLabelValues(topic, result).Inc()
}

func ObserveJobRun(job string, elapsed time.Duration, err error) {
	m := getMetrics()
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.jobRuns.WithLabelValues(job, result).Inc()
	m.jobDuration.WithLabelValues(job).Observe(elapsed.Seconds())
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
