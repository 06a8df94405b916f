package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "carsplay_"

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	sessionsCompleted prometheus.Counter
	sessionsSettled   prometheus.Counter
	revenueSettled    prometheus.Gauge
	activeTimers      prometheus.Gauge
	stationRunning    *prometheus.GaugeVec

	timeLogSubmits *prometheus.CounterVec
	alarmNotifies  *prometheus.CounterVec
)

// Init registers the metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by path and status",
			},
			[]string{"path", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_latency_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path"},
		)
		sessionsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "sessions_completed_total",
			Help: "Sessions that reached their target duration",
		})
		sessionsSettled = prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "sessions_settled_total",
			Help: "Sessions whose amount was committed to the running total",
		})
		revenueSettled = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "settled_revenue",
			Help: "Aggregate settled amount across all stations",
		})
		activeTimers = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "active_timers",
			Help: "Stations with a running countdown",
		})
		stationRunning = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "station_running",
				Help: "Whether a station countdown is advancing (1 or 0)",
			},
			[]string{"station"},
		)
		timeLogSubmits = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "time_log_submits_total",
				Help: "Time log submissions by result",
			},
			[]string{"result"},
		)
		alarmNotifies = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alarm_notifications_total",
				Help: "Completion alarm notifications by result",
			},
			[]string{"result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			sessionsCompleted,
			sessionsSettled,
			revenueSettled,
			activeTimers,
			stationRunning,
			timeLogSubmits,
			alarmNotifies,
		)
	})
}

// ObserveHTTPRequest records one handled request.
func ObserveHTTPRequest(path string, status int, duration time.Duration) {
	if httpRequests == nil {
		return
	}
	httpRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
	httpLatency.WithLabelValues(path).Observe(duration.Seconds())
}

// SessionCompleted counts a session reaching its target duration.
func SessionCompleted() {
	if sessionsCompleted != nil {
		sessionsCompleted.Inc()
	}
}

// SessionSettled counts a settlement.
func SessionSettled() {
	if sessionsSettled != nil {
		sessionsSettled.Inc()
	}
}

// SettledRevenue sets the aggregate settled amount.
func SettledRevenue(total float64) {
	if revenueSettled != nil {
		revenueSettled.Set(total)
	}
}

// ActiveTimers sets the number of running stations.
func ActiveTimers(count int) {
	if activeTimers != nil {
		activeTimers.Set(float64(count))
	}
}

// SessionRunning flags whether a station's countdown is advancing.
func SessionRunning(stationID string, running bool) {
	if stationRunning == nil {
		return
	}
	value := 0.0
	if running {
		value = 1.0
	}
	stationRunning.WithLabelValues(stationID).Set(value)
}

// TimeLogSubmit counts a time log submission attempt.
func TimeLogSubmit(success bool) {
	if timeLogSubmits == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	timeLogSubmits.WithLabelValues(result).Inc()
}

// AlarmNotify counts a completion alarm delivery attempt.
func AlarmNotify(success bool) {
	if alarmNotifies == nil {
		return
	}
	result := "success"
	if !success {
		result = "error"
	}
	alarmNotifies.WithLabelValues(result).Inc()
}
