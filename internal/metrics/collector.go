package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"wildfire-monitoring-system/internal/domain"
)

const (
	namespace = "wildfire"
	subsystem = "monitoring"
)

var droneStatuses = []domain.DroneStatus{
	domain.DroneStatusIdle,
	domain.DroneStatusLaunching,
	domain.DroneStatusOnMission,
	domain.DroneStatusReturning,
	domain.DroneStatusCharging,
	domain.DroneStatusMaintenance,
}

var openMissionStatuses = []domain.MissionStatus{
	domain.MissionStatusPending,
	domain.MissionStatusLaunching,
	domain.MissionStatusActive,
}

// Collector holds all metrics for the monitoring service
type Collector struct {
	// Scan cycle metrics
	cycles           prometheus.Counter
	cycleDuration    prometheus.Histogram
	missionsCreated  prometheus.Counter
	missionsAssigned prometheus.Counter
	sinkErrors       *prometheus.CounterVec

	// State gauges
	areaRisk       *prometheus.GaugeVec
	highRiskAreas  prometheus.Gauge
	dronesByStatus *prometheus.GaugeVec
	openMissions   *prometheus.GaugeVec

	// HTTP metrics
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewCollector creates a new metrics collector registered with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_cycles_total",
			Help:      "Total number of completed scan cycles",
		}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scan_cycle_duration_seconds",
			Help:      "Duration of scan cycles",
			Buckets:   prometheus.DefBuckets,
		}),
		missionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "missions_created_total",
			Help:      "Total number of missions created by scan cycles",
		}),
		missionsAssigned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "pending_missions_assigned_total",
			Help:      "Total number of pending missions assigned on retry",
		}),
		sinkErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sink_errors_total",
			Help:      "Total number of failed archive or snapshot writes",
		}, []string{"sink"}),

		areaRisk: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "area_risk",
			Help:      "Latest total risk per area",
		}, []string{"area", "alert_level"}),
		highRiskAreas: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "high_risk_areas",
			Help:      "Number of areas at or above the HIGH cut-point",
		}),
		dronesByStatus: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "drones",
			Help:      "Number of drones per status",
		}, []string{"status"}),
		openMissions: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "open_missions",
			Help:      "Number of non-completed missions per status",
		}, []string{"status"}),

		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveCycle implements ports.CycleObserver
func (c *Collector) ObserveCycle(report domain.CycleReport) {
	c.cycles.Inc()
	c.cycleDuration.Observe(report.Duration.Seconds())
	c.missionsCreated.Add(float64(report.MissionsCreated))
	c.missionsAssigned.Add(float64(report.MissionsAssigned))

	c.areaRisk.Reset()
	for _, a := range report.Assessments {
		c.areaRisk.WithLabelValues(a.AreaKey, string(a.AlertLevel)).Set(a.TotalRisk)
	}
	c.highRiskAreas.Set(float64(len(report.Update.HighRiskAreas)))

	drones := make(map[domain.DroneStatus]int, len(droneStatuses))
	for _, d := range report.Update.FleetStatus.Drones {
		drones[d.Status]++
	}
	for _, s := range droneStatuses {
		c.dronesByStatus.WithLabelValues(string(s)).Set(float64(drones[s]))
	}

	missions := make(map[domain.MissionStatus]int, len(openMissionStatuses))
	for _, m := range report.Update.FleetStatus.ActiveMissions {
		missions[m.Status]++
	}
	for _, s := range openMissionStatuses {
		c.openMissions.WithLabelValues(string(s)).Set(float64(missions[s]))
	}
}

// ObserveSinkError implements ports.CycleObserver
func (c *Collector) ObserveSinkError(sink string) {
	c.sinkErrors.WithLabelValues(sink).Inc()
}

// Middleware records request counts and latency by chi route pattern
func (c *Collector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		c.httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		c.httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
