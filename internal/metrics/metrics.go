package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lightsensord/internal/models"
	"lightsensord/internal/sensor"
)

const namespace = "als"

// Metrics holds the daemon's collectors on a private registry so that tests
// and multiple instances do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	readings    prometheus.Counter
	dropped     prometheus.Counter
	anomalies   prometheus.Counter
	readErrors  prometheus.Counter
	enabled     prometheus.Gauge
	calibration prometheus.Gauge
	light       *prometheus.GaugeVec

	mu        sync.Mutex
	lastStats sensor.Stats
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		readings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_emitted_total",
			Help:      "Light readings emitted at sync boundaries",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "boundaries_dropped_total",
			Help:      "Sync boundaries seen while the sensor was disabled",
		}),
		anomalies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Input events of unexpected type",
		}),
		readErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_errors_total",
			Help:      "Failed reads from the input device",
		}),
		enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enabled",
			Help:      "1 when the sensor is enabled",
		}),
		calibration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calibration_applied",
			Help:      "1 when a calibration factor was written to the device",
		}),
		light: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "light_level",
			Help:      "Last emitted light value per channel",
		}, []string{"channel"}),
	}

	m.registry.MustRegister(
		m.readings,
		m.dropped,
		m.anomalies,
		m.readErrors,
		m.enabled,
		m.calibration,
		m.light,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveStats adds the growth of the aggregator counters since the previous
// call. Counters that went backwards (a new sensor instance) are taken as-is.
func (m *Metrics) ObserveStats(s sensor.Stats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.readings.Add(delta(s.Emitted, m.lastStats.Emitted))
	m.dropped.Add(delta(s.Dropped, m.lastStats.Dropped))
	m.anomalies.Add(delta(s.Anomalies, m.lastStats.Anomalies))
	m.lastStats = s
}

func delta(cur, prev uint64) float64 {
	if cur < prev {
		return float64(cur)
	}
	return float64(cur - prev)
}

func (m *Metrics) ObserveReading(r models.Reading) {
	m.light.WithLabelValues("ambient").Set(float64(r.Ambient()))
	m.light.WithLabelValues("white").Set(float64(r.White()))
}

func (m *Metrics) ReadError() { m.readErrors.Inc() }

func (m *Metrics) SetEnabled(on bool) { m.enabled.Set(boolToFloat(on)) }

func (m *Metrics) SetCalibrationApplied(applied bool) { m.calibration.Set(boolToFloat(applied)) }

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
