// Package metrics provides Prometheus metrics for conversions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversion metrics
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lcsc2kicad_conversions_total",
			Help: "Total number of component conversions",
		},
		[]string{"status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lcsc2kicad_conversion_duration_seconds",
			Help:    "Time taken to convert one component",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"status"},
	)

	// Mesh download metrics
	MeshDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lcsc2kicad_mesh_downloads_total",
			Help: "Total number of 3D mesh downloads",
		},
		[]string{"format", "status"},
	)

	// Batch metrics
	BatchInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "lcsc2kicad_batch_in_flight",
			Help: "Number of conversions currently admitted by the batch gate",
		},
	)

	// Library metrics
	RemovalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lcsc2kicad_removed_artifacts_total",
			Help: "Total number of library artifacts removed",
		},
		[]string{"kind"},
	)
)

// Status labels.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

func status(err error) string {
	if err != nil {
		return StatusError
	}
	return StatusOK
}

// RecordConversion records the outcome and duration of one conversion.
func RecordConversion(err error, duration time.Duration) {
	s := status(err)
	ConversionsTotal.WithLabelValues(s).Inc()
	ConversionDuration.WithLabelValues(s).Observe(duration.Seconds())
}

// RecordMeshDownload records one mesh fetch for the given format.
func RecordMeshDownload(format string, err error) {
	MeshDownloadsTotal.WithLabelValues(format, status(err)).Inc()
}

// RecordRemoval adds removed artifact counts per kind.
func RecordRemoval(symbols, footprints, models int) {
	RemovalsTotal.WithLabelValues("symbol").Add(float64(symbols))
	RemovalsTotal.WithLabelValues("footprint").Add(float64(footprints))
	RemovalsTotal.WithLabelValues("model").Add(float64(models))
}
