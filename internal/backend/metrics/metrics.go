// Package metrics provides the Prometheus metrics of the image label service.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"

	OperationCreate = "create"
	OperationList   = "list"
	OperationGet    = "get"
)

// ImageServiceMetrics contains the metrics recorded along the upload, detection
// and storage path. A nil *ImageServiceMetrics records nothing.
type ImageServiceMetrics struct {
	Uploads           *prometheus.CounterVec
	DetectionDuration *prometheus.HistogramVec
	DetectedObjects   prometheus.Histogram
	StorageErrors     *prometheus.CounterVec
	registry          *prometheus.Registry
}

// NewImageServiceMetrics creates the metrics and registers them on registry.
func NewImageServiceMetrics(registry *prometheus.Registry) (*ImageServiceMetrics, error) {
	m := &ImageServiceMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register image service metrics: %w", err)
	}
	return m, nil
}

func (m *ImageServiceMetrics) initMetrics() {
	m.Uploads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_uploads_total",
		Help: "Total number of image uploads by outcome.",
	}, []string{"status"})

	m.DetectionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "image_detection_duration_seconds",
		Help:    "Duration of object detection calls in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"detector", "status"})

	m.DetectedObjects = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_detected_objects",
		Help:    "Number of objects detected per image.",
		Buckets: prometheus.LinearBuckets(0, 2, 10),
	})

	m.StorageErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_storage_errors_total",
		Help: "Total number of failed storage operations.",
	}, []string{"operation"})
}

// Registry returns the registry the metrics were registered on.
func (m *ImageServiceMetrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordUpload counts a finished upload with the given status.
func (m *ImageServiceMetrics) RecordUpload(status string) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(status).Inc()
}

// ObserveDetection records the duration and, on success, the label count of one detection call.
func (m *ImageServiceMetrics) ObserveDetection(detector string, duration time.Duration, objects int, err error) {
	if m == nil {
		return
	}
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}
	m.DetectionDuration.WithLabelValues(detector, status).Observe(duration.Seconds())
	if err == nil {
		m.DetectedObjects.Observe(float64(objects))
	}
}

// RecordStorageError counts a failed store operation.
func (m *ImageServiceMetrics) RecordStorageError(operation string) {
	if m == nil {
		return
	}
	m.StorageErrors.WithLabelValues(operation).Inc()
}

// Collect implements the prometheus.Collector interface.
func (m *ImageServiceMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Uploads.Collect(ch)
	m.DetectionDuration.Collect(ch)
	ch <- m.DetectedObjects
	m.StorageErrors.Collect(ch)
}

// Describe implements the prometheus.Collector interface.
func (m *ImageServiceMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Uploads.Describe(ch)
	m.DetectionDuration.Describe(ch)
	ch <- m.DetectedObjects.Desc()
	m.StorageErrors.Describe(ch)
}
