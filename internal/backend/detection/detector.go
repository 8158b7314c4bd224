// Package detection wraps external object detection services behind a single
// Detector interface. Detectors return labels exactly as the service reports
// them: no deduplication, no confidence filtering, service order preserved.
package detection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrDetectionFailed marks every error returned by a Detector.
var ErrDetectionFailed = errors.New("object detection failed")

// Detector identifies objects in an encoded image.
type Detector interface {
	Name() string
	Detect(ctx context.Context, image []byte) ([]string, error)
}

// DetectorFactory creates a detector from configuration parameters.
type DetectorFactory func(ctx context.Context, params map[string]any) (Detector, error)

// New creates the named detector from the default registry. A positive timeout
// bounds every Detect call; failed calls are never retried.
func New(ctx context.Context, name string, params map[string]any, timeout time.Duration) (Detector, error) {
	detector, err := DefaultRegistry.Create(ctx, name, params)
	if err != nil {
		return nil, err
	}
	return WithTimeout(detector, timeout), nil
}

func wrapDetectionError(detector string, err error) error {
	if errors.Is(err, ErrDetectionFailed) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrDetectionFailed, detector, err)
}

type timeoutDetector struct {
	inner   Detector
	timeout time.Duration
}

// WithTimeout returns a detector whose calls are cancelled after timeout.
// A non-positive timeout returns the detector unchanged.
func WithTimeout(detector Detector, timeout time.Duration) Detector {
	if timeout <= 0 {
		return detector
	}
	return &timeoutDetector{inner: detector, timeout: timeout}
}

func (d *timeoutDetector) Name() string {
	return d.inner.Name()
}

func (d *timeoutDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	labels, err := d.inner.Detect(ctx, image)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Warn("detector timed out", "detector", d.inner.Name(), "timeout", d.timeout, "elapsed", time.Since(start))
			return nil, fmt.Errorf("%w: %s timed out after %s: %w", ErrDetectionFailed, d.inner.Name(), d.timeout, err)
		}
		return nil, wrapDetectionError(d.inner.Name(), err)
	}
	return labels, nil
}
