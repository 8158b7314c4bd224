package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDetector is a scriptable Detector for tests in this package.
type fakeDetector struct {
	name   string
	detect func(ctx context.Context, image []byte) ([]string, error)
	calls  int
}

func (f *fakeDetector) Name() string {
	return f.name
}

func (f *fakeDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	f.calls++
	return f.detect(ctx, image)
}

func TestWithTimeout_NonPositiveReturnsSameDetector(t *testing.T) {
	inner := &fakeDetector{name: "fake"}
	assert.Same(t, inner, WithTimeout(inner, 0))
	assert.Same(t, inner, WithTimeout(inner, -time.Second))
}

func TestWithTimeout_PassesLabelsThrough(t *testing.T) {
	inner := &fakeDetector{name: "fake", detect: func(ctx context.Context, image []byte) ([]string, error) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline, "inner detector should see a deadline")
		return []string{"Car", "Car", "Tree"}, nil
	}}

	labels, err := WithTimeout(inner, time.Second).Detect(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, []string{"Car", "Car", "Tree"}, labels)
	assert.Equal(t, "fake", WithTimeout(inner, time.Second).Name())
}

func TestWithTimeout_DeadlineExceededFailsWithoutRetry(t *testing.T) {
	inner := &fakeDetector{name: "slow", detect: func(ctx context.Context, image []byte) ([]string, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	labels, err := WithTimeout(inner, 20*time.Millisecond).Detect(context.Background(), []byte("img"))

	require.Error(t, err)
	assert.Nil(t, labels)
	assert.ErrorIs(t, err, ErrDetectionFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, 1, inner.calls, "detection must not be retried")
}

func TestWithTimeout_WrapsPlainErrors(t *testing.T) {
	cause := errors.New("quota exceeded")
	inner := &fakeDetector{name: "broken", detect: func(ctx context.Context, image []byte) ([]string, error) {
		return nil, cause
	}}

	_, err := WithTimeout(inner, time.Second).Detect(context.Background(), nil)

	assert.ErrorIs(t, err, ErrDetectionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, inner.calls)
}

func TestNew_UnknownDetector(t *testing.T) {
	_, err := New(context.Background(), "NoSuchDetector", nil, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown detector")
}

func TestNew_WrapsWithTimeout(t *testing.T) {
	detector, err := New(context.Background(), HTTPInferenceName, map[string]any{"url": "http://inference.test/predict"}, time.Second)
	require.NoError(t, err)

	assert.IsType(t, &timeoutDetector{}, detector)
	assert.Equal(t, HTTPInferenceName, detector.Name())
}
