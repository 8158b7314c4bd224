package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const HTTPInferenceName = "HTTPInference"

// maxErrorBody caps how much of a failed response is kept for the error message.
const maxErrorBody = 512

// HTTPInferenceDetector posts the image to a self-hosted inference service as
// multipart field "file" and reads back {"detections":[{"class":...}]}.
type HTTPInferenceDetector struct {
	name      string
	url       string
	client    *http.Client
	converter *pngConverter
}

type inferenceDetection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type inferenceResponse struct {
	Detections []inferenceDetection `json:"detections"`
}

// NewHTTPInferenceDetector creates the detector from its params: "url" (required),
// "svgFallbackWidth" and "svgFallbackHeight" for SVG uploads without explicit size.
func NewHTTPInferenceDetector(_ context.Context, params map[string]any) (Detector, error) {
	if err := ValidateRequiredParams(params, []string{"url"}); err != nil {
		return nil, err
	}
	return &HTTPInferenceDetector{
		name:   HTTPInferenceName,
		url:    GetStringParam(params, "url", ""),
		client: &http.Client{},
		converter: newPngConverter(
			GetIntParam(params, "svgFallbackWidth", 0),
			GetIntParam(params, "svgFallbackHeight", 0),
		),
	}, nil
}

func (d *HTTPInferenceDetector) Name() string {
	return d.name
}

func (d *HTTPInferenceDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	payload, extension, err := d.converter.Prepare(image)
	if err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("prepare image: %w", err))
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "image."+extension)
	if err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("create form file: %w", err))
	}
	if _, err := part.Write(payload); err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("write image data: %w", err))
	}
	if err := writer.Close(); err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("close multipart body: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, body)
	if err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("send request: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, wrapDetectionError(d.name,
			fmt.Errorf("inference failed with status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet)))
	}

	var result inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("decode response: %w", err))
	}

	labels := make([]string, 0, len(result.Detections))
	for _, detection := range result.Detections {
		labels = append(labels, detection.Class)
	}
	return labels, nil
}

func init() {
	if err := DefaultRegistry.Register(HTTPInferenceName, NewHTTPInferenceDetector); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", HTTPInferenceName, err))
	}
}
