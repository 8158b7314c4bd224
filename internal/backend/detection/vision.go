package detection

import (
	"context"
	"encoding/base64"
	"fmt"

	"google.golang.org/api/option"
	vision "google.golang.org/api/vision/v1"
)

const (
	GoogleVisionName = "GoogleVision"

	objectLocalizationFeature = "OBJECT_LOCALIZATION"
)

// GoogleVisionDetector runs Cloud Vision object localization and returns the
// name of every localized object in the order the API reports them.
type GoogleVisionDetector struct {
	name       string
	service    *vision.Service
	maxResults int64
}

// NewGoogleVisionDetector reads the optional params "credentialsFile", "apiKey",
// "endpoint" and "maxResults". Without credentials the client falls back to
// application default credentials (GOOGLE_APPLICATION_CREDENTIALS).
func NewGoogleVisionDetector(ctx context.Context, params map[string]any) (Detector, error) {
	var opts []option.ClientOption
	if credentialsFile := GetStringParam(params, "credentialsFile", ""); credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	if apiKey := GetStringParam(params, "apiKey", ""); apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if endpoint := GetStringParam(params, "endpoint", ""); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	maxResults := GetIntParam(params, "maxResults", 0)
	if maxResults < 0 {
		return nil, fmt.Errorf("maxResults must not be negative, got %d", maxResults)
	}
	detector, err := newGoogleVisionDetector(ctx, int64(maxResults), opts...)
	if err != nil {
		return nil, err
	}
	return detector, nil
}

func newGoogleVisionDetector(ctx context.Context, maxResults int64, opts ...option.ClientOption) (*GoogleVisionDetector, error) {
	service, err := vision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &GoogleVisionDetector{
		name:       GoogleVisionName,
		service:    service,
		maxResults: maxResults,
	}, nil
}

func (d *GoogleVisionDetector) Name() string {
	return d.name
}

func (d *GoogleVisionDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	request := &vision.BatchAnnotateImagesRequest{
		Requests: []*vision.AnnotateImageRequest{{
			Image: &vision.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*vision.Feature{{
				Type:       objectLocalizationFeature,
				MaxResults: d.maxResults,
			}},
		}},
	}

	response, err := d.service.Images.Annotate(request).Context(ctx).Do()
	if err != nil {
		return nil, wrapDetectionError(d.name, fmt.Errorf("annotate image: %w", err))
	}
	if len(response.Responses) == 0 {
		return nil, wrapDetectionError(d.name, fmt.Errorf("annotate image: empty response"))
	}

	result := response.Responses[0]
	if result.Error != nil && result.Error.Code != 0 {
		return nil, wrapDetectionError(d.name,
			fmt.Errorf("annotate image: status %d: %s", result.Error.Code, result.Error.Message))
	}

	labels := make([]string, 0, len(result.LocalizedObjectAnnotations))
	for _, annotation := range result.LocalizedObjectAnnotations {
		labels = append(labels, annotation.Name)
	}
	return labels, nil
}

func init() {
	if err := DefaultRegistry.Register(GoogleVisionName, NewGoogleVisionDetector); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", GoogleVisionName, err))
	}
}
