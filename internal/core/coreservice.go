package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jo-hoe/imagelabels/internal/backend/database"
	"github.com/jo-hoe/imagelabels/internal/backend/detection"
	"github.com/jo-hoe/imagelabels/internal/backend/metrics"
)

const (
	UploadSuccessMessage = "Image uploaded successfully"
	DefaultLabel         = "No label provided"
)

type CoreService struct {
	databaseService database.DatabaseService
	detector        detection.Detector
	uploads         *UploadStore
	metrics         *metrics.ImageServiceMetrics
}

func NewCoreService(databaseService database.DatabaseService, detector detection.Detector, uploads *UploadStore, serviceMetrics *metrics.ImageServiceMetrics) *CoreService {
	return &CoreService{
		databaseService: databaseService,
		detector:        detector,
		uploads:         uploads,
		metrics:         serviceMetrics,
	}
}

// NewCoreServiceFromConfig opens the configured store, detector and upload
// directory. The returned service owns the store and closes it on Close.
func NewCoreServiceFromConfig(ctx context.Context, config *ServiceConfig, serviceMetrics *metrics.ImageServiceMetrics) (*CoreService, error) {
	uploads, err := NewUploadStore(config.Uploads.Directory)
	if err != nil {
		return nil, err
	}

	detector, err := detection.New(ctx, config.Detection.Name, config.Detection.Params, config.Detection.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize detector: %w", err)
	}
	slog.Info("detector initialized", "name", detector.Name(), "timeout", config.Detection.Timeout)

	databaseService, err := getDatabaseService(ctx, config)
	if err != nil {
		return nil, err
	}
	return NewCoreService(databaseService, detector, uploads, serviceMetrics), nil
}

func getDatabaseService(ctx context.Context, config *ServiceConfig) (database.DatabaseService, error) {
	databaseService, err := database.NewDatabase(ctx, config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)
	return databaseService, nil
}

// CreateImage stores the upload, detects its objects and persists the record.
// Nothing is persisted and the stored file is removed when any step fails.
func (service *CoreService) CreateImage(ctx context.Context, upload *Upload, label string) (*database.ImageRecord, error) {
	if upload == nil {
		return nil, fmt.Errorf("%w: image file is required", ErrValidation)
	}

	file, err := service.uploads.Save(*upload)
	if err != nil {
		service.metrics.RecordUpload(metrics.StatusError)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	objects, err := service.detect(ctx, upload.Data)
	if err != nil {
		service.uploads.Remove(file)
		service.metrics.RecordUpload(metrics.StatusError)
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if strings.TrimSpace(label) == "" {
		label = DefaultLabel
	}

	record, err := service.databaseService.CreateImage(ctx, UploadSuccessMessage, label, objects, file)
	if err != nil {
		service.uploads.Remove(file)
		service.metrics.RecordStorageError(metrics.OperationCreate)
		service.metrics.RecordUpload(metrics.StatusError)
		return nil, fmt.Errorf("%w: failed to store image record: %w", ErrInternal, err)
	}

	service.metrics.RecordUpload(metrics.StatusSuccess)
	slog.Info("image stored", "id", record.ID, "objects", len(record.Objects), "file", file.FileName)
	return record, nil
}

func (service *CoreService) detect(ctx context.Context, image []byte) ([]string, error) {
	start := time.Now()
	objects, err := service.detector.Detect(ctx, image)
	service.metrics.ObserveDetection(service.detector.Name(), time.Since(start), len(objects), err)
	if err != nil {
		return nil, err
	}
	if objects == nil {
		objects = []string{}
	}
	return objects, nil
}

// ListImages returns all records, or only those matching rawFilter when it is
// not empty. The result is never nil.
func (service *CoreService) ListImages(ctx context.Context, rawFilter string) ([]*database.ImageRecord, error) {
	records, err := service.databaseService.GetAllImages(ctx)
	if err != nil {
		service.metrics.RecordStorageError(metrics.OperationList)
		return nil, fmt.Errorf("%w: failed to list images: %w", ErrInternal, err)
	}

	targets := ParseObjectFilter(rawFilter)
	if targets == nil {
		if records == nil {
			records = []*database.ImageRecord{}
		}
		return records, nil
	}
	return FilterImages(records, targets), nil
}

// GetImageByID looks up a record by its textual id. Ids that are not integers
// are reported as not found.
func (service *CoreService) GetImageByID(ctx context.Context, rawID string) (*database.ImageRecord, error) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid image id %q", ErrNotFound, rawID)
	}

	record, err := service.databaseService.GetImageByID(ctx, id)
	if err != nil {
		service.metrics.RecordStorageError(metrics.OperationGet)
		return nil, fmt.Errorf("%w: failed to get image %d: %w", ErrInternal, id, err)
	}
	if record == nil {
		return nil, fmt.Errorf("%w: image %d", ErrNotFound, id)
	}
	return record, nil
}

// UploadDirectory is where stored uploads are served from.
func (service *CoreService) UploadDirectory() string {
	return service.uploads.Directory()
}

func (service *CoreService) Close() error {
	return service.databaseService.Close()
}
