package backend

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/jo-hoe/imagelabels/internal/backend/metrics"
	"github.com/jo-hoe/imagelabels/internal/core"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	imageFormField = "image"
	labelFormField = "label"
	objectsQuery   = "objects"

	messageFileRequired  = "Image file is required"
	messageInternalError = "Internal server error"
	messageNotFound      = "Image not found"
)

type APIService struct {
	config      *core.ServiceConfig
	coreService *core.CoreService
	metrics     *metrics.ImageServiceMetrics
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService, serviceMetrics *metrics.ImageServiceMetrics) *APIService {
	return &APIService{
		config:      config,
		coreService: coreService,
		metrics:     serviceMetrics,
	}
}

func (s *APIService) SetRoutes(e *echo.Echo) {
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.CORS.AllowOrigins,
	}))
	e.Use(middleware.BodyLimit(s.config.Uploads.MaxBodySize))

	// Set probe route
	e.GET("/probe", func(c echo.Context) error {
		return c.String(http.StatusOK, "API Service is running")
	})

	if registry := s.metrics.Registry(); registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	e.Static(s.config.Uploads.URLPrefix, s.coreService.UploadDirectory())

	e.POST("/images", s.createImageHandler)
	e.GET("/images", s.listImagesHandler)
	e.GET("/images/:id", s.getImageHandler)
}

func (s *APIService) createImageHandler(ctx echo.Context) error {
	file, err := ctx.FormFile(imageFormField)
	if err != nil {
		slog.Warn("createImageHandler: missing image file",
			"status", http.StatusBadRequest, "error", err)
		return ctx.JSON(http.StatusBadRequest, errorResponse{Error: messageFileRequired})
	}

	src, err := file.Open()
	if err != nil {
		slog.Error("createImageHandler: failed to open uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternalError})
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("createImageHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		slog.Error("createImageHandler: failed to read uploaded file",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternalError})
	}

	upload := &core.Upload{
		FieldName:    imageFormField,
		OriginalName: file.Filename,
		Encoding:     file.Header.Get("Content-Transfer-Encoding"),
		MimeType:     file.Header.Get(echo.HeaderContentType),
		Data:         data,
	}

	record, err := s.coreService.CreateImage(ctx.Request().Context(), upload, ctx.FormValue(labelFormField))
	if err != nil {
		if errors.Is(err, core.ErrValidation) {
			slog.Warn("createImageHandler: invalid upload",
				"status", http.StatusBadRequest, "error", err, "filename", file.Filename)
			return ctx.JSON(http.StatusBadRequest, errorResponse{Error: messageFileRequired})
		}
		slog.Error("createImageHandler: failed to process uploaded image",
			"status", http.StatusInternalServerError, "error", err, "filename", file.Filename)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternalError})
	}

	return ctx.JSON(http.StatusOK, record)
}

func (s *APIService) listImagesHandler(ctx echo.Context) error {
	filter := ctx.QueryParam(objectsQuery)

	records, err := s.coreService.ListImages(ctx.Request().Context(), filter)
	if err != nil {
		slog.Error("listImagesHandler: failed to list images",
			"status", http.StatusInternalServerError, "error", err, "objects", filter)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternalError})
	}

	return ctx.JSON(http.StatusOK, records)
}

func (s *APIService) getImageHandler(ctx echo.Context) error {
	id := ctx.Param("id")

	record, err := s.coreService.GetImageByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			slog.Warn("getImageHandler: image not found",
				"status", http.StatusNotFound, "image_id", id)
			return ctx.JSON(http.StatusNotFound, messageResponse{Message: messageNotFound})
		}
		slog.Error("getImageHandler: failed to get image",
			"status", http.StatusInternalServerError, "image_id", id, "error", err)
		return ctx.JSON(http.StatusInternalServerError, errorResponse{Error: messageInternalError})
	}

	return ctx.JSON(http.StatusOK, record)
}
