package http

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/vendora/catalog-service/internal/importer"
	"go.uber.org/zap"
)

type ImportHandler struct {
	pipeline   *importer.Pipeline
	uploadsDir string
	logger     *zap.Logger
}

func NewImportHandler(pipeline *importer.Pipeline, uploadsDir string, log *zap.Logger) *ImportHandler {
	return &ImportHandler{pipeline: pipeline, uploadsDir: uploadsDir, logger: log}
}

// Import accepts a CSV or XLSX catalog file as multipart field "file",
// stages it under the uploads dir and runs the pipeline. The staged
// file is removed by the pipeline whatever the outcome.
func (h *ImportHandler) Import(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "multipart field 'file' is required",
		})
	}

	var format string
	switch strings.ToLower(filepath.Ext(fileHeader.Filename)) {
	case ".csv":
		format = importer.FormatCSV
	case ".xlsx":
		format = importer.FormatXLSX
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status": "error", "message": "unsupported file type, expected .csv or .xlsx",
		})
	}

	if err := os.MkdirAll(h.uploadsDir, 0o755); err != nil {
		return respondError(c, fmt.Errorf("prepare uploads dir: %w", err))
	}
	staged := filepath.Join(h.uploadsDir, fmt.Sprintf("import-%d-%s%s",
		time.Now().UnixMilli(), uuid.New().String()[:8], filepath.Ext(fileHeader.Filename)))
	if err := c.SaveFile(fileHeader, staged); err != nil {
		return respondError(c, fmt.Errorf("stage upload: %w", err))
	}

	result, err := h.pipeline.ImportCatalog(c.Context(), vendorID(c), staged, format)
	if err != nil {
		return respondError(c, err)
	}

	h.logger.Info("catalog import request served",
		zap.String("vendor_id", vendorID(c)),
		zap.String("file", fileHeader.Filename),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return respondData(c, fiber.StatusOK, result)
}
