package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// imageKeyPrefix is the object storage prefix for scan images.
const imageKeyPrefix = "scans"

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// ScanMetrics counts recorded scans.
type ScanMetrics interface {
	RecordScan(verdict string)
}

// Scan runs the submit pipeline: validate, classify, store the image, record.
type Scan struct {
	classifier     model.Classifier
	storage        model.Storage
	ledger         *Ledger
	uploadMaxBytes int64
	metrics        ScanMetrics
	logger         *logger.Logger
}

func NewScan(
	classifier model.Classifier,
	storage model.Storage,
	ledger *Ledger,
	uploadMaxBytes int64,
	metrics ScanMetrics,
	logger *logger.Logger,
) *Scan {
	return &Scan{
		classifier:     classifier,
		storage:        storage,
		ledger:         ledger,
		uploadMaxBytes: uploadMaxBytes,
		metrics:        metrics,
		logger:         logger,
	}
}

// UploadMaxBytes returns the largest accepted image size.
func (s *Scan) UploadMaxBytes() int64 {
	return s.uploadMaxBytes
}

// Submit classifies the image and records the result for userID.
// Nothing is stored unless classification succeeds, and the result is
// returned only after the ledger write is confirmed.
func (s *Scan) Submit(ctx context.Context, userID uuid.UUID, image model.Image) (model.Classification, error) {
	image, err := s.validateImage(image)
	if err != nil {
		s.logger.Info("Scan service: image rejected",
			"user_id", userID,
			"reason", err.Error())
		return model.Classification{}, err
	}

	s.logger.Debug("Scan service: classifying image",
		"user_id", userID,
		"filename", image.Filename,
		"content_type", image.ContentType,
		"size", len(image.Data))

	result, err := s.classifier.Classify(ctx, image)
	if err != nil {
		s.logger.Error("Scan service: classification failed",
			"user_id", userID,
			"error", err.Error())
		return model.Classification{}, fmt.Errorf("%w: %w", apierror.NewErrClassifierFailed(), err)
	}

	key := imageKey(userID, image)
	err = s.storage.Upload(ctx, key, bytes.NewReader(image.Data), int64(len(image.Data)), image.ContentType)
	if err != nil {
		s.logger.Error("Scan service: failed to store image",
			"user_id", userID,
			"key", key,
			"error", err.Error())
		return model.Classification{}, fmt.Errorf("failed to store image: %w", err)
	}

	scan, err := s.ledger.Record(ctx, userID, key, result)
	if err != nil {
		msg := "Scan service: failed to record scan"
		if errors.Is(err, model.ErrInvalidScan) {
			msg = "Scan service: classification rejected by ledger invariants"
		}
		s.logger.Error(msg,
			"user_id", userID,
			"key", key,
			"error", err.Error())
		s.discardImage(ctx, key)
		return model.Classification{}, fmt.Errorf("failed to record scan: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordScan(string(scan.Verdict))
	}

	s.logger.Info("Scan service: scan completed",
		"user_id", userID,
		"scan_id", scan.ID,
		"verdict", scan.Verdict,
		"confidence", scan.Confidence)

	return scan.Classification(), nil
}

// OpenImage streams the stored image of a scan owned by userID.
func (s *Scan) OpenImage(ctx context.Context, userID, scanID uuid.UUID) (io.ReadCloser, string, error) {
	scan, err := s.ledger.Get(ctx, userID, scanID)
	if err != nil {
		return nil, "", err
	}

	exists, err := s.storage.Exists(ctx, scan.ImageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to check image: %w", err)
	}
	if !exists {
		s.logger.Warn("Scan service: recorded scan has no stored image",
			"user_id", userID,
			"scan_id", scanID,
			"key", scan.ImageKey)
		return nil, "", model.ErrNotFound
	}

	reader, err := s.storage.Download(ctx, scan.ImageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}

	contentType := mime.TypeByExtension(path.Ext(scan.ImageKey))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return reader, contentType, nil
}

func (s *Scan) validateImage(image model.Image) (model.Image, error) {
	if len(image.Data) == 0 {
		return image, apierror.NewErrValidation("no image uploaded")
	}
	if s.uploadMaxBytes > 0 && int64(len(image.Data)) > s.uploadMaxBytes {
		return image, apierror.NewErrPayloadTooLarge(s.uploadMaxBytes)
	}

	contentType := strings.ToLower(strings.TrimSpace(image.ContentType))
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = mediaType
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(image.Data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return image, apierror.NewErrValidation("uploaded file is not an image")
	}
	image.ContentType = contentType

	if image.Filename == "" {
		image.Filename = "upload" + extensionFor(image)
	}

	return image, nil
}

func (s *Scan) discardImage(ctx context.Context, key string) {
	err := s.storage.Delete(context.WithoutCancel(ctx), key)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		s.logger.Warn("Scan service: failed to delete orphaned image",
			"key", key,
			"error", err.Error())
	}
}

func imageKey(userID uuid.UUID, image model.Image) string {
	return path.Join(imageKeyPrefix, userID.String(), uuid.NewString()+extensionFor(image))
}

func extensionFor(image model.Image) string {
	ext := strings.ToLower(path.Ext(image.Filename))
	if ext != "" && strings.HasPrefix(mime.TypeByExtension(ext), "image/") {
		return ext
	}
	if ext, ok := imageExtensions[image.ContentType]; ok {
		return ext
	}
	exts, err := mime.ExtensionsByType(image.ContentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
