package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/api/http/middleware"
	"github.com/dtroode/currencyguard-server/internal/apierror"
	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// multipartOverhead is allowed on top of the image limit for boundaries and part headers.
const multipartOverhead = 1 << 20

// imageFields are the accepted multipart field names, in order of preference.
var imageFields = []string{"image", "file"}

// ScanService defines the scan submission pipeline.
type ScanService interface {
	Submit(ctx context.Context, userID uuid.UUID, image model.Image) (model.Classification, error)
	OpenImage(ctx context.Context, userID, scanID uuid.UUID) (io.ReadCloser, string, error)
	UploadMaxBytes() int64
}

// LedgerService defines read access to a user's scans.
type LedgerService interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Scan, error)
	Get(ctx context.Context, ownerID, scanID uuid.UUID) (model.Scan, error)
	Stats(ctx context.Context, ownerID uuid.UUID) (model.ScanStats, error)
}

// Scan handles scan submission and the scan history endpoints.
type Scan struct {
	scanService    ScanService
	ledgerService  LedgerService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewScan creates a new Scan handler.
func NewScan(
	scanService ScanService,
	ledgerService LedgerService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Scan {
	return &Scan{
		scanService:    scanService,
		ledgerService:  ledgerService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Submit classifies an uploaded banknote image.
// POST /scan
func (h *Scan) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	image, err := h.readImage(w, r)
	if err != nil {
		h.logger.Info("Scan handler: upload rejected",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	result, err := h.scanService.Submit(r.Context(), userID, image)
	if err != nil {
		h.logger.Error("Scan handler: scan failed",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toClassificationResponse(result))
}

// History lists the caller's most recent scans, newest first.
// GET /history
func (h *Scan) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			handleError(w, apierror.NewErrValidation("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	scans, err := h.ledgerService.ListByOwner(r.Context(), userID, limit)
	if err != nil {
		h.logger.Error("Scan handler: failed to list history",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	response := make([]scanResponse, 0, len(scans))
	for _, s := range scans {
		response = append(response, toScanResponse(s))
	}

	middleware.WriteJSON(w, http.StatusOK, response)
}

// Get returns one of the caller's scans.
// GET /scans/{id}
func (h *Scan) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	scanID, ok := scanIDParam(w, r)
	if !ok {
		return
	}

	scan, err := h.ledgerService.Get(r.Context(), userID, scanID)
	if err != nil {
		h.handleLookupError(w, userID, scanID, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, toScanResponse(scan))
}

// Image streams the stored image of one of the caller's scans.
// GET /scans/{id}/image
func (h *Scan) Image(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	scanID, ok := scanIDParam(w, r)
	if !ok {
		return
	}

	reader, contentType, err := h.scanService.OpenImage(r.Context(), userID, scanID)
	if err != nil {
		h.handleLookupError(w, userID, scanID, err)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Warn("Scan handler: image stream interrupted",
			"user_id", userID,
			"scan_id", scanID,
			"error", err.Error())
	}
}

// Stats returns aggregate counts over the caller's scans.
// GET /stats
func (h *Scan) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	stats, err := h.ledgerService.Stats(r.Context(), userID)
	if err != nil {
		h.logger.Error("Scan handler: failed to compute stats",
			"user_id", userID,
			"error", err.Error())
		handleError(w, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, statsResponse{
		Total:             stats.Total,
		Genuine:           stats.Genuine,
		Counterfeit:       stats.Counterfeit,
		AverageConfidence: stats.AverageConfidence,
	})
}

func (h *Scan) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		handleError(w, apierror.NewErrMissingAuthorizationToken())
		return uuid.Nil, false
	}
	return userID, true
}

func (h *Scan) handleLookupError(w http.ResponseWriter, userID, scanID uuid.UUID, err error) {
	if errors.Is(err, model.ErrNotFound) {
		handleError(w, apierror.NewErrScanNotFound(scanID.String()))
		return
	}
	h.logger.Error("Scan handler: failed to load scan",
		"user_id", userID,
		"scan_id", scanID,
		"error", err.Error())
	handleError(w, err)
}

// readImage pulls the first image part out of a multipart body without
// buffering the rest of the form.
func (h *Scan) readImage(w http.ResponseWriter, r *http.Request) (model.Image, error) {
	maxBytes := h.scanService.UploadMaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		return model.Image{}, apierror.NewErrValidation("request must be multipart/form-data")
	}

	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return model.Image{}, apierror.NewErrValidation("no image uploaded")
		}
		if err != nil {
			return model.Image{}, uploadError(err, maxBytes)
		}

		if !isImageField(part) {
			part.Close()
			continue
		}

		// One byte past the limit is enough to detect an oversized upload.
		data, err := io.ReadAll(io.LimitReader(part, maxBytes+1))
		part.Close()
		if err != nil {
			return model.Image{}, uploadError(err, maxBytes)
		}
		if int64(len(data)) > maxBytes {
			return model.Image{}, apierror.NewErrPayloadTooLarge(maxBytes)
		}

		return model.Image{
			Data:        data,
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
		}, nil
	}
}

func isImageField(part *multipart.Part) bool {
	name := part.FormName()
	for _, field := range imageFields {
		if name == field {
			return true
		}
	}
	return false
}

func uploadError(err error, maxBytes int64) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierror.NewErrPayloadTooLarge(maxBytes)
	}
	return apierror.NewErrValidation("malformed multipart body")
}

func scanIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	scanID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, apierror.NewErrValidation("scan id must be a UUID"))
		return uuid.Nil, false
	}
	return scanID, true
}
