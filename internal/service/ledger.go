package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/currencyguard-server/internal/logger"
	"github.com/dtroode/currencyguard-server/internal/model"
)

// Ledger records completed scans and serves their history.
type Ledger struct {
	scanStore    model.ScanStore
	userStore    model.UserStore
	historyLimit int
	logger       *logger.Logger
	now          func() time.Time
}

func NewLedger(
	scanStore model.ScanStore,
	userStore model.UserStore,
	historyLimit int,
	logger *logger.Logger,
) *Ledger {
	if historyLimit <= 0 {
		historyLimit = model.DefaultHistoryLimit
	}
	return &Ledger{
		scanStore:    scanStore,
		userStore:    userStore,
		historyLimit: historyLimit,
		logger:       logger,
		now:          time.Now,
	}
}

// HistoryLimit returns the page size used when no explicit limit is given.
func (l *Ledger) HistoryLimit() int {
	return l.historyLimit
}

// Record persists a classified scan for ownerID.
func (l *Ledger) Record(ctx context.Context, ownerID uuid.UUID, imageKey string, result model.Classification) (model.Scan, error) {
	if err := result.Validate(); err != nil {
		l.logger.Error("Ledger service: classification violates scan invariants",
			"user_id", ownerID,
			"error", err.Error())
		return model.Scan{}, err
	}

	_, err := l.userStore.GetByID(ctx, ownerID)
	if errors.Is(err, model.ErrNotFound) {
		l.logger.Warn("Ledger service: scan owner does not exist",
			"user_id", ownerID)
		return model.Scan{}, model.ErrInvalidOwner
	}
	if err != nil {
		return model.Scan{}, fmt.Errorf("failed to get user by id: %w", err)
	}

	scan := model.Scan{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		ImageKey:     imageKey,
		Verdict:      result.Verdict,
		Confidence:   result.Confidence,
		Denomination: result.Denomination,
		Features:     result.Features,
		CreatedAt:    l.now().UTC(),
	}
	if scan.Features == nil {
		scan.Features = []model.Feature{}
	}

	created, err := l.scanStore.Create(ctx, scan)
	if err != nil {
		l.logger.Error("Ledger service: failed to create scan",
			"user_id", ownerID,
			"error", err.Error())
		return model.Scan{}, fmt.Errorf("failed to create scan: %w", err)
	}

	l.logger.Info("Ledger service: scan recorded",
		"user_id", ownerID,
		"scan_id", created.ID,
		"verdict", created.Verdict)

	return created, nil
}

// ListByOwner returns the owner's scans newest first. A non-positive limit uses the configured page size.
func (l *Ledger) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Scan, error) {
	if limit <= 0 || limit > l.historyLimit {
		limit = l.historyLimit
	}

	scans, err := l.scanStore.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	if scans == nil {
		scans = []model.Scan{}
	}
	if len(scans) > limit {
		scans = scans[:limit]
	}

	return scans, nil
}

// Get returns one scan owned by ownerID. Scans of other owners are reported as not found.
func (l *Ledger) Get(ctx context.Context, ownerID, scanID uuid.UUID) (model.Scan, error) {
	scan, err := l.scanStore.GetByID(ctx, scanID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Scan{}, model.ErrNotFound
	}
	if err != nil {
		return model.Scan{}, fmt.Errorf("failed to get scan: %w", err)
	}

	if scan.OwnerID != ownerID {
		l.logger.Warn("Ledger service: scan requested by non-owner",
			"user_id", ownerID,
			"scan_id", scanID)
		return model.Scan{}, model.ErrNotFound
	}

	return scan, nil
}

// Stats aggregates the owner's scans.
func (l *Ledger) Stats(ctx context.Context, ownerID uuid.UUID) (model.ScanStats, error) {
	stats, err := l.scanStore.StatsByOwner(ctx, ownerID)
	if err != nil {
		return model.ScanStats{}, fmt.Errorf("failed to get scan stats: %w", err)
	}
	return stats, nil
}
