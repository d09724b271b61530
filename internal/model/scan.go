package model

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit caps history listings when no explicit limit is given.
const DefaultHistoryLimit = 50

// Verdict is the two-valued classification outcome.
type Verdict string

const (
	// VerdictGenuine marks a note classified as genuine.
	VerdictGenuine Verdict = "genuine"
	// VerdictCounterfeit marks a note classified as counterfeit.
	VerdictCounterfeit Verdict = "counterfeit"
)

// Valid reports whether v is one of the two allowed verdicts.
func (v Verdict) Valid() bool {
	return v == VerdictGenuine || v == VerdictCounterfeit
}

// Feature is a named sub-signal score in [0, 100].
type Feature struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Classification is the validated result produced by the classifier gateway.
type Classification struct {
	Verdict      Verdict
	Confidence   float64
	Denomination *string
	Features     []Feature
}

// Validate checks the scan record invariants.
func (c Classification) Validate() error {
	if !c.Verdict.Valid() {
		return fmt.Errorf("%w: unknown verdict %q", ErrInvalidScan, c.Verdict)
	}
	if !inPercentRange(c.Confidence) {
		return fmt.Errorf("%w: confidence %v out of range", ErrInvalidScan, c.Confidence)
	}
	for i, f := range c.Features {
		if f.Name == "" {
			return fmt.Errorf("%w: feature %d has no name", ErrInvalidScan, i)
		}
		if !inPercentRange(f.Score) {
			return fmt.Errorf("%w: feature %q score %v out of range", ErrInvalidScan, f.Name, f.Score)
		}
	}
	return nil
}

func inPercentRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 100
}

// Scan is an immutable record of one completed scan.
type Scan struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	ImageKey     string
	Verdict      Verdict
	Confidence   float64
	Denomination *string
	Features     []Feature
	CreatedAt    time.Time
}

// Classification returns the classification part of the record.
func (s Scan) Classification() Classification {
	return Classification{
		Verdict:      s.Verdict,
		Confidence:   s.Confidence,
		Denomination: s.Denomination,
		Features:     s.Features,
	}
}

// ScanStats aggregates an owner's scans.
type ScanStats struct {
	Total             int
	Genuine           int
	Counterfeit       int
	AverageConfidence float64
}

// ScanStore defines persistence operations for scans.
type ScanStore interface {
	Create(ctx context.Context, scan Scan) (Scan, error)
	GetByID(ctx context.Context, id uuid.UUID) (Scan, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]Scan, error)
	StatsByOwner(ctx context.Context, ownerID uuid.UUID) (ScanStats, error)
}

// Image is an uploaded image payload.
type Image struct {
	Data        []byte
	Filename    string
	ContentType string
}

// Classifier classifies banknote images.
type Classifier interface {
	Classify(ctx context.Context, image Image) (Classification, error)
}
