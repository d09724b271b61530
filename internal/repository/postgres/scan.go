package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/currencyguard-server/internal/model"
)

// foreignKeyViolation is the Postgres SQLSTATE for a foreign key violation.
const foreignKeyViolation = "23503"

var _ model.ScanStore = (*ScanRepository)(nil)

type ScanRepository struct {
	db *Connection
}

func NewScanRepository(db *Connection) *ScanRepository {
	return &ScanRepository{
		db: db,
	}
}

const scanColumns = `id, owner_id, image_key, verdict, confidence, denomination, features, created_at`

func (r *ScanRepository) Create(ctx context.Context, scan model.Scan) (model.Scan, error) {
	features, err := json.Marshal(nonNilFeatures(scan.Features))
	if err != nil {
		return model.Scan{}, fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `INSERT INTO scans (` + scanColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING ` + scanColumns

	saved, err := scanRow(r.db.QueryRow(ctx, query,
		scan.ID, scan.OwnerID, scan.ImageKey, string(scan.Verdict), scan.Confidence,
		scan.Denomination, features, scan.CreatedAt,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return model.Scan{}, model.ErrInvalidOwner
		}
		return model.Scan{}, fmt.Errorf("failed to create scan: %w", err)
	}

	return saved, nil
}

func (r *ScanRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Scan, error) {
	query := `SELECT ` + scanColumns + ` FROM scans WHERE id = $1`

	scan, err := scanRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Scan{}, model.ErrNotFound
		}
		return model.Scan{}, fmt.Errorf("failed to get scan by id: %w", err)
	}

	return scan, nil
}

func (r *ScanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit int) ([]model.Scan, error) {
	query := `SELECT ` + scanColumns + `
			  FROM scans
			  WHERE owner_id = $1
			  ORDER BY created_at DESC, id DESC
			  LIMIT $2`

	rows, err := r.db.Query(ctx, query, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}
	defer rows.Close()

	scans := make([]model.Scan, 0)
	for rows.Next() {
		scan, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scans: %w", err)
	}

	return scans, nil
}

func (r *ScanRepository) StatsByOwner(ctx context.Context, ownerID uuid.UUID) (model.ScanStats, error) {
	query := `SELECT count(*),
			         count(*) FILTER (WHERE verdict = 'genuine'),
			         count(*) FILTER (WHERE verdict = 'counterfeit'),
			         coalesce(avg(confidence), 0)
			  FROM scans WHERE owner_id = $1`

	var stats model.ScanStats
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&stats.Total, &stats.Genuine, &stats.Counterfeit, &stats.AverageConfidence,
	)
	if err != nil {
		return model.ScanStats{}, fmt.Errorf("failed to get scan stats: %w", err)
	}

	return stats, nil
}

func scanRow(row pgx.Row) (model.Scan, error) {
	var (
		scan     model.Scan
		verdict  string
		features []byte
	)
	err := row.Scan(
		&scan.ID, &scan.OwnerID, &scan.ImageKey, &verdict, &scan.Confidence,
		&scan.Denomination, &features, &scan.CreatedAt,
	)
	if err != nil {
		return model.Scan{}, err
	}

	scan.Verdict = model.Verdict(verdict)
	if err := json.Unmarshal(features, &scan.Features); err != nil {
		return model.Scan{}, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	scan.Features = nonNilFeatures(scan.Features)

	return scan, nil
}

func nonNilFeatures(features []model.Feature) []model.Feature {
	if features == nil {
		return []model.Feature{}
	}
	return features
}
