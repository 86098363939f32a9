package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
)

const segmentColumns = `
			id
		  , user_id
		  , name
		  , s3_url
		  , s3_key
		  , file_name
		  , file_size
		  , total_records
		  , status
		  , created_at
		  , updated_at`

// SegmentRepository handles segment-related database operations.
type SegmentRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSegmentRepository creates a new segment repository.
func NewSegmentRepository(db *sql.DB, logger *slog.Logger) *SegmentRepository {
	return &SegmentRepository{db: db, logger: logger}
}

// GetByID returns a segment by its ID.
func (r *SegmentRepository) GetByID(ctx context.Context, id string) (*models.Segment, error) {
	query := `SELECT ` + segmentColumns + `
		FROM segments
		WHERE id = $1`

	segment, err := scanSegment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewSegmentError("GetByID", id, persistence.ErrSegmentNotFound)
	}

	if err != nil {
		return nil, persistence.NewSegmentError("GetByID", id, err)
	}

	return segment, nil
}

// ListByUser returns the user's segments, newest first.
func (r *SegmentRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Segment, error) {
	query := `SELECT ` + segmentColumns + `
		FROM segments
		WHERE user_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer closeRows(ctx, r.logger, rows)

	segments := make([]*models.Segment, 0)

	for rows.Next() {
		segment, err := scanSegment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}

		segments = append(segments, segment)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating segments: %w", err)
	}

	return segments, nil
}

// Save inserts the segment or replaces the stored row with the same id.
func (r *SegmentRepository) Save(ctx context.Context, segment *models.Segment) error {
	now := time.Now().UTC()
	if segment.CreatedAt.IsZero() {
		segment.CreatedAt = now
	}

	segment.UpdatedAt = now

	query := `
		INSERT INTO segments (` + segmentColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
		  , s3_url = EXCLUDED.s3_url
		  , s3_key = EXCLUDED.s3_key
		  , file_name = EXCLUDED.file_name
		  , file_size = EXCLUDED.file_size
		  , total_records = EXCLUDED.total_records
		  , status = EXCLUDED.status
		  , updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		segment.ID,
		segment.UserID,
		segment.Name,
		segment.S3URL,
		segment.S3Key,
		segment.FileName,
		segment.FileSize,
		segment.TotalRecords,
		segment.Status,
		segment.CreatedAt,
		segment.UpdatedAt,
	)
	if err != nil {
		return persistence.NewSegmentError("Save", segment.ID, err)
	}

	return nil
}

func scanSegment(row scanner) (*models.Segment, error) {
	var segment models.Segment

	err := row.Scan(
		&segment.ID,
		&segment.UserID,
		&segment.Name,
		&segment.S3URL,
		&segment.S3Key,
		&segment.FileName,
		&segment.FileSize,
		&segment.TotalRecords,
		&segment.Status,
		&segment.CreatedAt,
		&segment.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &segment, nil
}
