package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
	"github.com/google/uuid"
)

// SegmentStatusActive is the status of a usable segment.
const SegmentStatusActive = "active"

// CreateSegmentInput describes a recipient list already uploaded to object storage.
type CreateSegmentInput struct {
	Name         string
	S3URL        string
	S3Key        string
	FileName     string
	FileSize     int64
	TotalRecords int
}

type Segments struct {
	segments persistence.SegmentRepository
	logger   *slog.Logger
}

func NewSegments(p persistence.Persistence, logger *slog.Logger) *Segments {
	return &Segments{
		segments: p.SegmentRepository(),
		logger:   logger.With("module", "segments"),
	}
}

func (s *Segments) Create(ctx context.Context, userID int64, input CreateSegmentInput) (*models.Segment, error) {
	if userID <= 0 {
		return nil, ErrEmptyUserID
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidRequest)
	}

	if input.TotalRecords < 0 || input.FileSize < 0 {
		return nil, fmt.Errorf("%w: sizes cannot be negative", ErrInvalidRequest)
	}

	segment := &models.Segment{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         name,
		S3URL:        input.S3URL,
		S3Key:        input.S3Key,
		FileName:     input.FileName,
		FileSize:     input.FileSize,
		TotalRecords: input.TotalRecords,
		Status:       SegmentStatusActive,
	}

	if err := s.segments.Save(ctx, segment); err != nil {
		return nil, fmt.Errorf("failed to save segment: %w", err)
	}

	s.logger.InfoContext(ctx, "segment created", "segment_id", segment.ID, "user_id", userID)

	return segment, nil
}

func (s *Segments) List(ctx context.Context, userID int64) ([]*models.Segment, error) {
	return s.segments.ListByUser(ctx, userID)
}

func (s *Segments) Get(ctx context.Context, id string, userID int64) (*models.Segment, error) {
	segment, err := s.segments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if segment.UserID != userID {
		return nil, fmt.Errorf("segment %s: %w", id, ErrForbidden)
	}

	return segment, nil
}
