package file

import (
	"context"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/persistence"
)

// SegmentRepository handles segment-related file operations.
type SegmentRepository struct {
	dir string
	mu  sync.RWMutex
}

// NewSegmentRepository creates a new segment repository.
func NewSegmentRepository(root string) *SegmentRepository {
	return &SegmentRepository{dir: path.Join(root, "segments")}
}

// GetByID retrieves a segment by its ID.
func (sr *SegmentRepository) GetByID(_ context.Context, id string) (*models.Segment, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	var segment models.Segment

	found, err := readRecord(sr.dir, id, &segment)
	if err != nil {
		return nil, persistence.NewSegmentError("GetByID", id, err)
	}

	if !found {
		return nil, persistence.NewSegmentError("GetByID", id, persistence.ErrSegmentNotFound)
	}

	return &segment, nil
}

// ListByUser returns the user's segments, newest first.
func (sr *SegmentRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Segment, error) {
	ids, err := recordIDs(sr.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list segment files: %w", err)
	}

	segments := make([]*models.Segment, 0, len(ids))

	for _, id := range ids {
		segment, err := sr.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if segment.UserID == userID {
			segments = append(segments, segment)
		}
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].CreatedAt.After(segments[j].CreatedAt)
	})

	return segments, nil
}

// Save writes the segment to the file system.
func (sr *SegmentRepository) Save(_ context.Context, segment *models.Segment) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	now := time.Now().UTC()
	if segment.CreatedAt.IsZero() {
		segment.CreatedAt = now
	}

	segment.UpdatedAt = now

	if err := writeRecord(sr.dir, segment.ID, segment); err != nil {
		return persistence.NewSegmentError("Save", segment.ID, err)
	}

	return nil
}
