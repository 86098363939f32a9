// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrCampaignNotFound indicates a campaign was not found by the given identifier.
	ErrCampaignNotFound = errors.New("campaign not found")

	// ErrSegmentNotFound indicates a segment was not found by the given identifier.
	ErrSegmentNotFound = errors.New("segment not found")
)

// CampaignError wraps campaign-related errors with additional context.
type CampaignError struct {
	Op         string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	CampaignID string
	Err        error
}

func (e *CampaignError) Error() string {
	return fmt.Sprintf("%s operation failed for campaign %s: %v", e.Op, e.CampaignID, e.Err)
}

func (e *CampaignError) Unwrap() error {
	return e.Err
}

// NewCampaignError creates a new campaign error with context.
func NewCampaignError(op, campaignID string, err error) *CampaignError {
	return &CampaignError{Op: op, CampaignID: campaignID, Err: err}
}

// SegmentError wraps segment-related errors with additional context.
type SegmentError struct {
	Op        string
	SegmentID string
	Err       error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("%s operation failed for segment %s: %v", e.Op, e.SegmentID, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// NewSegmentError creates a new segment error with context.
func NewSegmentError(op, segmentID string, err error) *SegmentError {
	return &SegmentError{Op: op, SegmentID: segmentID, Err: err}
}

// IsCampaignNotFound checks if an error indicates a campaign was not found.
func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

// IsSegmentNotFound checks if an error indicates a segment was not found.
func IsSegmentNotFound(err error) bool {
	return errors.Is(err, ErrSegmentNotFound)
}
