// Package services implements campaign management and the campaign lifecycle
// on top of persistence, the cache and the remote workflow engine.
package services

import (
	"errors"
	"fmt"

	"github.com/dukex/campaigner/pkg/models"
	"github.com/dukex/campaigner/pkg/n8n"
)

// Validation and precondition errors (400 Bad Request).
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidStatus     = errors.New("invalid campaign status")
	ErrInvalidDateRange  = errors.New("end date must be after start date")
	ErrCampaignLocked    = errors.New("campaign cannot be modified in its current status")
	ErrCampaignRunning   = errors.New("cannot delete a running campaign")
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrFlowDataRequired  = errors.New("campaign has no flow data, design a flow first")
	ErrNotDeployed       = errors.New("campaign flow is not deployed, deploy the flow first")
	ErrFlowInvalid       = errors.New("invalid flow")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ErrForbidden is returned when a user addresses a record owned by someone else (403).
var ErrForbidden = errors.New("you do not have access to this resource")

// InvalidTransitionError names the rejected status change.
type InvalidTransitionError struct {
	From models.CampaignStatus
	To   models.CampaignStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// RemoteError wraps a failure of the remote workflow engine during a deploy
// or a trigger.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func newRemoteError(op string, err error) *RemoteError {
	return &RemoteError{Op: op, Err: err}
}

// IsValidationError reports whether err should be answered with HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrCampaignLocked) ||
		errors.Is(err, ErrCampaignRunning) ||
		errors.Is(err, ErrEmptyUserID) ||
		errors.Is(err, ErrFlowDataRequired) ||
		errors.Is(err, ErrNotDeployed) ||
		errors.Is(err, ErrFlowInvalid) ||
		errors.Is(err, models.ErrInvalidFlowDocument) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsForbidden reports whether err is an ownership violation.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsRemoteError reports whether err came from the remote workflow engine.
func IsRemoteError(err error) bool {
	var remoteErr *RemoteError

	return errors.As(err, &remoteErr)
}

// IsRemoteAuthError reports whether the remote engine rejected our credentials.
func IsRemoteAuthError(err error) bool {
	return IsRemoteError(err) && n8n.IsAuthError(err)
}
