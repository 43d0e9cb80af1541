package reservation

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labreserve/lab-reservation-backend/internal/interval"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "reservation not found")
	ErrResourceNotFound = apperror.New(http.StatusNotFound, "resource not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrPersistence      = apperror.New(http.StatusServiceUnavailable, "storage unavailable")

	// Policy violations are caller mistakes and carry a machine-readable reason.
	ErrInvalidInterval     = apperror.WithReason(http.StatusUnprocessableEntity, "end time must be after start time", "invalid_interval")
	ErrInThePast           = apperror.WithReason(http.StatusUnprocessableEntity, "cannot reserve a time in the past", "in_the_past")
	ErrTooFarInAdvance     = apperror.WithReason(http.StatusUnprocessableEntity, "reservation is beyond the booking horizon", "too_far_in_advance")
	ErrOutOfOperatingHours = apperror.WithReason(http.StatusUnprocessableEntity, "interval is outside the resource's operating hours", "out_of_operating_hours")
	ErrBlackout            = apperror.WithReason(http.StatusUnprocessableEntity, "interval touches a blackout date", "blackout")
	ErrCancelNotice        = apperror.WithReason(http.StatusUnprocessableEntity, "cancellation notice period not met", "cancel_notice")
)

// ConflictError reports that the requested slot is already held.
// It carries the winning reservation so callers can present alternatives.
type ConflictError struct {
	ConflictingID string
	Interval      interval.Interval
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("time slot conflicts with reservation %s [%s, %s)",
		e.ConflictingID, e.Interval.Start.Format(time.RFC3339), e.Interval.End.Format(time.RFC3339))
}

// InvalidTransitionError reports a lifecycle move the state machine forbids.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition %s -> %s", e.From, e.To)
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusExpired   Status = "expired"
)

// IsActive reports whether the status counts toward the no-overlap invariant.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusExpired
}

// Reservation is an exclusive, time-boxed hold on a single resource.
// Once terminal it is immutable and retained for audit.
type Reservation struct {
	ID              string
	ResourceID      string
	ResourceName    string
	RequesterID     string
	Interval        interval.Interval
	Purpose         string
	Status          Status
	CreatedAt       time.Time
	StatusChangedAt time.Time
}

type Filter struct {
	RequesterID string
	ResourceID  string
	Status      string
	From        *time.Time // reservations ending after this time
	To          *time.Time // reservations starting before this time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
