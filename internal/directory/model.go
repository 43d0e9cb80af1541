package directory

import (
	"net/http"
	"time"

	"github.com/labreserve/lab-reservation-backend/internal/interval"
	"github.com/labreserve/lab-reservation-backend/internal/pkg/apperror"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "resource not found")
	ErrEmptyName             = apperror.New(http.StatusBadRequest, "name cannot be empty")
	ErrInvalidKind           = apperror.New(http.StatusBadRequest, "kind must be lab or equipment")
	ErrParentMissing         = apperror.New(http.StatusBadRequest, "equipment requires an existing parent lab")
	ErrParentNotLab          = apperror.New(http.StatusBadRequest, "parent resource is not a lab")
	ErrHasEquipment          = apperror.New(http.StatusConflict, "lab still has equipment attached")
	ErrHasActiveReservations = apperror.New(http.StatusConflict, "resource still has active reservations")
)

// Kind distinguishes whole labs from discrete equipment items inside them.
type Kind string

const (
	KindLab       Kind = "lab"
	KindEquipment Kind = "equipment"
)

// Resource is a bookable unit (a lab, or an equipment item inside one).
// The reservation engine reads it for existence, topology and policy.
type Resource struct {
	ID              string
	Name            string
	Kind            Kind
	ParentLabID     string // equipment only, empty for labs
	AutoApprove     bool
	MinCancelNotice time.Duration
	OperatingHours  interval.WeekSchedule
	BlackoutDates   []time.Time // midnight-truncated dates, fully unavailable
	CreatedAt       time.Time
}

// IsBlackedOut reports whether the interval touches any blackout date.
func (r *Resource) IsBlackedOut(ivl interval.Interval) bool {
	for _, day := range ivl.Dates() {
		for _, b := range r.BlackoutDates {
			if sameDate(day, b) {
				return true
			}
		}
	}
	return false
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Filter defines parameters for listing resources.
type Filter struct {
	Kind        string
	ParentLabID string
	Page        int
	PageSize    int
}
