package reservation

import "time"

// legal lifecycle moves; everything absent is forbidden.
// Terminal states (cancelled, completed, expired) have no outgoing edges.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true, // approval
		StatusCancelled: true, // cancelled before approval
		StatusExpired:   true, // start time passed without approval
	},
	StatusConfirmed: {
		StatusCancelled: true, // cancelled before start
		StatusCompleted: true, // end time passed
	},
}

// CanTransition reports whether from -> to is a legal lifecycle move.
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Transition applies a lifecycle move to the reservation, stamping
// StatusChangedAt. It fails with InvalidTransitionError on an illegal move
// and leaves the reservation untouched.
func Transition(r *Reservation, to Status, at time.Time) error {
	if !CanTransition(r.Status, to) {
		return &InvalidTransitionError{From: r.Status, To: to}
	}
	r.Status = to
	r.StatusChangedAt = at
	return nil
}
