package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusCancelled},
		{StatusPending, StatusExpired},
		{StatusConfirmed, StatusCancelled},
		{StatusConfirmed, StatusCompleted},
	}
	for _, tr := range allowed {
		assert.True(t, CanTransition(tr.from, tr.to), "%s -> %s should be legal", tr.from, tr.to)
	}

	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusExpired}

	// terminal states never re-open
	for _, from := range []Status{StatusCancelled, StatusCompleted, StatusExpired} {
		for _, to := range all {
			assert.False(t, CanTransition(from, to), "%s -> %s must be illegal", from, to)
		}
	}

	// selected forward moves that are still illegal
	assert.False(t, CanTransition(StatusPending, StatusCompleted))
	assert.False(t, CanTransition(StatusConfirmed, StatusExpired))
	assert.False(t, CanTransition(StatusConfirmed, StatusPending))
}

func TestTransition(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	r := &Reservation{Status: StatusPending}
	require.NoError(t, Transition(r, StatusConfirmed, at))
	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, at, r.StatusChangedAt)

	err := Transition(r, StatusExpired, at.Add(time.Minute))
	var badMove *InvalidTransitionError
	require.ErrorAs(t, err, &badMove)
	assert.Equal(t, StatusConfirmed, badMove.From)
	assert.Equal(t, StatusExpired, badMove.To)

	// failed transition leaves the reservation untouched
	assert.Equal(t, StatusConfirmed, r.Status)
	assert.Equal(t, at, r.StatusChangedAt)
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusExpired.IsActive())

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}
