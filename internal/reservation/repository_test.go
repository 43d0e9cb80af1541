package reservation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConflictCheckSQL(t *testing.T) {
	ivl := ivlAt(9, 0, 60)
	rsv := &Reservation{Interval: ivl}

	sql, args, err := conflictCheckSQL(rsv, []string{"lab-1", "scope-1"})
	require.NoError(t, err)

	// whole conflict scope, active statuses only, half-open overlap, one winner
	assert.Contains(t, sql, "resource_id IN ($1,$2)")
	assert.Contains(t, sql, "status IN ($3,$4)")
	assert.Contains(t, sql, "start_time < $5")
	assert.Contains(t, sql, "end_time > $6")
	assert.Contains(t, sql, "LIMIT 1")

	require.Len(t, args, 6)
	assert.Equal(t, "lab-1", args[0])
	assert.Equal(t, "scope-1", args[1])
	assert.ElementsMatch(t, []any{StatusPending, StatusConfirmed}, args[2:4])
	assert.Equal(t, ivl.End, args[4])
	assert.Equal(t, ivl.Start, args[5])
}
