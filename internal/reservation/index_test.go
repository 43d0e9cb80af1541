package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labreserve/lab-reservation-backend/internal/interval"
)

func ivlAt(hour, min, durMin int) interval.Interval {
	start := time.Date(2025, 3, 10, hour, min, 0, 0, time.UTC)
	return interval.Interval{Start: start, End: start.Add(time.Duration(durMin) * time.Minute)}
}

func TestIndexFindConflicts(t *testing.T) {
	idx := NewIndex()

	// inserted out of order on purpose
	idx.Insert(Hold{ReservationID: "r3", ResourceID: "lab-1", Interval: ivlAt(14, 0, 60)})
	idx.Insert(Hold{ReservationID: "r1", ResourceID: "lab-1", Interval: ivlAt(9, 0, 60)})
	idx.Insert(Hold{ReservationID: "r2", ResourceID: "lab-1", Interval: ivlAt(11, 0, 60)})

	// overlapping query hits only the middle hold
	got := idx.FindConflicts("lab-1", ivlAt(11, 30, 15))
	require.Len(t, got, 1)
	assert.Equal(t, "r2", got[0].ReservationID)

	// touching boundaries conflict with nothing
	assert.Empty(t, idx.FindConflicts("lab-1", ivlAt(10, 0, 60)))

	// wide query returns all three in start order
	got = idx.FindConflicts("lab-1", ivlAt(8, 0, 600))
	require.Len(t, got, 3)
	assert.Equal(t, "r1", got[0].ReservationID)
	assert.Equal(t, "r2", got[1].ReservationID)
	assert.Equal(t, "r3", got[2].ReservationID)

	// other resources are unaffected
	assert.Empty(t, idx.FindConflicts("lab-2", ivlAt(9, 0, 60)))
}

func TestIndexRemove(t *testing.T) {
	idx := NewIndex()
	idx.Insert(Hold{ReservationID: "r1", ResourceID: "lab-1", Interval: ivlAt(9, 0, 60)})

	idx.Remove("lab-1", "r1")
	assert.Empty(t, idx.FindConflicts("lab-1", ivlAt(9, 0, 60)))

	// removing twice is a no-op
	idx.Remove("lab-1", "r1")
	idx.Remove("lab-1", "unknown")
}

func TestIndexCrossResourceConflicts(t *testing.T) {
	idx := NewIndex()
	idx.RegisterEquipment("scope-1", "lab-1")
	idx.RegisterEquipment("scope-2", "lab-1")

	idx.Insert(Hold{ReservationID: "eq", ResourceID: "scope-1", Interval: ivlAt(9, 0, 60)})

	// a lab-wide query sees the equipment hold
	got := idx.FindCrossResourceConflicts("lab-1", ivlAt(9, 30, 60))
	require.Len(t, got, 1)
	assert.Equal(t, "eq", got[0].ReservationID)

	// lab-level hold is seen too
	idx.Insert(Hold{ReservationID: "lab", ResourceID: "lab-1", Interval: ivlAt(13, 0, 60)})
	got = idx.FindCrossResourceConflicts("lab-1", ivlAt(8, 0, 600))
	assert.Len(t, got, 2)

	// equipment under a different lab does not leak in
	idx.RegisterEquipment("scope-9", "lab-2")
	idx.Insert(Hold{ReservationID: "other", ResourceID: "scope-9", Interval: ivlAt(9, 0, 60)})
	got = idx.FindCrossResourceConflicts("lab-1", ivlAt(9, 0, 60))
	require.Len(t, got, 1)
	assert.Equal(t, "eq", got[0].ReservationID)
}

func TestRegisterEquipmentIdempotent(t *testing.T) {
	idx := NewIndex()
	idx.RegisterEquipment("scope-1", "lab-1")
	idx.RegisterEquipment("scope-1", "lab-1")

	assert.Equal(t, []string{"scope-1"}, idx.EquipmentUnder("lab-1"))
}
