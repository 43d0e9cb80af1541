package reservation

import (
	"sort"
	"sync"

	"github.com/labreserve/lab-reservation-backend/internal/interval"
)

// Hold is the slice of a reservation the availability index tracks: enough
// to answer conflict queries and to report the winner to a losing caller.
type Hold struct {
	ReservationID string
	ResourceID    string
	Interval      interval.Interval
}

// Index is the in-memory availability index: per resource, the active
// (pending/confirmed) holds ordered by start time. It answers overlap
// queries in time proportional to the overlapping candidates, and knows the
// lab/equipment topology so lab-level and equipment-level holds can be
// cross-checked against each other.
//
// The index itself is safe for concurrent reads and writes, but
// check-then-insert atomicity is the coordinator's job (per-resource locks).
type Index struct {
	mu         sync.RWMutex
	byResource map[string][]Hold   // sorted by Interval.Start
	parentOf   map[string]string   // equipment id -> lab id
	equipment  map[string][]string // lab id -> equipment ids
}

func NewIndex() *Index {
	return &Index{
		byResource: make(map[string][]Hold),
		parentOf:   make(map[string]string),
		equipment:  make(map[string][]string),
	}
}

// RegisterEquipment records that equipmentID lives inside labID so that
// FindCrossResourceConflicts can walk the lab's subtree.
func (x *Index) RegisterEquipment(equipmentID, labID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if prev, ok := x.parentOf[equipmentID]; ok && prev == labID {
		return
	}
	x.parentOf[equipmentID] = labID
	x.equipment[labID] = append(x.equipment[labID], equipmentID)
}

// EquipmentUnder returns the equipment ids registered under a lab.
func (x *Index) EquipmentUnder(labID string) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()

	out := make([]string, len(x.equipment[labID]))
	copy(out, x.equipment[labID])
	return out
}

// Insert adds an active hold to its resource's ordered slice.
func (x *Index) Insert(h Hold) {
	x.mu.Lock()
	defer x.mu.Unlock()

	holds := x.byResource[h.ResourceID]
	i := sort.Search(len(holds), func(i int) bool {
		return holds[i].Interval.Start.After(h.Interval.Start)
	})
	holds = append(holds, Hold{})
	copy(holds[i+1:], holds[i:])
	holds[i] = h
	x.byResource[h.ResourceID] = holds
}

// Remove drops a hold when its reservation leaves the active set.
// Removing an unknown id is a no-op so the sweep stays idempotent.
func (x *Index) Remove(resourceID, reservationID string) {
	x.mu.Lock()
	defer x.mu.Unlock()

	holds := x.byResource[resourceID]
	for i, h := range holds {
		if h.ReservationID == reservationID {
			x.byResource[resourceID] = append(holds[:i:i], holds[i+1:]...)
			return
		}
	}
}

// FindConflicts returns all active holds on the resource overlapping ivl.
func (x *Index) FindConflicts(resourceID string, ivl interval.Interval) []Hold {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.overlapping(resourceID, ivl)
}

// FindCrossResourceConflicts returns active holds overlapping ivl on the lab
// itself and on every equipment item registered under it. Booking a whole
// lab excludes concurrent equipment-only holds inside it, and vice versa.
func (x *Index) FindCrossResourceConflicts(labID string, ivl interval.Interval) []Hold {
	x.mu.RLock()
	defer x.mu.RUnlock()

	conflicts := x.overlapping(labID, ivl)
	for _, eq := range x.equipment[labID] {
		conflicts = append(conflicts, x.overlapping(eq, ivl)...)
	}
	return conflicts
}

// overlapping assumes x.mu is held. Holds within a resource are pairwise
// non-overlapping and sorted by start, so ends are sorted too: scan left
// from the first hold starting at or after ivl.End until overlap stops.
func (x *Index) overlapping(resourceID string, ivl interval.Interval) []Hold {
	holds := x.byResource[resourceID]
	hi := sort.Search(len(holds), func(i int) bool {
		return !holds[i].Interval.Start.Before(ivl.End)
	})

	var out []Hold
	for i := hi - 1; i >= 0; i-- {
		if !holds[i].Interval.End.After(ivl.Start) {
			break
		}
		out = append(out, holds[i])
	}
	// restore ascending start order
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
