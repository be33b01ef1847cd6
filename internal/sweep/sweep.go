// Package sweep tracks the district the user is currently walking ward by
// ward, deduplicating ward snapshots and collecting the open plots so a
// whole-district summary can be printed once every ward has been seen.
package sweep

import (
	"time"

	"paissa.dev/internal/wire"
)

// DefaultWardsPerDistrict is the current ward count for every district.
// It was 24 before the ward expansion; callers should derive the real count
// from the game catalog when they can.
const DefaultWardsPerDistrict = 30

// staleAfter is how long a sweep may idle before the next ward snapshot
// starts a fresh one.
const staleAfter = 10 * time.Minute

// OpenPlot is one unowned plot found during the sweep.
type OpenPlot struct {
	WardNumber int16
	PlotNumber int16
	Entry      wire.HouseInfoEntry
}

// State is the per-user sweep state machine. It is owned by a single
// goroutine and performs no locking.
type State struct {
	worldID    int16
	districtID int16
	startTime  time.Time
	seenWards  map[int16]struct{}
	openPlots  []OpenPlot

	wardsPerDistrict int
	now              func() time.Time
}

// New returns an empty sweep state expecting wardsPerDistrict wards per
// district (DefaultWardsPerDistrict if zero or negative).
func New(wardsPerDistrict int) *State {
	if wardsPerDistrict <= 0 {
		wardsPerDistrict = DefaultWardsPerDistrict
	}
	s := &State{
		wardsPerDistrict: wardsPerDistrict,
		seenWards:        make(map[int16]struct{}),
		now:              time.Now,
	}
	s.Reset()
	return s
}

// SetClock overrides the time source. Test hook.
func (s *State) SetClock(now func() time.Time) { s.now = now }

// Reset clears all identifiers and collections, as if no ward had ever been
// seen.
func (s *State) Reset() {
	s.worldID = -1
	s.districtID = -1
	s.startTime = time.Time{}
	clear(s.seenWards)
	s.openPlots = s.openPlots[:0]
}

// ShouldStartNewSweep reports whether the given ward snapshot belongs to a
// different sweep than the current one: another world or district, or a
// current sweep older than ten minutes. Always true after Reset.
func (s *State) ShouldStartNewSweep(w wire.WardInfo) bool {
	return w.LandIdent.WorldID != s.worldID ||
		w.LandIdent.TerritoryTypeID != s.districtID ||
		s.startTime.Before(s.now().Add(-staleAfter))
}

// Start makes the ward's district the current sweep, discarding any
// progress from the previous one.
func (s *State) Start(w wire.WardInfo) {
	s.worldID = w.LandIdent.WorldID
	s.districtID = w.LandIdent.TerritoryTypeID
	s.startTime = s.now()
	clear(s.seenWards)
	s.openPlots = s.openPlots[:0]
}

// Contains reports whether this ward was already recorded in the current
// sweep.
func (s *State) Contains(w wire.WardInfo) bool {
	_, ok := s.seenWards[w.LandIdent.WardNumber]
	return ok
}

// Add records the ward and collects its unowned plots. Re-adding a seen
// ward is a no-op, so open plots are never duplicated.
func (s *State) Add(w wire.WardInfo) {
	if s.Contains(w) {
		return
	}
	s.seenWards[w.LandIdent.WardNumber] = struct{}{}
	for i, e := range w.Entries {
		if e.Owned() {
			continue
		}
		s.openPlots = append(s.openPlots, OpenPlot{
			WardNumber: w.LandIdent.WardNumber,
			PlotNumber: int16(i),
			Entry:      e,
		})
	}
}

// IsComplete reports whether every ward of the district has been seen.
func (s *State) IsComplete() bool { return len(s.seenWards) == s.wardsPerDistrict }

// WorldID returns the current sweep's world, -1 when no sweep is active.
func (s *State) WorldID() int16 { return s.worldID }

// DistrictID returns the current sweep's district, -1 when no sweep is
// active.
func (s *State) DistrictID() int16 { return s.districtID }

// StartTime returns when the current sweep began.
func (s *State) StartTime() time.Time { return s.startTime }

// WardsPerDistrict returns the ward count this sweep completes at.
func (s *State) WardsPerDistrict() int { return s.wardsPerDistrict }

// SeenWardCount returns how many distinct wards have been recorded.
func (s *State) SeenWardCount() int { return len(s.seenWards) }

// OpenPlots returns the open plots found so far, in discovery order. The
// returned slice is owned by the state; callers must not mutate it.
func (s *State) OpenPlots() []OpenPlot { return s.openPlots }
