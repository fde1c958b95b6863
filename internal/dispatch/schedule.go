package dispatch

import (
	"sort"
	"time"

	"tourdispatch/internal/model"
)

// guideSchedule is the per-guide state accumulated across one optimization
// pass: assignments so far, drive minutes, current zone, and the instant the
// guide is next free. Built fresh at pass start, discarded after.
type guideSchedule struct {
	guide        model.Guide
	inputOrder   int
	assignments  []model.ProposedAssignment
	driveMinutes int
	currentZone  string
	availableAt  time.Time
	guests       int
}

func newSchedules(guides []model.Guide) []*guideSchedule {
	out := make([]*guideSchedule, len(guides))
	for i, g := range guides {
		out[i] = &guideSchedule{guide: g, inputOrder: i, currentZone: g.BaseZone}
	}
	return out
}

// startZone is where the guide departs from for their next run: the base
// zone until the pass has moved them somewhere else.
func (gs *guideSchedule) startZone() string {
	if gs.currentZone != "" {
		return gs.currentZone
	}
	return gs.guide.BaseZone
}

// commit records a finished run: the guide is busy until the run ends and is
// positioned at endZone afterwards (if known).
func (gs *guideSchedule) commit(run model.TourRun, added []model.ProposedAssignment, legMinutes int, guests int) {
	gs.assignments = append(gs.assignments, added...)
	gs.driveMinutes += legMinutes
	gs.guests += guests
	if end := run.EndsAt(); end.After(gs.availableAt) {
		gs.availableAt = end
	}
	if run.PrimaryZone != "" {
		gs.currentZone = run.PrimaryZone
	} else if n := len(added); n > 0 {
		// best effort: the guide ends up near the last pickup area
		for i := n - 1; i >= 0; i-- {
			if z := pickupZoneOf(run, added[i].BookingID); z != "" {
				gs.currentZone = z
				break
			}
		}
	}
}

func pickupZoneOf(run model.TourRun, bookingID string) string {
	for _, b := range run.Bookings {
		if b.ID == bookingID {
			return b.PickupZone
		}
	}
	return ""
}

// sortRuns orders a day's tour runs for sequential processing: earlier
// departures first, larger parties first. The sort is stable so equal runs
// keep their input order, which keeps the whole pass deterministic.
func sortRuns(runs []model.TourRun) []model.TourRun {
	out := append([]model.TourRun(nil), runs...)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].Guests() > out[j].Guests()
	})
	return out
}
