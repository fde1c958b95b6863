package dispatch

import (
	"sort"
	"time"

	"tourdispatch/internal/model"
)

// Score term weights.
const (
	scorePrimaryBonus      = 100
	scoreProximityBase     = 50
	scoreSnugCapacityBonus = 30
	scoreCapacityPenalty   = -100
	scoreWorkloadPenalty   = -15
	scoreLanguageBonus     = 20
	snugCapacitySlack      = 2
)

type scoredCandidate struct {
	schedule *guideSchedule
	score    model.ScoreBreakdown
}

// filterCandidates narrows all guides to those who can take the run: the run
// must fit inside one availability window, no prior commitment may conflict,
// and the guide must be free of any assignment made earlier in this pass that
// runs past the departure.
func filterCandidates(schedules []*guideSchedule, run model.TourRun) []*guideSchedule {
	start, end := run.StartsAt, run.EndsAt()
	out := []*guideSchedule{}
	for _, gs := range schedules {
		if !windowCovers(gs.guide.Availability, start, end) {
			continue
		}
		if hasConflict(gs.guide.Schedule, run.ID, start, end) {
			continue
		}
		if !gs.availableAt.IsZero() && start.Before(gs.availableAt) {
			continue
		}
		out = append(out, gs)
	}
	return out
}

// windowCovers reports whether [start, end] fits entirely within one window.
func windowCovers(windows []model.AvailabilityWindow, start, end time.Time) bool {
	for _, w := range windows {
		if !start.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}

// hasConflict applies interval-overlap semantics (startA < endB && endA >
// startB) against the guide's existing schedule. Two entries for the same
// tour run may coexist (several guides on one shared run) unless the
// existing entry is exclusive.
func hasConflict(entries []model.ScheduleEntry, runID string, start, end time.Time) bool {
	for _, e := range entries {
		if !start.Before(e.End) || !end.After(e.Start) {
			continue
		}
		if e.TourRunID != "" && e.TourRunID == runID && !e.Exclusive {
			continue
		}
		return true
	}
	return false
}

// runPickupZone is the zone scoring measures proximity against: the run's
// primary/meeting zone when set, otherwise the most common booking pickup
// zone (first encountered wins a tie).
func runPickupZone(run model.TourRun) string {
	if run.PrimaryZone != "" {
		return run.PrimaryZone
	}
	counts := map[string]int{}
	best := ""
	for _, b := range run.Bookings {
		if b.PickupZone == "" {
			continue
		}
		counts[b.PickupZone]++
		// strict > keeps the first-encountered zone on ties
		if counts[b.PickupZone] > counts[best] {
			best = b.PickupZone
		}
	}
	return best
}

// scoreCandidate computes the multi-factor fitness of one guide for one run,
// with every term reported separately for operator transparency.
func scoreCandidate(gs *guideSchedule, run model.TourRun, targetZone string, m *TravelMatrix) model.ScoreBreakdown {
	var b model.ScoreBreakdown
	if gs.guide.IsPrimaryFor(run.TourID) {
		b.PrimaryGuide = scorePrimaryBonus
	}
	drive := m.Get(gs.guide.BaseZone, targetZone, DefaultTravelMinutes)
	if p := scoreProximityBase - drive; p > 0 {
		b.ZoneProximity = p
	}
	if run.GuestsPerGuide > 0 {
		diff := gs.guide.VehicleCapacity - run.GuestsPerGuide
		switch {
		case diff < 0:
			b.CapacityFit = scoreCapacityPenalty
		case diff <= snugCapacitySlack:
			b.CapacityFit = scoreSnugCapacityBonus
		}
	}
	b.WorkloadBalance = scoreWorkloadPenalty * len(gs.assignments)
	if run.PreferredLanguage != "" && gs.guide.SpeaksLanguage(run.PreferredLanguage) {
		b.LanguageMatch = scoreLanguageBonus
	}
	b.Total = b.PrimaryGuide + b.ZoneProximity + b.CapacityFit + b.WorkloadBalance + b.LanguageMatch
	return b
}

// rankCandidates scores and orders candidates by total descending. The sort
// is stable: ties keep guide input order, which is load-bearing for
// reproducible output.
func rankCandidates(candidates []*guideSchedule, run model.TourRun, targetZone string, m *TravelMatrix) []scoredCandidate {
	out := make([]scoredCandidate, len(candidates))
	for i, gs := range candidates {
		out[i] = scoredCandidate{schedule: gs, score: scoreCandidate(gs, run, targetZone, m)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].score.Total > out[j].score.Total
	})
	return out
}
