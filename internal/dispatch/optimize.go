// Package dispatch implements the tour dispatch optimization engine: a
// single-threaded, purely computational pass that proposes which guide picks
// up which booking, in what order, at what time. Unsatisfiable constraints
// come back as warnings, never as errors.
package dispatch

import (
	"time"

	"tourdispatch/internal/model"
)

// AlgorithmVersion tags every output so stored proposals can be traced to
// the heuristic that produced them.
const AlgorithmVersion = "greedy-1.0"

// Input carries everything one optimization pass consumes. The pass owns no
// shared state: concurrent passes over different inputs are independent.
type Input struct {
	OrganizationID string
	Date           string
	TourRuns       []model.TourRun
	Guides         []model.Guide
	Matrix         *TravelMatrix

	// WarningID overrides the default sequential warning id scheme.
	// The service layer injects a token-suffixed generator so concurrent
	// passes never collide; tests leave it nil for determinism.
	WarningID func(seq int) string

	// Now overrides the clock used for Metadata.OptimizedAt in tests.
	Now func() time.Time
}

// Optimize runs the full pipeline: sort tour runs, then for each run filter,
// score and select guides, pack bookings, sequence pickups, and accumulate
// per-guide schedule state so later runs see the load left by earlier ones.
// Runs must be processed sequentially for exactly that reason.
func Optimize(in Input) model.OptimizationOutput {
	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	matrix := in.Matrix
	if matrix == nil {
		matrix = NewTravelMatrix()
	}
	wb := newWarningBuilder(in.WarningID)
	schedules := newSchedules(in.Guides)

	assignments := []model.ProposedAssignment{}
	warnings := []model.OptimizationWarning{}
	bookingsProcessed := 0

	for _, run := range sortRuns(in.TourRuns) {
		bookingsProcessed += len(run.Bookings)

		needed := run.GuidesNeeded()
		if needed == 0 {
			if len(run.Bookings) == 0 {
				continue
			}
			// zero-guest bookings still need a pickup slot
			needed = 1
		}
		targetZone := runPickupZone(run)
		ranked := rankCandidates(filterCandidates(schedules, run), run, targetZone, matrix)

		selectCount := needed
		if selectCount > len(ranked) {
			selectCount = len(ranked)
		}
		selected := ranked[:selectCount]

		if selectCount < needed {
			alternates := rankCandidates(unselected(schedules, selected), run, targetZone, matrix)
			warnings = append(warnings, wb.insufficientGuides(run, needed, selectCount, alternates, targetZone, matrix))
		}

		dist := distributeBookings(run, selected)
		warnings = append(warnings, dist.warnings(run, wb)...)

		for i, load := range dist.loads {
			stops := sequencePickups(load.schedule.startZone(), load.bookings, run, matrix)
			added := make([]model.ProposedAssignment, 0, len(stops))
			legMinutes := 0
			guests := 0
			for j, stop := range stops {
				a := model.ProposedAssignment{
					BookingID:        stop.booking.ID,
					GuideID:          load.schedule.guide.ID,
					TourRunID:        run.ID,
					PickupOrder:      j + 1,
					PickupTime:       stop.pickupAt,
					DriveTimeMinutes: stop.driveMinutes,
					Confidence:       classifyConfidence(selected[i].score.Total, stop.driveMinutes),
					Score:            selected[i].score,
					IsLeadGuide:      i == 0,
				}
				if a.DriveTimeMinutes > LongDriveMinutes {
					warnings = append(warnings, wb.longDrive(run, a))
				}
				added = append(added, a)
				legMinutes += stop.driveMinutes
				guests += stop.booking.Participants
			}
			legMinutes += approachMinutes(stops, run, matrix)
			load.schedule.commit(run, added, legMinutes, guests)
			assignments = append(assignments, added...)
		}
	}

	totalDrive := 0
	used := 0
	for _, gs := range schedules {
		totalDrive += gs.driveMinutes
		if len(gs.assignments) > 0 || gs.driveMinutes > 0 {
			used++
		}
	}

	return model.OptimizationOutput{
		Assignments:       assignments,
		Warnings:          warnings,
		Efficiency:        efficiency(totalDrive, used, warnings),
		TotalDriveMinutes: totalDrive,
		GuidesUsed:        used,
		Metadata: model.OptimizationMetadata{
			OptimizedAt:       now().UTC(),
			AlgorithmVersion:  AlgorithmVersion,
			TourRunsProcessed: len(in.TourRuns),
			BookingsProcessed: bookingsProcessed,
		},
	}
}

// unselected returns the schedules not among the selected candidates, in
// guide input order.
func unselected(schedules []*guideSchedule, selected []scoredCandidate) []*guideSchedule {
	taken := map[string]bool{}
	for _, c := range selected {
		taken[c.schedule.guide.ID] = true
	}
	out := []*guideSchedule{}
	for _, gs := range schedules {
		if !taken[gs.guide.ID] {
			out = append(out, gs)
		}
	}
	return out
}

// efficiency scores a pass 0..100: perfect at zero average drive, minus half
// a point per average drive minute over the used guides (scaled to an hour),
// minus 10 per critical and 5 per warning-severity warning.
func efficiency(totalDrive, guidesUsed int, warnings []model.OptimizationWarning) float64 {
	if guidesUsed == 0 {
		return 0
	}
	avg := float64(totalDrive) / float64(guidesUsed)
	e := 100 - (avg/60)*50
	for _, w := range warnings {
		switch w.Severity {
		case model.SeverityCritical:
			e -= 10
		case model.SeverityWarning:
			e -= 5
		}
	}
	if e < 0 {
		return 0
	}
	if e > 100 {
		return 100
	}
	return e
}

// classifyConfidence derives the operator-facing trust class from the
// candidate score and the drive into the pickup.
func classifyConfidence(score, driveMinutes int) string {
	switch {
	case score >= 100 && driveMinutes <= 20:
		return model.ConfidenceOptimal
	case score >= 100:
		return model.ConfidenceGood
	case score >= 50 && driveMinutes <= 30:
		return model.ConfidenceGood
	case score >= 50:
		return model.ConfidenceReview
	case score >= 0:
		return model.ConfidenceReview
	default:
		return model.ConfidenceProblem
	}
}
