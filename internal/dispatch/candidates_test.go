package dispatch

import (
	"testing"
	"time"

	"tourdispatch/internal/model"
)

func day(hh, mm int) time.Time {
	return time.Date(2026, 6, 12, hh, mm, 0, 0, time.UTC)
}

func availableAllDay() []model.AvailabilityWindow {
	return []model.AvailabilityWindow{{Start: day(6, 0), End: day(22, 0)}}
}

func TestWindowCovers(t *testing.T) {
	split := []model.AvailabilityWindow{
		{Start: day(8, 0), End: day(12, 0)},
		{Start: day(16, 0), End: day(20, 0)},
	}
	if !windowCovers(split, day(9, 0), day(11, 0)) {
		t.Fatalf("run inside first window should fit")
	}
	if !windowCovers(split, day(16, 0), day(20, 0)) {
		t.Fatalf("run matching second window exactly should fit")
	}
	// spans the gap between the split shifts
	if windowCovers(split, day(11, 0), day(17, 0)) {
		t.Fatalf("run across the gap must not fit")
	}
	if windowCovers(nil, day(9, 0), day(11, 0)) {
		t.Fatalf("no windows means never available")
	}
}

func TestHasConflict(t *testing.T) {
	entries := []model.ScheduleEntry{
		{TourRunID: "run-a", Start: day(9, 0), End: day(11, 0)},
	}
	if hasConflict(entries, "run-a", day(9, 0), day(11, 0)) {
		t.Fatalf("same shared run must be allowed to coexist")
	}
	if !hasConflict(entries, "run-b", day(10, 0), day(12, 0)) {
		t.Fatalf("overlapping different run must conflict")
	}
	if hasConflict(entries, "run-b", day(11, 0), day(13, 0)) {
		t.Fatalf("touching intervals do not overlap")
	}

	exclusive := []model.ScheduleEntry{
		{TourRunID: "run-a", Start: day(9, 0), End: day(11, 0), Exclusive: true},
	}
	if !hasConflict(exclusive, "run-a", day(9, 0), day(11, 0)) {
		t.Fatalf("exclusive entry conflicts even for the same run")
	}
}

func TestFilterCandidatesWatermark(t *testing.T) {
	g := model.Guide{ID: "g1", VehicleCapacity: 6, Availability: availableAllDay()}
	schedules := newSchedules([]model.Guide{g})
	run := model.TourRun{ID: "r1", StartsAt: day(10, 0), DurationMinutes: 60, GuestsPerGuide: 6,
		Bookings: []model.Booking{{ID: "b1", Participants: 2}}}

	if got := filterCandidates(schedules, run); len(got) != 1 {
		t.Fatalf("expected candidate before watermark, got %d", len(got))
	}
	// a run assigned earlier in this pass blocks departures before it ends
	schedules[0].availableAt = day(10, 30)
	if got := filterCandidates(schedules, run); len(got) != 0 {
		t.Fatalf("watermark should veto the guide")
	}
	late := run
	late.StartsAt = day(10, 30)
	if got := filterCandidates(schedules, late); len(got) != 1 {
		t.Fatalf("guide free again at the watermark instant")
	}
}

func TestScoreCandidateTerms(t *testing.T) {
	m := BuildMatrix([]model.TravelTimeEntry{{FromZone: "base", ToZone: "pickup", Minutes: 10}})
	run := model.TourRun{ID: "r1", TourID: "tour-1", GuestsPerGuide: 6, PreferredLanguage: "de",
		PrimaryZone: "pickup"}

	gs := &guideSchedule{guide: model.Guide{
		ID: "g1", VehicleCapacity: 7, BaseZone: "base",
		Languages: []string{"en", "de"}, PrimaryTourIDs: []string{"tour-1"},
	}}
	b := scoreCandidate(gs, run, runPickupZone(run), m)
	if b.PrimaryGuide != 100 {
		t.Errorf("primary = %d, want 100", b.PrimaryGuide)
	}
	if b.ZoneProximity != 40 {
		t.Errorf("proximity = %d, want 40", b.ZoneProximity)
	}
	if b.CapacityFit != 30 {
		t.Errorf("capacity fit = %d, want 30 (snug)", b.CapacityFit)
	}
	if b.LanguageMatch != 20 {
		t.Errorf("language = %d, want 20", b.LanguageMatch)
	}
	if b.Total != 190 {
		t.Errorf("total = %d, want 190", b.Total)
	}

	// undersized vehicle
	gs2 := &guideSchedule{guide: model.Guide{ID: "g2", VehicleCapacity: 4, BaseZone: "far"}}
	b2 := scoreCandidate(gs2, run, "pickup", m)
	if b2.CapacityFit != -100 {
		t.Errorf("undersized capacity fit = %d, want -100", b2.CapacityFit)
	}
	if b2.ZoneProximity != 20 {
		// unknown pair: default 30 minutes, 50-30=20
		t.Errorf("proximity via default = %d, want 20", b2.ZoneProximity)
	}

	// oversized vehicle: no bonus, no penalty
	gs3 := &guideSchedule{guide: model.Guide{ID: "g3", VehicleCapacity: 12}}
	if b3 := scoreCandidate(gs3, run, "pickup", m); b3.CapacityFit != 0 {
		t.Errorf("oversized capacity fit = %d, want 0", b3.CapacityFit)
	}

	// workload discourages stacking
	gs.assignments = make([]model.ProposedAssignment, 2)
	if b4 := scoreCandidate(gs, run, "pickup", m); b4.WorkloadBalance != -30 {
		t.Errorf("workload = %d, want -30", b4.WorkloadBalance)
	}
}

func TestRankCandidatesStableTies(t *testing.T) {
	run := model.TourRun{ID: "r1", GuestsPerGuide: 6}
	schedules := newSchedules([]model.Guide{
		{ID: "first", VehicleCapacity: 6},
		{ID: "second", VehicleCapacity: 6},
		{ID: "third", VehicleCapacity: 6},
	})
	ranked := rankCandidates(schedules, run, "", NewTravelMatrix())
	for i, want := range []string{"first", "second", "third"} {
		if ranked[i].schedule.guide.ID != want {
			t.Fatalf("tie order broken at %d: got %s want %s", i, ranked[i].schedule.guide.ID, want)
		}
	}
}

func TestRunPickupZone(t *testing.T) {
	run := model.TourRun{Bookings: []model.Booking{
		{ID: "b1", PickupZone: "north"},
		{ID: "b2", PickupZone: "south"},
		{ID: "b3", PickupZone: "south"},
	}}
	if got := runPickupZone(run); got != "south" {
		t.Fatalf("most common zone = %q, want south", got)
	}
	run.PrimaryZone = "harbor"
	if got := runPickupZone(run); got != "harbor" {
		t.Fatalf("primary zone wins, got %q", got)
	}
	tied := model.TourRun{Bookings: []model.Booking{
		{ID: "b1", PickupZone: "north"},
		{ID: "b2", PickupZone: "south"},
	}}
	if got := runPickupZone(tied); got != "north" {
		t.Fatalf("tie keeps first encountered, got %q", got)
	}
}
