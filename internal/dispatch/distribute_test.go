package dispatch

import (
	"testing"

	"tourdispatch/internal/model"
)

func selectedFor(run model.TourRun, guides ...model.Guide) []scoredCandidate {
	out := make([]scoredCandidate, len(guides))
	for i, gs := range newSchedules(guides) {
		out[i] = scoredCandidate{schedule: gs}
	}
	return out
}

func TestDistributeSharedLargestFirst(t *testing.T) {
	run := model.TourRun{ID: "r1", GuestsPerGuide: 6, Bookings: []model.Booking{
		{ID: "small", Participants: 2},
		{ID: "big", Participants: 5},
		{ID: "mid", Participants: 3},
	}}
	d := distributeBookings(run, selectedFor(run,
		model.Guide{ID: "g1", VehicleCapacity: 6},
		model.Guide{ID: "g2", VehicleCapacity: 6},
	))

	if len(d.unassigned) != 0 || len(d.overflows) != 0 {
		t.Fatalf("expected clean packing, unassigned=%d overflow=%d", len(d.unassigned), len(d.overflows))
	}
	// big(5) -> g1, mid(3) -> g2 (most remaining), small(2) -> g2 (3 left vs 1)
	byGuide := map[string][]string{}
	for _, l := range d.loads {
		for _, b := range l.bookings {
			byGuide[l.schedule.guide.ID] = append(byGuide[l.schedule.guide.ID], b.ID)
		}
	}
	if len(byGuide["g1"]) != 1 || byGuide["g1"][0] != "big" {
		t.Fatalf("g1 = %v, want [big]", byGuide["g1"])
	}
	if len(byGuide["g2"]) != 2 {
		t.Fatalf("g2 = %v, want mid+small", byGuide["g2"])
	}

	// capacity property: no guide over min(vehicleCapacity, guestsPerGuide)
	for _, l := range d.loads {
		total := 0
		for _, b := range l.bookings {
			total += b.Participants
		}
		if total > 6 {
			t.Fatalf("guide %s packed %d > 6", l.schedule.guide.ID, total)
		}
	}
}

func TestDistributePrivateConsumesGuide(t *testing.T) {
	run := model.TourRun{ID: "r1", GuestsPerGuide: 6, Bookings: []model.Booking{
		{ID: "shared", Participants: 2},
		{ID: "private", Participants: 6, Private: true},
	}}
	d := distributeBookings(run, selectedFor(run,
		model.Guide{ID: "g1", VehicleCapacity: 6},
		model.Guide{ID: "g2", VehicleCapacity: 6},
	))

	var privateLoad, sharedLoad *guideLoad
	for _, l := range d.loads {
		for _, b := range l.bookings {
			if b.ID == "private" {
				privateLoad = l
			}
			if b.ID == "shared" {
				sharedLoad = l
			}
		}
	}
	if privateLoad == nil || sharedLoad == nil {
		t.Fatalf("both bookings must be placed")
	}
	if privateLoad == sharedLoad {
		t.Fatalf("private booking must not share a vehicle")
	}
	if !privateLoad.exclusive || privateLoad.remaining != 0 {
		t.Fatalf("private guide must be fully consumed: exclusive=%v remaining=%d",
			privateLoad.exclusive, privateLoad.remaining)
	}
	if len(privateLoad.bookings) != 1 {
		t.Fatalf("exclusive guide holds %d bookings, want 1", len(privateLoad.bookings))
	}
}

func TestDistributeOverflowFallback(t *testing.T) {
	run := model.TourRun{ID: "r1", GuestsPerGuide: 4, Bookings: []model.Booking{
		{ID: "b1", Participants: 4},
		{ID: "b2", Participants: 3},
	}}
	d := distributeBookings(run, selectedFor(run, model.Guide{ID: "g1", VehicleCapacity: 4}))

	if len(d.unassigned) != 0 {
		t.Fatalf("overflow must place, not drop: unassigned=%d", len(d.unassigned))
	}
	if len(d.overflows) != 1 || d.overflows[0].ID != "b2" {
		t.Fatalf("overflows = %v, want [b2]", d.overflows)
	}

	ws := d.warnings(run, newWarningBuilder(nil))
	if len(ws) != 1 {
		t.Fatalf("warnings = %d, want 1", len(ws))
	}
	w := ws[0]
	if w.Type != model.WarnVehicleCapacityExceeded || w.Severity != model.SeverityWarning {
		t.Fatalf("warning = %s/%s, want vehicle_capacity_exceeded/warning", w.Type, w.Severity)
	}
	if w.BookingID != "b2" || w.GuideID != "g1" || w.TourRunID != "r1" {
		t.Fatalf("warning references wrong entities: %+v", w)
	}
}

func TestDistributeUnassignedWhenOnlyExclusiveGuides(t *testing.T) {
	run := model.TourRun{ID: "r1", GuestsPerGuide: 6, Bookings: []model.Booking{
		{ID: "p1", Participants: 4, Private: true},
		{ID: "s1", Participants: 2},
	}}
	d := distributeBookings(run, selectedFor(run, model.Guide{ID: "g1", VehicleCapacity: 6}))

	if len(d.unassigned) != 1 || d.unassigned[0].ID != "s1" {
		t.Fatalf("unassigned = %v, want [s1]", d.unassigned)
	}
	ws := d.warnings(run, newWarningBuilder(nil))
	if len(ws) != 1 || ws[0].Type != model.WarnUnassignedBooking || ws[0].Severity != model.SeverityCritical {
		t.Fatalf("want one critical unassigned_booking, got %+v", ws)
	}
	if len(ws[0].Resolutions) == 0 || ws[0].Resolutions[0].Action != model.ResolveAddExternalGuide {
		t.Fatalf("unassigned warning must offer an external guide")
	}
}
