package dispatch

import (
	"fmt"
	"sort"

	"tourdispatch/internal/model"
)

// guideLoad tracks one selected guide's remaining seats while a run's
// bookings are packed.
type guideLoad struct {
	schedule  *guideSchedule
	remaining int
	hasShared bool
	exclusive bool
	bookings  []model.Booking
	over      bool
}

// distribution is the result of packing one run's bookings.
type distribution struct {
	loads      []*guideLoad
	unassigned []model.Booking
	overflows  []model.Booking // placed over capacity, one warning each
}

// distributeBookings packs a run's bookings onto the selected guides.
// Working capacity per guide is min(vehicleCapacity, guestsPerGuide).
// Private bookings go first and consume a guide entirely; shared bookings go
// to the guide with the most remaining room. A party that fits nowhere is
// still placed, over capacity, on the roomiest eligible guide rather than
// silently dropped. The packing is greedy largest-first, not optimal.
func distributeBookings(run model.TourRun, selected []scoredCandidate) distribution {
	d := distribution{loads: make([]*guideLoad, len(selected))}
	for i, c := range selected {
		cap := c.schedule.guide.VehicleCapacity
		if run.GuestsPerGuide > 0 && run.GuestsPerGuide < cap {
			cap = run.GuestsPerGuide
		}
		d.loads[i] = &guideLoad{schedule: c.schedule, remaining: cap}
	}

	ordered := append([]model.Booking(nil), run.Bookings...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Private != ordered[j].Private {
			return ordered[i].Private
		}
		return ordered[i].Participants > ordered[j].Participants
	})

	for _, b := range ordered {
		if b.Private {
			d.placePrivate(b)
		} else {
			d.placeShared(b)
		}
	}
	return d
}

// placePrivate assigns an exclusive booking to a guide holding nothing for
// this run, preferring the most remaining capacity (ties keep encounter
// order). That guide's vehicle is then fully consumed.
func (d *distribution) placePrivate(b model.Booking) {
	var pick *guideLoad
	for _, l := range d.loads {
		if l.exclusive || l.hasShared {
			continue
		}
		if pick == nil || l.remaining > pick.remaining {
			pick = l
		}
	}
	if pick == nil {
		d.unassigned = append(d.unassigned, b)
		return
	}
	pick.bookings = append(pick.bookings, b)
	pick.remaining = 0
	pick.exclusive = true
}

// placeShared assigns a booking to the roomiest guide that fits the whole
// party, falling back to the roomiest eligible guide over capacity.
func (d *distribution) placeShared(b model.Booking) {
	var pick *guideLoad
	for _, l := range d.loads {
		if l.exclusive || l.remaining < b.Participants {
			continue
		}
		if pick == nil || l.remaining > pick.remaining {
			pick = l
		}
	}
	if pick == nil {
		// overflow fallback: over-assign rather than drop
		for _, l := range d.loads {
			if l.exclusive {
				continue
			}
			if pick == nil || l.remaining > pick.remaining {
				pick = l
			}
		}
		if pick == nil {
			d.unassigned = append(d.unassigned, b)
			return
		}
		pick.over = true
		d.overflows = append(d.overflows, b)
	}
	pick.bookings = append(pick.bookings, b)
	pick.hasShared = true
	pick.remaining -= b.Participants
	if pick.remaining < 0 {
		pick.remaining = 0
	}
}

// warnings converts packing failures into operator-facing warnings.
func (d *distribution) warnings(run model.TourRun, wb *warningBuilder) []model.OptimizationWarning {
	out := []model.OptimizationWarning{}
	for _, b := range d.overflows {
		guideID := ""
		for _, l := range d.loads {
			for _, lb := range l.bookings {
				if lb.ID == b.ID {
					guideID = l.schedule.guide.ID
				}
			}
		}
		w := wb.newWarning(model.WarnVehicleCapacityExceeded, model.SeverityWarning,
			fmt.Sprintf("booking %s (%d guests) exceeds remaining vehicle capacity on guide %s", b.ID, b.Participants, guideID))
		w.TourRunID = run.ID
		w.BookingID = b.ID
		w.GuideID = guideID
		w.Resolutions = []model.SuggestedResolution{
			{Action: model.ResolveSplitAcrossGuides, Description: "split the party across guides with free seats"},
			{Action: model.ResolveAddExternalGuide, Description: "add an external guide for this departure"},
		}
		out = append(out, w)
	}
	for _, b := range d.unassigned {
		w := wb.newWarning(model.WarnUnassignedBooking, model.SeverityCritical,
			fmt.Sprintf("booking %s (%d guests) could not be assigned to any guide", b.ID, b.Participants))
		w.TourRunID = run.ID
		w.BookingID = b.ID
		w.Resolutions = []model.SuggestedResolution{
			{Action: model.ResolveAddExternalGuide, Description: "add an external guide for this departure"},
		}
		out = append(out, w)
	}
	return out
}
