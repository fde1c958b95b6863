package dispatch

import (
	"time"

	"tourdispatch/internal/model"
)

// ArrivalBufferMinutes is the margin a guide must have at the meeting point
// before the tour's official start.
const ArrivalBufferMinutes = 15

// pickupStop is one sequenced pickup with its computed departure-relative
// timing.
type pickupStop struct {
	booking      model.Booking
	driveMinutes int // travel into this pickup from the previous position
	pickupAt     time.Time
}

// sequencePickups orders a guide's bookings by nearest-neighbor from the
// guide's start zone and computes pickup times by walking backward from
// tourStart minus the arrival buffer. The last pickup lands exactly one
// buffer ahead of the start; earlier pickups are pushed earlier by the drive
// between stops.
func sequencePickups(startZone string, bookings []model.Booking, run model.TourRun, m *TravelMatrix) []pickupStop {
	if len(bookings) == 0 {
		return nil
	}
	ordered := nearestNeighborOrder(startZone, bookings, m)

	stops := make([]pickupStop, len(ordered))
	cur := startZone
	for i, b := range ordered {
		stops[i] = pickupStop{
			booking:      b,
			driveMinutes: m.Get(cur, b.PickupZone, DefaultTravelMinutes),
		}
		if b.PickupZone != "" {
			cur = b.PickupZone
		}
	}

	// backward propagation from the buffer-adjusted start
	pos := run.PrimaryZone
	t := run.StartsAt.Add(-ArrivalBufferMinutes * time.Minute)
	for i := len(stops) - 1; i >= 0; i-- {
		// no leg into an unknown position: runs without a meeting zone
		// anchor the last pickup at the buffer-adjusted start, matching
		// the zero approach leg in the drive total
		travel := 0
		if pos != "" {
			travel = m.Get(stops[i].booking.PickupZone, pos, DefaultTravelMinutes)
		}
		t = t.Add(-time.Duration(travel) * time.Minute)
		stops[i].pickupAt = t
		if z := stops[i].booking.PickupZone; z != "" {
			pos = z
		}
	}
	return stops
}

// nearestNeighborOrder repeatedly picks the unvisited booking closest to the
// current position. Ties keep the earliest input index, so the order is
// deterministic. Single-booking lists are returned as-is.
func nearestNeighborOrder(startZone string, bookings []model.Booking, m *TravelMatrix) []model.Booking {
	if len(bookings) < 2 {
		return append([]model.Booking(nil), bookings...)
	}
	visited := make([]bool, len(bookings))
	out := make([]model.Booking, 0, len(bookings))
	cur := startZone
	for range bookings {
		best := -1
		bestDrive := 0
		for i, b := range bookings {
			if visited[i] {
				continue
			}
			drive := m.Get(cur, b.PickupZone, DefaultTravelMinutes)
			if best == -1 || drive < bestDrive {
				best = i
				bestDrive = drive
			}
		}
		visited[best] = true
		out = append(out, bookings[best])
		if z := bookings[best].PickupZone; z != "" {
			cur = z
		}
	}
	return out
}

// approachMinutes is the final leg from the last pickup back to the run's
// meeting point, counted toward the guide's drive total. Zero when the run
// has no meeting zone.
func approachMinutes(stops []pickupStop, run model.TourRun, m *TravelMatrix) int {
	if run.PrimaryZone == "" || len(stops) == 0 {
		return 0
	}
	last := ""
	for i := len(stops) - 1; i >= 0; i-- {
		if z := stops[i].booking.PickupZone; z != "" {
			last = z
			break
		}
	}
	if last == "" {
		return 0
	}
	return m.Get(last, run.PrimaryZone, DefaultTravelMinutes)
}
