package api

import (
	"fmt"

	"tourdispatch/internal/model"
)

func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if req.Date == "" {
		return fmt.Errorf("date is required")
	}
	seenRuns := map[string]bool{}
	for i, run := range req.TourRuns {
		if run.ID == "" {
			return fmt.Errorf("tourRuns[%d]: id is required", i)
		}
		if seenRuns[run.ID] {
			return fmt.Errorf("tourRuns[%d]: duplicate id %s", i, run.ID)
		}
		seenRuns[run.ID] = true
		if run.StartsAt.IsZero() {
			return fmt.Errorf("tour run %s: startsAt is required", run.ID)
		}
		if run.DurationMinutes < 0 {
			return fmt.Errorf("tour run %s: durationMinutes must be >= 0", run.ID)
		}
		if run.GuestsPerGuide < 0 {
			return fmt.Errorf("tour run %s: guestsPerGuide must be >= 0", run.ID)
		}
		for j, b := range run.Bookings {
			if b.ID == "" {
				return fmt.Errorf("tour run %s: bookings[%d]: id is required", run.ID, j)
			}
			if b.Participants < 0 {
				return fmt.Errorf("booking %s: participants must be >= 0", b.ID)
			}
		}
	}
	seenGuides := map[string]bool{}
	for i, g := range req.Guides {
		if g.ID == "" {
			return fmt.Errorf("guides[%d]: id is required", i)
		}
		if seenGuides[g.ID] {
			return fmt.Errorf("guides[%d]: duplicate id %s", i, g.ID)
		}
		seenGuides[g.ID] = true
		if g.VehicleCapacity < 0 {
			return fmt.Errorf("guide %s: vehicleCapacity must be >= 0", g.ID)
		}
		for _, w := range g.Availability {
			if !w.End.After(w.Start) {
				return fmt.Errorf("guide %s: availability window end must be after start", g.ID)
			}
		}
	}
	for i, e := range req.TravelTimes {
		if e.Minutes < 0 {
			return fmt.Errorf("travelTimes[%d]: minutes must be >= 0", i)
		}
	}
	return nil
}
