package model

import (
	"time"
)

// Core domain types for the dispatch optimizer.

// TourRun is one scheduled departure: all bookings sharing the same tour,
// date, and start time. It is an immutable input rebuilt per optimization
// call and never persisted by the engine.
type TourRun struct {
	ID                string    `json:"id"`
	TourID            string    `json:"tourId"`
	Date              string    `json:"date"` // YYYY-MM-DD
	StartsAt          time.Time `json:"startsAt"`
	DurationMinutes   int       `json:"durationMinutes"`
	GuestsPerGuide    int       `json:"guestsPerGuide"`
	TotalGuests       int       `json:"totalGuests,omitempty"`
	PreferredLanguage string    `json:"preferredLanguage,omitempty"`
	PrimaryZone       string    `json:"primaryZone,omitempty"`
	Bookings          []Booking `json:"bookings"`
}

// EndsAt is the instant the run finishes.
func (t TourRun) EndsAt() time.Time {
	return t.StartsAt.Add(time.Duration(t.DurationMinutes) * time.Minute)
}

// Guests returns the declared total, falling back to the sum of booking
// participants when the caller did not set it.
func (t TourRun) Guests() int {
	if t.TotalGuests > 0 {
		return t.TotalGuests
	}
	n := 0
	for _, b := range t.Bookings {
		n += b.Participants
	}
	return n
}

// GuidesNeeded is ceil(totalGuests / guestsPerGuide).
func (t TourRun) GuidesNeeded() int {
	if t.GuestsPerGuide <= 0 {
		return 1
	}
	g := t.Guests()
	if g == 0 {
		return 0
	}
	return (g + t.GuestsPerGuide - 1) / t.GuestsPerGuide
}

// Booking is one party on a tour run.
type Booking struct {
	ID            string `json:"id"`
	Participants  int    `json:"participants"`
	PickupZone    string `json:"pickupZone,omitempty"`
	PickupAddress string `json:"pickupAddress,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
	Private       bool   `json:"private,omitempty"`
}

// AvailabilityWindow is one contiguous span a guide can work. Guides with
// split shifts carry several.
type AvailabilityWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ScheduleEntry is a pre-existing commitment on a guide's calendar, used for
// conflict detection. Entries sharing a TourRunID may overlap (several guides
// on one shared run) unless either side is exclusive.
type ScheduleEntry struct {
	TourRunID string    `json:"tourRunId,omitempty"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Exclusive bool      `json:"exclusive,omitempty"`
	EndZone   string    `json:"endZone,omitempty"`
}

// Guide is an available guide with a vehicle, immutable per optimization call.
type Guide struct {
	ID              string               `json:"id"`
	Name            string               `json:"name,omitempty"`
	VehicleCapacity int                  `json:"vehicleCapacity"`
	BaseZone        string               `json:"baseZone,omitempty"`
	Languages       []string             `json:"languages,omitempty"`
	PrimaryTourIDs  []string             `json:"primaryTourIds,omitempty"`
	Availability    []AvailabilityWindow `json:"availability,omitempty"`
	Schedule        []ScheduleEntry      `json:"schedule,omitempty"`
}

// SpeaksLanguage reports whether the guide lists lang.
func (g Guide) SpeaksLanguage(lang string) bool {
	for _, l := range g.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

// IsPrimaryFor reports whether the guide is the preferred guide for tourID.
func (g Guide) IsPrimaryFor(tourID string) bool {
	for _, id := range g.PrimaryTourIDs {
		if id == tourID {
			return true
		}
	}
	return false
}

// TravelTimeEntry is one zone-pair drive-time observation used to build a
// travel matrix.
type TravelTimeEntry struct {
	FromZone string `json:"fromZone"`
	ToZone   string `json:"toZone"`
	Minutes  int    `json:"minutes"`
}

// ScoreBreakdown itemizes a candidate score so operators can see why a guide
// was picked.
type ScoreBreakdown struct {
	PrimaryGuide    int `json:"primaryGuide"`
	ZoneProximity   int `json:"zoneProximity"`
	CapacityFit     int `json:"capacityFit"`
	WorkloadBalance int `json:"workloadBalance"`
	LanguageMatch   int `json:"languageMatch"`
	Total           int `json:"total"`
}

// Assignment confidence classes.
const (
	ConfidenceOptimal = "optimal"
	ConfidenceGood    = "good"
	ConfidenceReview  = "review"
	ConfidenceProblem = "problem"
)

// ProposedAssignment is one booking placed on one guide for one tour run.
// Pure output value; persistence and guide notification are the caller's job.
type ProposedAssignment struct {
	BookingID        string         `json:"bookingId"`
	GuideID          string         `json:"guideId"`
	TourRunID        string         `json:"tourRunId"`
	PickupOrder      int            `json:"pickupOrder"`
	PickupTime       time.Time      `json:"pickupTime"`
	DriveTimeMinutes int            `json:"driveTimeMinutes"`
	Confidence       string         `json:"confidence"`
	Score            ScoreBreakdown `json:"score"`
	IsLeadGuide      bool           `json:"isLeadGuide"`
}

// Warning types.
const (
	WarnInsufficientGuides      = "insufficient_guides"
	WarnUnassignedBooking       = "unassigned_booking"
	WarnVehicleCapacityExceeded = "vehicle_capacity_exceeded"
	WarnTimeConflict            = "time_conflict"
	WarnLongDriveTime           = "long_drive_time"
	WarnSuboptimalAssignment    = "suboptimal_assignment"
)

// Warning severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Resolution actions.
const (
	ResolveAssignToGuide     = "assign_to_guide"
	ResolveAddExternalGuide  = "add_external_guide"
	ResolveSplitAcrossGuides = "split_across_guides"
	ResolveRequestOvertime   = "request_overtime"
	ResolveCancelBooking     = "cancel_booking"
	ResolveMergeTourRuns     = "merge_tour_runs"
)

// SuggestedResolution is an operator-actionable way out of a warning,
// optionally annotated with the drive-time cost of taking it.
type SuggestedResolution struct {
	Action            string `json:"action"`
	GuideID           string `json:"guideId,omitempty"`
	Description       string `json:"description,omitempty"`
	ExtraDriveMinutes int    `json:"extraDriveMinutes,omitempty"`
}

// OptimizationWarning reports an unsatisfiable or degraded constraint as
// data. The engine never fails on business conditions.
type OptimizationWarning struct {
	ID          string                `json:"id"`
	Type        string                `json:"type"`
	Severity    string                `json:"severity"`
	Message     string                `json:"message"`
	TourRunID   string                `json:"tourRunId,omitempty"`
	BookingID   string                `json:"bookingId,omitempty"`
	GuideID     string                `json:"guideId,omitempty"`
	Resolutions []SuggestedResolution `json:"resolutions,omitempty"`
}

// OptimizationMetadata describes one optimization pass.
type OptimizationMetadata struct {
	OptimizedAt       time.Time `json:"optimizedAt"`
	AlgorithmVersion  string    `json:"algorithmVersion"`
	TourRunsProcessed int       `json:"tourRunsProcessed"`
	BookingsProcessed int       `json:"bookingsProcessed"`
}

// OptimizationOutput is the full result of one pass.
type OptimizationOutput struct {
	Assignments       []ProposedAssignment  `json:"assignments"`
	Warnings          []OptimizationWarning `json:"warnings"`
	Efficiency        float64               `json:"efficiency"`
	TotalDriveMinutes int                   `json:"totalDriveMinutes"`
	GuidesUsed        int                   `json:"guidesUsed"`
	Metadata          OptimizationMetadata  `json:"metadata"`
}

// OptimizeRequest is the API request body. Either inline tour runs and guides
// are given, or the day is loaded from the store by (organizationId, date).
type OptimizeRequest struct {
	OrganizationID string            `json:"organizationId"`
	Date           string            `json:"date"`
	TourRuns       []TourRun         `json:"tourRuns,omitempty"`
	Guides         []Guide           `json:"guides,omitempty"`
	TravelTimes    []TravelTimeEntry `json:"travelTimes,omitempty"`
	Persist        bool              `json:"persist,omitempty"`
}

// Proposal is a stored optimization result.
type Proposal struct {
	ID             string             `json:"id"`
	OrganizationID string             `json:"organizationId"`
	Date           string             `json:"date"`
	CreatedAt      time.Time          `json:"createdAt"`
	Output         OptimizationOutput `json:"output"`
}
