package dispatch

import (
	"fmt"

	"tourdispatch/internal/model"
)

// LongDriveMinutes is the per-pickup drive time above which a warning is
// raised.
const LongDriveMinutes = 45

// warningBuilder issues warning ids from an explicit per-pass counter. The
// id function is injectable so the service layer can add a uniqueness token
// while tests stay deterministic; nothing here is global.
type warningBuilder struct {
	seq  int
	idFn func(seq int) string
}

func newWarningBuilder(idFn func(int) string) *warningBuilder {
	if idFn == nil {
		idFn = func(seq int) string { return fmt.Sprintf("warn_%04d", seq) }
	}
	return &warningBuilder{idFn: idFn}
}

func (wb *warningBuilder) newWarning(typ, severity, message string) model.OptimizationWarning {
	wb.seq++
	return model.OptimizationWarning{
		ID:       wb.idFn(wb.seq),
		Type:     typ,
		Severity: severity,
		Message:  message,
	}
}

// insufficientGuides reports a staffing shortfall for a run, offering the
// next-best unselected guides (at most three, each annotated with the extra
// drive minutes it would cost) plus the always-present external-guide option.
func (wb *warningBuilder) insufficientGuides(run model.TourRun, needed, selected int, alternates []scoredCandidate, targetZone string, m *TravelMatrix) model.OptimizationWarning {
	w := wb.newWarning(model.WarnInsufficientGuides, model.SeverityCritical,
		fmt.Sprintf("tour run %s needs %d guides but only %d are available", run.ID, needed, selected))
	w.TourRunID = run.ID
	for i, alt := range alternates {
		if i == 3 {
			break
		}
		extra := m.Get(alt.schedule.guide.BaseZone, targetZone, DefaultTravelMinutes)
		w.Resolutions = append(w.Resolutions, model.SuggestedResolution{
			Action:            model.ResolveAssignToGuide,
			GuideID:           alt.schedule.guide.ID,
			Description:       fmt.Sprintf("assign guide %s despite lower fit", alt.schedule.guide.ID),
			ExtraDriveMinutes: extra,
		})
	}
	w.Resolutions = append(w.Resolutions, model.SuggestedResolution{
		Action:      model.ResolveAddExternalGuide,
		Description: "add an external guide for this departure",
	})
	return w
}

// longDrive flags a single pickup whose approach drive exceeds the
// threshold. Advisory: the plan is feasible, just expensive.
func (wb *warningBuilder) longDrive(run model.TourRun, a model.ProposedAssignment) model.OptimizationWarning {
	w := wb.newWarning(model.WarnLongDriveTime, model.SeverityWarning,
		fmt.Sprintf("pickup for booking %s is a %d minute drive for guide %s", a.BookingID, a.DriveTimeMinutes, a.GuideID))
	w.TourRunID = run.ID
	w.BookingID = a.BookingID
	w.GuideID = a.GuideID
	w.Resolutions = []model.SuggestedResolution{
		{Action: model.ResolveMergeTourRuns, Description: "merge with a nearby departure to share the drive"},
		{Action: model.ResolveCancelBooking, Description: "offer the customer an alternative pickup point"},
	}
	return w
}
