package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"tourdispatch/internal/model"
)

func TestMemoryTravelTimes(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	entries := []model.TravelTimeEntry{
		{FromZone: "a", ToZone: "b", Minutes: 10},
		{FromZone: "b", ToZone: "c", Minutes: 20},
	}
	if err := m.ReplaceTravelTimes(ctx, "org-1", entries); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err := m.ListTravelTimes(ctx, "org-1")
	if err != nil || len(got) != 2 {
		t.Fatalf("list: %v, %d entries", err, len(got))
	}
	// replace is a full overwrite
	if err := m.ReplaceTravelTimes(ctx, "org-1", entries[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got, _ = m.ListTravelTimes(ctx, "org-1"); len(got) != 1 {
		t.Fatalf("after overwrite: %d entries, want 1", len(got))
	}
	// orgs are isolated
	if got, _ = m.ListTravelTimes(ctx, "org-2"); len(got) != 0 {
		t.Fatalf("other org sees %d entries", len(got))
	}
}

func TestMemoryDispatchDay(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if _, _, err := m.GetDispatchDay(ctx, "org-1", "2026-06-12"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing day: %v, want ErrNotFound", err)
	}

	runs := []model.TourRun{{ID: "r1", StartsAt: time.Date(2026, 6, 12, 9, 0, 0, 0, time.UTC)}}
	guides := []model.Guide{{ID: "g1", VehicleCapacity: 6}}
	if err := m.SaveDispatchDay(ctx, "org-1", "2026-06-12", runs, guides); err != nil {
		t.Fatalf("save: %v", err)
	}
	gotRuns, gotGuides, err := m.GetDispatchDay(ctx, "org-1", "2026-06-12")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(gotRuns) != 1 || gotRuns[0].ID != "r1" || len(gotGuides) != 1 {
		t.Fatalf("round trip mismatch: %+v %+v", gotRuns, gotGuides)
	}
}

func TestMemoryProposals(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	out := model.OptimizationOutput{Efficiency: 87.5, GuidesUsed: 1}
	p, err := m.SaveProposal(ctx, "org-1", "2026-06-12", out)
	if err != nil || p.ID == "" {
		t.Fatalf("save: %v, id=%q", err, p.ID)
	}
	got, err := m.GetProposal(ctx, "org-1", p.ID)
	if err != nil || got.Output.Efficiency != 87.5 {
		t.Fatalf("get: %v, %+v", err, got)
	}
	if _, err := m.GetProposal(ctx, "org-2", p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-org read must fail with ErrNotFound, got %v", err)
	}

	if _, err := m.SaveProposal(ctx, "org-1", "2026-06-13", out); err != nil {
		t.Fatalf("save: %v", err)
	}
	all, err := m.ListProposals(ctx, "org-1", "", 10)
	if err != nil || len(all) != 2 {
		t.Fatalf("list all: %v, %d", err, len(all))
	}
	byDate, err := m.ListProposals(ctx, "org-1", "2026-06-12", 10)
	if err != nil || len(byDate) != 1 || byDate[0].Date != "2026-06-12" {
		t.Fatalf("list by date: %v, %+v", err, byDate)
	}
}
