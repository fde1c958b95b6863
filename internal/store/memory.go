package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"tourdispatch/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu        sync.Mutex
	travel    map[string][]model.TravelTimeEntry // orgID -> entries
	days      map[string]dispatchDay             // orgID|date -> day
	proposals map[string]model.Proposal          // proposalID -> proposal
	byOrg     map[string][]string                // orgID -> proposal ids, insertion order
}

type dispatchDay struct {
	runs   []model.TourRun
	guides []model.Guide
}

func NewMemory() *Memory {
	return &Memory{
		travel:    map[string][]model.TravelTimeEntry{},
		days:      map[string]dispatchDay{},
		proposals: map[string]model.Proposal{},
		byOrg:     map[string][]string{},
	}
}

func dayKey(orgID, date string) string { return orgID + "|" + date }

func (m *Memory) ReplaceTravelTimes(ctx context.Context, orgID string, entries []model.TravelTimeEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.travel[orgID] = append([]model.TravelTimeEntry(nil), entries...)
	return nil
}

func (m *Memory) ListTravelTimes(ctx context.Context, orgID string) ([]model.TravelTimeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.TravelTimeEntry(nil), m.travel[orgID]...), nil
}

func (m *Memory) SaveDispatchDay(ctx context.Context, orgID, date string, runs []model.TourRun, guides []model.Guide) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.days[dayKey(orgID, date)] = dispatchDay{
		runs:   append([]model.TourRun(nil), runs...),
		guides: append([]model.Guide(nil), guides...),
	}
	return nil
}

func (m *Memory) GetDispatchDay(ctx context.Context, orgID, date string) ([]model.TourRun, []model.Guide, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.days[dayKey(orgID, date)]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return append([]model.TourRun(nil), d.runs...), append([]model.Guide(nil), d.guides...), nil
}

func (m *Memory) SaveProposal(ctx context.Context, orgID, date string, out model.OptimizationOutput) (model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := model.Proposal{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Date:           date,
		CreatedAt:      time.Now().UTC(),
		Output:         out,
	}
	m.proposals[p.ID] = p
	m.byOrg[orgID] = append(m.byOrg[orgID], p.ID)
	return p, nil
}

func (m *Memory) GetProposal(ctx context.Context, orgID, id string) (model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok || p.OrganizationID != orgID {
		return model.Proposal{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) ListProposals(ctx context.Context, orgID, date string, limit int) ([]model.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 {
		limit = 50
	}
	out := []model.Proposal{}
	ids := m.byOrg[orgID]
	for i := len(ids) - 1; i >= 0 && len(out) < limit; i-- {
		p := m.proposals[ids[i]]
		if date == "" || p.Date == date {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
