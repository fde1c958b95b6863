package store

import (
	"context"
	"errors"

	"tourdispatch/internal/model"
)

// Store is the persistence interface used by the API server. The optimizer
// itself never touches it: handlers load inputs here, run the pure engine,
// and save the proposal back.
type Store interface {
	// Travel times
	ReplaceTravelTimes(ctx context.Context, orgID string, entries []model.TravelTimeEntry) error
	ListTravelTimes(ctx context.Context, orgID string) ([]model.TravelTimeEntry, error)

	// Dispatch days: a day's tour runs plus the available guide pool
	SaveDispatchDay(ctx context.Context, orgID, date string, runs []model.TourRun, guides []model.Guide) error
	GetDispatchDay(ctx context.Context, orgID, date string) ([]model.TourRun, []model.Guide, error)

	// Proposals
	SaveProposal(ctx context.Context, orgID, date string, out model.OptimizationOutput) (model.Proposal, error)
	GetProposal(ctx context.Context, orgID, id string) (model.Proposal, error)
	ListProposals(ctx context.Context, orgID, date string, limit int) ([]model.Proposal, error)
}

var ErrNotFound = errors.New("not found")
