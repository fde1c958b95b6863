package store

import (
	"context"
	"errors"
	"testing"
)

func TestPostgresGetProposalMalformedID(t *testing.T) {
	// a non-UUID id must map to ErrNotFound before any query runs,
	// so the handler returns 404 instead of a driver error
	p := &Postgres{}
	_, err := p.GetProposal(context.Background(), "org1", "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}
