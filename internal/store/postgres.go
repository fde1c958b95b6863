package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tourdispatch/internal/model"
)

// Postgres persists travel times, dispatch days, and proposals. Day payloads
// and optimizer outputs are stored as JSONB documents: they are read and
// written whole, never queried field by field.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

// Migrate creates the schema. Dev helper; production uses versioned
// migrations outside this service.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS travel_times (
    org_id    TEXT NOT NULL,
    from_zone TEXT NOT NULL,
    to_zone   TEXT NOT NULL,
    minutes   INT  NOT NULL,
    PRIMARY KEY (org_id, from_zone, to_zone)
);
CREATE TABLE IF NOT EXISTS dispatch_days (
    org_id TEXT NOT NULL,
    date   TEXT NOT NULL,
    runs   JSONB NOT NULL,
    guides JSONB NOT NULL,
    PRIMARY KEY (org_id, date)
);
CREATE TABLE IF NOT EXISTS dispatch_proposals (
    id         UUID PRIMARY KEY,
    org_id     TEXT NOT NULL,
    date       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    output     JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS dispatch_proposals_org_date ON dispatch_proposals (org_id, date, created_at DESC);
`)
	return err
}

func (p *Postgres) ReplaceTravelTimes(ctx context.Context, orgID string, entries []model.TravelTimeEntry) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `DELETE FROM travel_times WHERE org_id=$1`, orgID); err != nil {
		return err
	}
	for _, e := range entries {
		if e.FromZone == "" || e.ToZone == "" {
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO travel_times (org_id, from_zone, to_zone, minutes) VALUES ($1,$2,$3,$4)
			 ON CONFLICT (org_id, from_zone, to_zone) DO UPDATE SET minutes = EXCLUDED.minutes`,
			orgID, e.FromZone, e.ToZone, e.Minutes)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (p *Postgres) ListTravelTimes(ctx context.Context, orgID string) ([]model.TravelTimeEntry, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT from_zone, to_zone, minutes FROM travel_times WHERE org_id=$1 ORDER BY from_zone, to_zone`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TravelTimeEntry{}
	for rows.Next() {
		var e model.TravelTimeEntry
		if err := rows.Scan(&e.FromZone, &e.ToZone, &e.Minutes); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveDispatchDay(ctx context.Context, orgID, date string, runs []model.TourRun, guides []model.Guide) error {
	runsJSON, err := json.Marshal(runs)
	if err != nil {
		return err
	}
	guidesJSON, err := json.Marshal(guides)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO dispatch_days (org_id, date, runs, guides) VALUES ($1,$2,$3,$4)
		 ON CONFLICT (org_id, date) DO UPDATE SET runs = EXCLUDED.runs, guides = EXCLUDED.guides`,
		orgID, date, runsJSON, guidesJSON)
	return err
}

func (p *Postgres) GetDispatchDay(ctx context.Context, orgID, date string) ([]model.TourRun, []model.Guide, error) {
	var runsJSON, guidesJSON []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT runs, guides FROM dispatch_days WHERE org_id=$1 AND date=$2`, orgID, date).
		Scan(&runsJSON, &guidesJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var runs []model.TourRun
	var guides []model.Guide
	if err := json.Unmarshal(runsJSON, &runs); err != nil {
		return nil, nil, err
	}
	if err := json.Unmarshal(guidesJSON, &guides); err != nil {
		return nil, nil, err
	}
	return runs, guides, nil
}

func (p *Postgres) SaveProposal(ctx context.Context, orgID, date string, out model.OptimizationOutput) (model.Proposal, error) {
	prop := model.Proposal{
		ID:             uuid.New().String(),
		OrganizationID: orgID,
		Date:           date,
		CreatedAt:      time.Now().UTC(),
		Output:         out,
	}
	outJSON, err := json.Marshal(out)
	if err != nil {
		return model.Proposal{}, err
	}
	_, err = p.db.ExecContext(ctx,
		`INSERT INTO dispatch_proposals (id, org_id, date, created_at, output) VALUES ($1,$2,$3,$4,$5)`,
		prop.ID, orgID, date, prop.CreatedAt, outJSON)
	if err != nil {
		return model.Proposal{}, err
	}
	return prop, nil
}

func (p *Postgres) GetProposal(ctx context.Context, orgID, id string) (model.Proposal, error) {
	// the id column is a UUID; a malformed id is a miss, not a query error
	if _, err := uuid.Parse(id); err != nil {
		return model.Proposal{}, ErrNotFound
	}
	var prop model.Proposal
	var outJSON []byte
	err := p.db.QueryRowContext(ctx,
		`SELECT id::text, org_id, date, created_at, output FROM dispatch_proposals WHERE org_id=$1 AND id=$2`,
		orgID, id).Scan(&prop.ID, &prop.OrganizationID, &prop.Date, &prop.CreatedAt, &outJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Proposal{}, ErrNotFound
	}
	if err != nil {
		return model.Proposal{}, err
	}
	if err := json.Unmarshal(outJSON, &prop.Output); err != nil {
		return model.Proposal{}, err
	}
	return prop, nil
}

func (p *Postgres) ListProposals(ctx context.Context, orgID, date string, limit int) ([]model.Proposal, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var rows *sql.Rows
	var err error
	if date != "" {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, org_id, date, created_at, output FROM dispatch_proposals
			 WHERE org_id=$1 AND date=$2 ORDER BY created_at DESC LIMIT $3`, orgID, date, limit)
	} else {
		rows, err = p.db.QueryContext(ctx,
			`SELECT id::text, org_id, date, created_at, output FROM dispatch_proposals
			 WHERE org_id=$1 ORDER BY created_at DESC LIMIT $2`, orgID, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Proposal{}
	for rows.Next() {
		var prop model.Proposal
		var outJSON []byte
		if err := rows.Scan(&prop.ID, &prop.OrganizationID, &prop.Date, &prop.CreatedAt, &outJSON); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(outJSON, &prop.Output); err != nil {
			return nil, err
		}
		out = append(out, prop)
	}
	return out, rows.Err()
}
