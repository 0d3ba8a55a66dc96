// Package repository provides the persisted scenario stores. The Postgres
// store is the production backend; a SQLite store with identical semantics
// backs local development and tests.
//
// Derived columns are computed here with the same engine the editing
// sessions use, so a stored row can never disagree with a live recompute.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

const scenarioColumns = `
public_id, owner_id, org_id, name,
current_outreach, booking_pct, close_pct, avg_customer_value,
projected_outreach, inkline_investment,
current_leads, current_customers, current_revenue,
projected_leads, projected_customers, projected_revenue,
increase_leads, increase_revenue, leads_needed, outreach_needed, roi,
created_at, updated_at`

// PG persists scenarios in Postgres via a pgx pool.
type PG struct {
	db *pgxpool.Pool
}

// NewPG creates a Postgres-backed scenario store.
func NewPG(db *pgxpool.Pool) *PG {
	return &PG{db: db}
}

func (r *PG) Create(ctx context.Context, ownerID, name string, in engine.Inputs) (*domain.Scenario, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required")
	}
	if name == "" {
		name = domain.DefaultName
	}
	d := engine.Compute(in)

	for i := 0; i < 5; i++ {
		publicID, err := NewPublicID("scn")
		if err != nil {
			return nil, err
		}

		q := `
insert into scenarios (
  id, public_id, owner_id, name,
  current_outreach, booking_pct, close_pct, avg_customer_value,
  projected_outreach, inkline_investment,
  current_leads, current_customers, current_revenue,
  projected_leads, projected_customers, projected_revenue,
  increase_leads, increase_revenue, leads_needed, outreach_needed, roi
)
values ($1, $2, $3::uuid, $4, $5, $6, $7, $8, $9, $10,
        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
returning ` + scenarioColumns + `;`

		row := r.db.QueryRow(ctx, q,
			uuid.New().String(), publicID, ownerID, name,
			in.CurrentOutreach, in.BookingPct, in.ClosePct, in.AvgCustomerValue,
			in.ProjectedOutreach, in.InklineInvestment,
			d.CurrentLeads, d.CurrentCustomers, d.CurrentRevenue,
			d.ProjectedLeads, d.ProjectedCustomers, d.ProjectedRevenue,
			d.IncreaseLeads, d.IncreaseRevenue, d.LeadsNeeded, d.OutreachNeeded, d.ROI,
		)

		s, err := scanScenario(row)
		if err == nil {
			return s, nil
		}

		// unique violation on public_id → retry with a fresh one
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique scenario id")
}

func (r *PG) Update(ctx context.Context, ownerID, id, name string, in engine.Inputs) (*domain.Scenario, error) {
	if name == "" {
		name = domain.DefaultName
	}
	d := engine.Compute(in)

	q := `
update scenarios
set name = $3,
    current_outreach = $4, booking_pct = $5, close_pct = $6,
    avg_customer_value = $7, projected_outreach = $8, inkline_investment = $9,
    current_leads = $10, current_customers = $11, current_revenue = $12,
    projected_leads = $13, projected_customers = $14, projected_revenue = $15,
    increase_leads = $16, increase_revenue = $17,
    leads_needed = $18, outreach_needed = $19, roi = $20,
    updated_at = now()
where owner_id = $1::uuid and public_id = $2
returning ` + scenarioColumns + `;`

	row := r.db.QueryRow(ctx, q,
		ownerID, id, name,
		in.CurrentOutreach, in.BookingPct, in.ClosePct,
		in.AvgCustomerValue, in.ProjectedOutreach, in.InklineInvestment,
		d.CurrentLeads, d.CurrentCustomers, d.CurrentRevenue,
		d.ProjectedLeads, d.ProjectedCustomers, d.ProjectedRevenue,
		d.IncreaseLeads, d.IncreaseRevenue, d.LeadsNeeded, d.OutreachNeeded, d.ROI,
	)

	s, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *PG) Get(ctx context.Context, ownerID, id string) (*domain.Scenario, error) {
	q := `select ` + scenarioColumns + ` from scenarios where owner_id = $1::uuid and public_id = $2;`

	s, err := scanScenario(r.db.QueryRow(ctx, q, ownerID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *PG) List(ctx context.Context, ownerID string) ([]domain.Scenario, error) {
	q := `select ` + scenarioColumns + ` from scenarios where owner_id = $1::uuid order by updated_at desc;`

	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Scenario, 0, 16)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *PG) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `delete from scenarios where owner_id = $1::uuid and public_id = $2;`

	ct, err := r.db.Exec(ctx, q, ownerID, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}

// prefixed qualifies every column in a comma list with a table alias.
func prefixed(alias, cols string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// scanScenario reads one row in scenarioColumns order.
func scanScenario(row pgx.Row) (*domain.Scenario, error) {
	var s domain.Scenario
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.OrgID, &s.Name,
		&s.CurrentOutreach, &s.BookingPct, &s.ClosePct, &s.AvgCustomerValue,
		&s.ProjectedOutreach, &s.InklineInvestment,
		&s.CurrentLeads, &s.CurrentCustomers, &s.CurrentRevenue,
		&s.ProjectedLeads, &s.ProjectedCustomers, &s.ProjectedRevenue,
		&s.IncreaseLeads, &s.IncreaseRevenue, &s.LeadsNeeded, &s.OutreachNeeded, &s.ROI,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
