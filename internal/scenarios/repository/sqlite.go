package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

const sqliteSchema = `
create table if not exists scenarios (
	public_id           text primary key,
	owner_id            text not null,
	org_id              text,
	name                text not null,
	current_outreach    real not null,
	booking_pct         real not null,
	close_pct           real not null,
	avg_customer_value  real not null,
	projected_outreach  real not null,
	inkline_investment  real not null,
	current_leads       real not null,
	current_customers   real not null,
	current_revenue     real not null,
	projected_leads     real not null,
	projected_customers real not null,
	projected_revenue   real not null,
	increase_leads      real not null,
	increase_revenue    real not null,
	leads_needed        real,
	outreach_needed     real,
	roi                 real,
	created_at          integer not null,
	updated_at          integer not null
);
create index if not exists scenarios_owner_updated on scenarios (owner_id, updated_at desc);
`

// SQLite is an embedded scenario store with the same semantics as the
// Postgres one. It backs local development and the integration tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and if needed initializes) a SQLite scenario store.
// Use ":memory:" for a throwaway database.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path required")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying handle.
func (r *SQLite) Close() error {
	return r.db.Close()
}

func (r *SQLite) Create(ctx context.Context, ownerID, name string, in engine.Inputs) (*domain.Scenario, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id required")
	}
	if name == "" {
		name = domain.DefaultName
	}
	d := engine.Compute(in)

	publicID, err := NewPublicID("scn")
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	const q = `
insert into scenarios (
  public_id, owner_id, name,
  current_outreach, booking_pct, close_pct, avg_customer_value,
  projected_outreach, inkline_investment,
  current_leads, current_customers, current_revenue,
  projected_leads, projected_customers, projected_revenue,
  increase_leads, increase_revenue, leads_needed, outreach_needed, roi,
  created_at, updated_at
) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);`

	_, err = r.db.ExecContext(ctx, q,
		publicID, ownerID, name,
		in.CurrentOutreach, in.BookingPct, in.ClosePct, in.AvgCustomerValue,
		in.ProjectedOutreach, in.InklineInvestment,
		d.CurrentLeads, d.CurrentCustomers, d.CurrentRevenue,
		d.ProjectedLeads, d.ProjectedCustomers, d.ProjectedRevenue,
		d.IncreaseLeads, d.IncreaseRevenue, d.LeadsNeeded, d.OutreachNeeded, d.ROI,
		now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert scenario: %w", err)
	}
	return r.Get(ctx, ownerID, publicID)
}

func (r *SQLite) Update(ctx context.Context, ownerID, id, name string, in engine.Inputs) (*domain.Scenario, error) {
	if name == "" {
		name = domain.DefaultName
	}
	d := engine.Compute(in)

	const q = `
update scenarios
set name = ?,
    current_outreach = ?, booking_pct = ?, close_pct = ?,
    avg_customer_value = ?, projected_outreach = ?, inkline_investment = ?,
    current_leads = ?, current_customers = ?, current_revenue = ?,
    projected_leads = ?, projected_customers = ?, projected_revenue = ?,
    increase_leads = ?, increase_revenue = ?,
    leads_needed = ?, outreach_needed = ?, roi = ?,
    updated_at = ?
where owner_id = ? and public_id = ?;`

	res, err := r.db.ExecContext(ctx, q,
		name,
		in.CurrentOutreach, in.BookingPct, in.ClosePct,
		in.AvgCustomerValue, in.ProjectedOutreach, in.InklineInvestment,
		d.CurrentLeads, d.CurrentCustomers, d.CurrentRevenue,
		d.ProjectedLeads, d.ProjectedCustomers, d.ProjectedRevenue,
		d.IncreaseLeads, d.IncreaseRevenue, d.LeadsNeeded, d.OutreachNeeded, d.ROI,
		time.Now().UTC().UnixMilli(),
		ownerID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update scenario: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrNotFound
	}
	return r.Get(ctx, ownerID, id)
}

const sqliteColumns = `
public_id, owner_id, org_id, name,
current_outreach, booking_pct, close_pct, avg_customer_value,
projected_outreach, inkline_investment,
current_leads, current_customers, current_revenue,
projected_leads, projected_customers, projected_revenue,
increase_leads, increase_revenue, leads_needed, outreach_needed, roi,
created_at, updated_at`

func (r *SQLite) Get(ctx context.Context, ownerID, id string) (*domain.Scenario, error) {
	q := `select ` + sqliteColumns + ` from scenarios where owner_id = ? and public_id = ?;`

	s, err := scanSQLiteScenario(r.db.QueryRowContext(ctx, q, ownerID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *SQLite) List(ctx context.Context, ownerID string) ([]domain.Scenario, error) {
	q := `select ` + sqliteColumns + ` from scenarios where owner_id = ? order by updated_at desc, public_id;`

	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Scenario, 0, 16)
	for rows.Next() {
		s, err := scanSQLiteScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SQLite) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	const q = `delete from scenarios where owner_id = ? and public_id = ?;`

	res, err := r.db.ExecContext(ctx, q, ownerID, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteScenario(row rowScanner) (*domain.Scenario, error) {
	var s domain.Scenario
	var createdAt, updatedAt int64
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.OrgID, &s.Name,
		&s.CurrentOutreach, &s.BookingPct, &s.ClosePct, &s.AvgCustomerValue,
		&s.ProjectedOutreach, &s.InklineInvestment,
		&s.CurrentLeads, &s.CurrentCustomers, &s.CurrentRevenue,
		&s.ProjectedLeads, &s.ProjectedCustomers, &s.ProjectedRevenue,
		&s.IncreaseLeads, &s.IncreaseRevenue, &s.LeadsNeeded, &s.OutreachNeeded, &s.ROI,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.CreatedAt = time.UnixMilli(createdAt).UTC()
	s.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &s, nil
}
