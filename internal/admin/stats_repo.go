// Package admin holds the administrative surface: the all-scenarios view,
// usage stats and invitations. Read models run over database/sql so they
// stay decoupled from the main pgx pool.
package admin

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Stats is the dashboard summary an admin sees.
type Stats struct {
	TotalUsers         int64    `json:"total_users"`
	TotalScenarios     int64    `json:"total_scenarios"`
	ScenariosThisWeek  int64    `json:"scenarios_this_week"`
	AverageROI         *float64 `json:"average_roi"`
	PositiveROICount   int64    `json:"positive_roi_count"`
	TotalInvestment    float64  `json:"total_investment"`
	TotalRevenueUplift float64  `json:"total_revenue_uplift"`
}

// StatsRepo aggregates usage numbers for the admin dashboard.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo {
	return &StatsRepo{db: db}
}

// OpenStatsDB opens a database/sql handle over the Postgres driver for the
// read model queries.
func OpenStatsDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open stats db: %w", err)
	}
	return db, nil
}

// Summary gathers the dashboard numbers in one round trip per table.
func (r *StatsRepo) Summary(ctx context.Context) (*Stats, error) {
	var s Stats

	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&s.TotalUsers); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	const q = `
SELECT count(*),
       count(*) FILTER (WHERE updated_at > now() - interval '7 days'),
       avg(roi),
       count(*) FILTER (WHERE roi >= 0),
       coalesce(sum(inkline_investment), 0),
       coalesce(sum(increase_revenue), 0)
FROM scenarios`

	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx, q).Scan(
		&s.TotalScenarios,
		&s.ScenariosThisWeek,
		&avg,
		&s.PositiveROICount,
		&s.TotalInvestment,
		&s.TotalRevenueUplift,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate scenarios: %w", err)
	}
	if avg.Valid {
		s.AverageROI = &avg.Float64
	}
	return &s, nil
}
