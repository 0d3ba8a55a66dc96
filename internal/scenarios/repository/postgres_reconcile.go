package repository

import (
	"context"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

// ListAllForReconcile streams every stored scenario regardless of owner so
// the nightly reconciler can verify derived columns.
func (r *PG) ListAllForReconcile(ctx context.Context) ([]domain.Scenario, error) {
	q := `select ` + scenarioColumns + ` from scenarios order by public_id;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Scenario, 0, 64)
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// UpdateDerived rewrites only the derived columns of a row, leaving inputs
// and updated_at untouched so a reconcile pass never masquerades as an edit.
func (r *PG) UpdateDerived(ctx context.Context, id string, d engine.Derived) error {
	const q = `
update scenarios
set current_leads = $2, current_customers = $3, current_revenue = $4,
    projected_leads = $5, projected_customers = $6, projected_revenue = $7,
    increase_leads = $8, increase_revenue = $9,
    leads_needed = $10, outreach_needed = $11, roi = $12
where public_id = $1;`

	_, err := r.db.Exec(ctx, q, id,
		d.CurrentLeads, d.CurrentCustomers, d.CurrentRevenue,
		d.ProjectedLeads, d.ProjectedCustomers, d.ProjectedRevenue,
		d.IncreaseLeads, d.IncreaseRevenue, d.LeadsNeeded, d.OutreachNeeded, d.ROI,
	)
	return err
}
