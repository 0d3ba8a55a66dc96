package repository

import (
	"context"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
)

// OwnedScenario is a scenario joined with its owner's email for the
// administrative all-scenarios view.
type OwnedScenario struct {
	domain.Scenario
	OwnerEmail string `json:"owner_email,omitempty"`
}

// ListAll returns every scenario across all owners, newest update first,
// with owner emails resolved. Admin-only callers.
func (r *PG) ListAll(ctx context.Context) ([]OwnedScenario, error) {
	q := `
select ` + prefixed("s", scenarioColumns) + `, coalesce(u.email, '')
from scenarios s
left join users u on u.id = s.owner_id
order by s.updated_at desc;`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OwnedScenario, 0, 32)
	for rows.Next() {
		var o OwnedScenario
		s := &o.Scenario
		if err := rows.Scan(
			&s.ID, &s.OwnerID, &s.OrgID, &s.Name,
			&s.CurrentOutreach, &s.BookingPct, &s.ClosePct, &s.AvgCustomerValue,
			&s.ProjectedOutreach, &s.InklineInvestment,
			&s.CurrentLeads, &s.CurrentCustomers, &s.CurrentRevenue,
			&s.ProjectedLeads, &s.ProjectedCustomers, &s.ProjectedRevenue,
			&s.IncreaseLeads, &s.IncreaseRevenue, &s.LeadsNeeded, &s.OutreachNeeded, &s.ROI,
			&s.CreatedAt, &s.UpdatedAt,
			&o.OwnerEmail,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// DeleteAny removes a scenario regardless of owner. Admin-only callers.
func (r *PG) DeleteAny(ctx context.Context, id string) (bool, error) {
	const q = `delete from scenarios where public_id = $1;`

	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
