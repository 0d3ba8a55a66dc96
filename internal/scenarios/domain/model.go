package domain

import (
	"context"
	"time"

	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

// DefaultName is used when a scenario is saved with a blank name.
const DefaultName = "Untitled Scenario"

// Scenario is the central entity: user-editable inputs plus the derived
// metrics computed from them. Percent fields are stored as fractions.
// ID is empty until the first successful save assigns one.
type Scenario struct {
	ID      string  `json:"id,omitempty"`
	OwnerID string  `json:"owner_id,omitempty"`
	OrgID   *string `json:"org_id,omitempty"`

	Name              string  `json:"name"`
	CurrentOutreach   float64 `json:"current_outreach"`
	BookingPct        float64 `json:"booking_pct"`
	ClosePct          float64 `json:"close_pct"`
	AvgCustomerValue  float64 `json:"avg_customer_value"`
	ProjectedOutreach float64 `json:"projected_outreach"`
	InklineInvestment float64 `json:"inkline_investment"`

	CurrentLeads       float64  `json:"current_leads"`
	CurrentCustomers   float64  `json:"current_customers"`
	CurrentRevenue     float64  `json:"current_revenue"`
	ProjectedLeads     float64  `json:"projected_leads"`
	ProjectedCustomers float64  `json:"projected_customers"`
	ProjectedRevenue   float64  `json:"projected_revenue"`
	IncreaseLeads      float64  `json:"increase_leads"`
	IncreaseRevenue    float64  `json:"increase_revenue"`
	LeadsNeeded        *float64 `json:"leads_needed"`
	OutreachNeeded     *float64 `json:"outreach_needed"`
	ROI                *float64 `json:"roi"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Inputs extracts the raw numbers the engine operates on.
func (s *Scenario) Inputs() engine.Inputs {
	return engine.Inputs{
		CurrentOutreach:   s.CurrentOutreach,
		BookingPct:        s.BookingPct,
		ClosePct:          s.ClosePct,
		AvgCustomerValue:  s.AvgCustomerValue,
		ProjectedOutreach: s.ProjectedOutreach,
		InklineInvestment: s.InklineInvestment,
	}
}

// SetInputs overwrites the input fields from in.
func (s *Scenario) SetInputs(in engine.Inputs) {
	s.CurrentOutreach = in.CurrentOutreach
	s.BookingPct = in.BookingPct
	s.ClosePct = in.ClosePct
	s.AvgCustomerValue = in.AvgCustomerValue
	s.ProjectedOutreach = in.ProjectedOutreach
	s.InklineInvestment = in.InklineInvestment
}

// ApplyDerived overwrites the derived fields from d.
func (s *Scenario) ApplyDerived(d engine.Derived) {
	s.CurrentLeads = d.CurrentLeads
	s.CurrentCustomers = d.CurrentCustomers
	s.CurrentRevenue = d.CurrentRevenue
	s.ProjectedLeads = d.ProjectedLeads
	s.ProjectedCustomers = d.ProjectedCustomers
	s.ProjectedRevenue = d.ProjectedRevenue
	s.IncreaseLeads = d.IncreaseLeads
	s.IncreaseRevenue = d.IncreaseRevenue
	s.LeadsNeeded = d.LeadsNeeded
	s.OutreachNeeded = d.OutreachNeeded
	s.ROI = d.ROI
}

// Recompute refreshes the derived fields from the current inputs.
func (s *Scenario) Recompute() {
	s.ApplyDerived(engine.Compute(s.Inputs()))
}

// Store is the persistence collaborator. Create and Update compute and
// persist derived columns with the same engine the sessions use, and
// return the full stored record including server-assigned id and
// timestamps. List is ordered by updated_at descending.
type Store interface {
	Create(ctx context.Context, ownerID, name string, in engine.Inputs) (*Scenario, error)
	Update(ctx context.Context, ownerID, id, name string, in engine.Inputs) (*Scenario, error)
	Get(ctx context.Context, ownerID, id string) (*Scenario, error)
	List(ctx context.Context, ownerID string) ([]Scenario, error)
	Delete(ctx context.Context, ownerID, id string) (bool, error)
}
