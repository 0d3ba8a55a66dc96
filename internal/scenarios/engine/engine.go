// Package engine holds the pure outreach-ROI math. It has no dependencies
// and no side effects; every caller that needs derived metrics goes through
// Compute so the formulas exist in exactly one place.
package engine

// Inputs are the raw scenario numbers the metrics derive from. Percent
// fields are fractions in [0,1]; normalization from human-entered values
// happens at the edit boundary, never here.
type Inputs struct {
	CurrentOutreach   float64 `json:"current_outreach"`
	BookingPct        float64 `json:"booking_pct"`
	ClosePct          float64 `json:"close_pct"`
	AvgCustomerValue  float64 `json:"avg_customer_value"`
	ProjectedOutreach float64 `json:"projected_outreach"`
	InklineInvestment float64 `json:"inkline_investment"`
}

// Derived is the full metric set for one scenario. ROI, LeadsNeeded and
// OutreachNeeded are nil when their denominator is zero; they are never
// NaN or Inf. IncreaseLeads, IncreaseRevenue and ROI may be negative.
type Derived struct {
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
}

// Compute derives all metrics from the inputs. It is total over the
// declared domain (non-negative inputs, percents in [0,1]) and performs
// no rounding; formatting is a presentation concern.
func Compute(in Inputs) Derived {
	d := Derived{
		CurrentLeads:   in.CurrentOutreach * in.BookingPct,
		ProjectedLeads: in.ProjectedOutreach * in.BookingPct,
	}
	d.CurrentCustomers = d.CurrentLeads * in.ClosePct
	d.CurrentRevenue = d.CurrentCustomers * in.AvgCustomerValue
	d.ProjectedCustomers = d.ProjectedLeads * in.ClosePct
	d.ProjectedRevenue = d.ProjectedCustomers * in.AvgCustomerValue
	d.IncreaseLeads = d.ProjectedLeads - d.CurrentLeads
	d.IncreaseRevenue = d.ProjectedRevenue - d.CurrentRevenue

	if in.InklineInvestment > 0 {
		roi := (d.IncreaseRevenue - in.InklineInvestment) / in.InklineInvestment
		d.ROI = &roi
	}
	if in.AvgCustomerValue > 0 && in.ClosePct > 0 {
		leads := in.InklineInvestment / (in.AvgCustomerValue * in.ClosePct)
		d.LeadsNeeded = &leads
		if in.BookingPct > 0 {
			outreach := leads / in.BookingPct
			d.OutreachNeeded = &outreach
		}
	}
	return d
}
