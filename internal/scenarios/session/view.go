package session

import (
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

// FormValues mirrors the input fields the way a user entered them:
// percents on the 0-100 scale, rounded to one decimal for display.
type FormValues struct {
	Name              string  `json:"name"`
	CurrentOutreach   float64 `json:"current_outreach"`
	BookingPct        float64 `json:"booking_pct"`
	ClosePct          float64 `json:"close_pct"`
	AvgCustomerValue  float64 `json:"avg_customer_value"`
	ProjectedOutreach float64 `json:"projected_outreach"`
	InklineInvestment float64 `json:"inkline_investment"`
}

// View is a read-only snapshot of the workspace: state, the full working
// record (fractions plus derived metrics) and the human-scale form values.
type View struct {
	State    string          `json:"state"`
	Scenario domain.Scenario `json:"scenario"`
	Form     FormValues      `json:"form"`
}

// NormalizeInputs maps human-scale form values to engine inputs, applying
// the same percent normalization and coercion the workspace uses. Callers
// that only want a one-off computation (no workspace) go through this.
func NormalizeInputs(f FormValues) engine.Inputs {
	return engine.Inputs{
		CurrentOutreach:   sanitizeCount(f.CurrentOutreach),
		BookingPct:        sanitizePercent(f.BookingPct),
		ClosePct:          sanitizePercent(f.ClosePct),
		AvgCustomerValue:  sanitizeAmount(f.AvgCustomerValue),
		ProjectedOutreach: sanitizeCount(f.ProjectedOutreach),
		InklineInvestment: sanitizeAmount(f.InklineInvestment),
	}
}

func (s *Session) viewLocked() View {
	return View{
		State:    s.state,
		Scenario: s.cur,
		Form: FormValues{
			Name:              s.cur.Name,
			CurrentOutreach:   s.cur.CurrentOutreach,
			BookingPct:        displayPercent(s.cur.BookingPct),
			ClosePct:          displayPercent(s.cur.ClosePct),
			AvgCustomerValue:  s.cur.AvgCustomerValue,
			ProjectedOutreach: s.cur.ProjectedOutreach,
			InklineInvestment: s.cur.InklineInvestment,
		},
	}
}
