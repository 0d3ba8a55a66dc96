// Package session owns the scenario a user is currently editing. It keeps
// derived metrics in lockstep with the inputs, tracks dirty/clean status
// against the last persisted snapshot, and dispatches saves as creates or
// updates so a draft can never double-create.
package session

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
)

// Workspace states.
const (
	StateDraft   = "draft"
	StateClean   = "clean"
	StateDirty   = "dirty"
	StateSaving  = "saving"
	StateDeleted = "deleted"
)

// Draft defaults, matching the numbers a new scenario starts from.
const (
	defaultName              = "New Scenario"
	defaultCurrentOutreach   = 1000
	defaultBookingPct        = 0.08
	defaultClosePct          = 0.30
	defaultAvgCustomerValue  = 8000
	defaultProjectedOutreach = 2000
	defaultInvestment        = 24000
)

// Session is the synchronizer for one user's working scenario. All methods
// are safe for concurrent use; the store is never called with the lock held.
type Session struct {
	mu      sync.Mutex
	store   domain.Store
	ownerID string

	state string
	cur   domain.Scenario

	// gen is bumped whenever the working scenario is replaced. A save that
	// lands after the user has moved on compares its generation and is
	// discarded instead of overwriting the newer working scenario.
	gen uint64
}

// New returns a session holding a fresh draft for the given owner.
func New(store domain.Store, ownerID string) *Session {
	s := &Session{store: store, ownerID: ownerID}
	s.resetDraft()
	return s
}

// Patch carries edits to the working scenario. Nil fields are untouched.
// Percent fields are human-entered values in [0,100].
type Patch struct {
	Name              *string  `json:"name"`
	CurrentOutreach   *float64 `json:"current_outreach"`
	BookingPct        *float64 `json:"booking_pct"`
	ClosePct          *float64 `json:"close_pct"`
	AvgCustomerValue  *float64 `json:"avg_customer_value"`
	ProjectedOutreach *float64 `json:"projected_outreach"`
	InklineInvestment *float64 `json:"inkline_investment"`
}

// Edit applies the patch, normalizes percents to fractions, coerces invalid
// numbers to 0 and recomputes the derived fields before returning. Valid
// from Draft, Clean and Dirty; Clean becomes Dirty.
func (s *Session) Edit(p Patch) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateSaving:
		return View{}, domain.ErrSaveInFlight
	case StateDeleted:
		return View{}, domain.ErrDeleted
	}

	if p.Name != nil {
		s.cur.Name = strings.TrimSpace(*p.Name)
	}
	if p.CurrentOutreach != nil {
		s.cur.CurrentOutreach = sanitizeCount(*p.CurrentOutreach)
	}
	if p.BookingPct != nil {
		s.cur.BookingPct = sanitizePercent(*p.BookingPct)
	}
	if p.ClosePct != nil {
		s.cur.ClosePct = sanitizePercent(*p.ClosePct)
	}
	if p.AvgCustomerValue != nil {
		s.cur.AvgCustomerValue = sanitizeAmount(*p.AvgCustomerValue)
	}
	if p.ProjectedOutreach != nil {
		s.cur.ProjectedOutreach = sanitizeCount(*p.ProjectedOutreach)
	}
	if p.InklineInvestment != nil {
		s.cur.InklineInvestment = sanitizeAmount(*p.InklineInvestment)
	}

	s.cur.Recompute()
	if s.state == StateClean {
		s.state = StateDirty
	}
	return s.viewLocked(), nil
}

// SaveResult reports what a successful Save did.
type SaveResult struct {
	Created   bool
	Unchanged bool
	Scenario  domain.Scenario
}

// Save dispatches the working scenario to the store: a draft issues a
// create, a dirty scenario an update keyed by its id. Clean is a no-op.
// A save requested while another is in flight is rejected synchronously
// with ErrSaveInFlight and no store call. On failure the prior state and
// all local edits are preserved.
func (s *Session) Save(ctx context.Context) (SaveResult, error) {
	s.mu.Lock()
	switch s.state {
	case StateSaving:
		s.mu.Unlock()
		return SaveResult{}, domain.ErrSaveInFlight
	case StateDeleted:
		s.mu.Unlock()
		return SaveResult{}, domain.ErrDeleted
	case StateClean:
		res := SaveResult{Unchanged: true, Scenario: s.cur}
		s.mu.Unlock()
		return res, nil
	}

	prior := s.state
	s.state = StateSaving
	gen := s.gen
	id := s.cur.ID
	name := s.cur.Name
	if name == "" {
		name = domain.DefaultName
	}
	in := s.cur.Inputs()
	s.mu.Unlock()

	var rec *domain.Scenario
	var err error
	if id == "" {
		rec, err = s.store.Create(ctx, s.ownerID, name, in)
	} else {
		rec, err = s.store.Update(ctx, s.ownerID, id, name, in)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		// The user switched scenarios while the save was in flight. The
		// result must not clobber the new working scenario.
		if err != nil {
			return SaveResult{}, fmt.Errorf("save superseded: %w", err)
		}
		return SaveResult{Created: id == "", Scenario: *rec}, nil
	}
	if err != nil {
		s.state = prior
		return SaveResult{}, fmt.Errorf("save scenario: %w", err)
	}

	s.cur = *rec
	s.state = StateClean
	return SaveResult{Created: id == "", Scenario: *rec}, nil
}

// Select hydrates the working scenario from the chosen persisted record,
// discarding any unsaved edits. The caller is responsible for confirming
// the discard when the session is dirty.
func (s *Session) Select(ctx context.Context, id string) (View, error) {
	rec, err := s.store.Get(ctx, s.ownerID, id)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cur = *rec
	s.state = StateClean
	return s.viewLocked(), nil
}

// NewDraft abandons the current working scenario and starts a fresh draft
// with the documented defaults. Valid from any state.
func (s *Session) NewDraft() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetDraft()
	return s.viewLocked()
}

// Delete removes the working scenario from the store. It is unconditional:
// user confirmation is the calling layer's job. Only persisted scenarios
// can be deleted. On success the session enters the terminal Deleted state
// and the caller must select a replacement (or leave nothing selected).
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSaving {
		s.mu.Unlock()
		return domain.ErrSaveInFlight
	}
	if s.state == StateDeleted {
		s.mu.Unlock()
		return domain.ErrDeleted
	}
	id := s.cur.ID
	s.mu.Unlock()

	if id == "" {
		return domain.ErrNotPersisted
	}

	ok, err := s.store.Delete(ctx, s.ownerID, id)
	if err != nil {
		return fmt.Errorf("delete scenario: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cur = domain.Scenario{}
	s.state = StateDeleted
	return nil
}

// State returns the current workspace state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// View returns a snapshot of the workspace.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) resetDraft() {
	s.gen++
	s.cur = domain.Scenario{
		Name:              defaultName,
		CurrentOutreach:   defaultCurrentOutreach,
		BookingPct:        defaultBookingPct,
		ClosePct:          defaultClosePct,
		AvgCustomerValue:  defaultAvgCustomerValue,
		ProjectedOutreach: defaultProjectedOutreach,
		InklineInvestment: defaultInvestment,
	}
	s.cur.Recompute()
	s.state = StateDraft
}

// sanitizeCount coerces an outreach volume to a non-negative whole number.
func sanitizeCount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return math.Trunc(v)
}

// sanitizeAmount coerces a currency amount to a non-negative number.
func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// sanitizePercent maps a human-entered percentage in [0,100] to a fraction.
// Out-of-range values default to 0 rather than leaking into the engine.
func sanitizePercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
		return 0
	}
	return v / 100
}

// displayPercent converts a stored fraction back to the human scale,
// rounded to one decimal so an entered 8 reads back as 8.0.
func displayPercent(f float64) float64 {
	return math.Round(f*1000) / 10
}
