// Package worker runs the nightly derived-column reconciler. Stored rows are
// recomputed from their inputs and rewritten when they disagree with the
// engine, which only happens after a formula change or a manual DB edit.
package worker

import (
	"context"
	"log"
	"math"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/inklinehq/roi-backend/internal/observability"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
)

// RowSource is the slice of the repository the reconciler needs.
// repository.PG satisfies it.
type RowSource interface {
	ListAllForReconcile(ctx context.Context) ([]domain.Scenario, error)
	UpdateDerived(ctx context.Context, id string, d engine.Derived) error
}

type Reconciler struct {
	rows    RowSource
	metrics *observability.Collector
}

func NewReconciler(rows RowSource, metrics *observability.Collector) *Reconciler {
	return &Reconciler{rows: rows, metrics: metrics}
}

// Run does one full pass and returns how many rows were rewritten.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	scenarios, err := r.rows.ListAllForReconcile(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for i := range scenarios {
		s := &scenarios[i]
		want := engine.Compute(s.Inputs())
		if derivedMatches(s, want) {
			continue
		}
		if err := r.rows.UpdateDerived(ctx, s.ID, want); err != nil {
			log.Printf("reconcile: rewrite %s failed: %v", s.ID, err)
			continue
		}
		if r.metrics != nil {
			r.metrics.ReconcileDrift.Inc()
		}
		fixed++
	}
	return fixed, nil
}

// Start schedules a nightly pass at 12:00AM and returns the cron handle.
func (r *Reconciler) Start() *cron.Cron {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc("0 0 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		start := time.Now()
		fixed, err := r.Run(ctx)
		if err != nil {
			log.Printf("reconcile: pass failed: %v", err)
			return
		}
		log.Printf("reconcile: pass done, %d rows rewritten in %s", fixed, time.Since(start))
	})
	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return c
	}

	log.Println("Cron scheduler started (reconciling nightly at 12:00AM)")
	c.Start()
	return c
}

const driftTolerance = 1e-9

func derivedMatches(s *domain.Scenario, want engine.Derived) bool {
	return closeTo(s.CurrentLeads, want.CurrentLeads) &&
		closeTo(s.CurrentCustomers, want.CurrentCustomers) &&
		closeTo(s.CurrentRevenue, want.CurrentRevenue) &&
		closeTo(s.ProjectedLeads, want.ProjectedLeads) &&
		closeTo(s.ProjectedCustomers, want.ProjectedCustomers) &&
		closeTo(s.ProjectedRevenue, want.ProjectedRevenue) &&
		closeTo(s.IncreaseLeads, want.IncreaseLeads) &&
		closeTo(s.IncreaseRevenue, want.IncreaseRevenue) &&
		ptrCloseTo(s.LeadsNeeded, want.LeadsNeeded) &&
		ptrCloseTo(s.OutreachNeeded, want.OutreachNeeded) &&
		ptrCloseTo(s.ROI, want.ROI)
}

func closeTo(a, b float64) bool {
	return math.Abs(a-b) <= driftTolerance
}

func ptrCloseTo(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return closeTo(*a, *b)
}
