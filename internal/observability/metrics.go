// Package observability bundles the Prometheus collectors for the API and
// the reconciler worker.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gin-gonic/gin"
)

// Collector holds the service metrics.
type Collector struct {
	gatherer prometheus.Gatherer

	Saves          *prometheus.CounterVec
	SaveConflicts  prometheus.Counter
	Edits          prometheus.Counter
	Deletes        *prometheus.CounterVec
	ReconcileDrift prometheus.Counter
}

// NewCollector registers the metrics against reg, defaulting to the global
// registry when nil.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{
		gatherer: gatherer,
		Saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roi_scenario_saves_total",
			Help: "Scenario save dispatches, labeled by kind (create/update) and outcome.",
		}, []string{"kind", "outcome"}),
		SaveConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roi_scenario_save_conflicts_total",
			Help: "Saves rejected because another save was already in flight.",
		}),
		Edits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roi_workspace_edits_total",
			Help: "Workspace edits applied (each triggers a recompute).",
		}),
		Deletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roi_scenario_deletes_total",
			Help: "Scenario deletions, labeled by outcome.",
		}, []string{"outcome"}),
		ReconcileDrift: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roi_reconcile_drift_rows_total",
			Help: "Stored rows whose derived fields disagreed with the engine and were rewritten.",
		}),
	}

	reg.MustRegister(c.Saves, c.SaveConflicts, c.Edits, c.Deletes, c.ReconcileDrift)
	return c
}

// Handler exposes the registry on /metrics.
func (c *Collector) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
	return func(ctx *gin.Context) {
		h.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
