package http

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inklinehq/roi-backend/internal/auth"
	"github.com/inklinehq/roi-backend/internal/notify"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
	"github.com/inklinehq/roi-backend/internal/scenarios/session"
)

func (h *Handler) list(c *gin.Context) {
	userID := auth.UserDBID(c)
	items, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scenarios": items})
}

// create persists a scenario directly, bypassing the workspace. Non-editor
// clients (imports, API consumers) use this; the editing flow goes through
// /workspace/save.
func (h *Handler) create(c *gin.Context) {
	var form session.FormValues
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserDBID(c)
	s, err := h.store.Create(c.Request.Context(), userID, strings.TrimSpace(form.Name), session.NormalizeInputs(form))
	if err != nil {
		if h.metrics != nil {
			h.metrics.Saves.WithLabelValues("create", "error").Inc()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.Saves.WithLabelValues("create", "ok").Inc()
	}
	h.publish(c, userID, notify.Event{
		Type:       notify.EventScenarioCreated,
		ScenarioID: s.ID,
		Name:       s.Name,
	})
	c.JSON(http.StatusCreated, gin.H{"ok": true, "scenario": s})
}

func (h *Handler) update(c *gin.Context) {
	var form session.FormValues
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	userID := auth.UserDBID(c)
	s, err := h.store.Update(c.Request.Context(), userID, c.Param("public_id"), strings.TrimSpace(form.Name), session.NormalizeInputs(form))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.Saves.WithLabelValues("update", "ok").Inc()
	}
	h.publish(c, userID, notify.Event{
		Type:       notify.EventScenarioUpdated,
		ScenarioID: s.ID,
		Name:       s.Name,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true, "scenario": s})
}

func (h *Handler) remove(c *gin.Context) {
	userID := auth.UserDBID(c)
	id := c.Param("public_id")

	ok, err := h.store.Delete(c.Request.Context(), userID, id)
	if err != nil {
		if h.metrics != nil {
			h.metrics.Deletes.WithLabelValues("error").Inc()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "scenario not found"})
		return
	}
	if h.metrics != nil {
		h.metrics.Deletes.WithLabelValues("ok").Inc()
	}
	h.publish(c, userID, notify.Event{
		Type:       notify.EventScenarioDeleted,
		ScenarioID: id,
	})
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// preview runs the engine on human-scale inputs without touching the
// workspace or the store.
func (h *Handler) preview(c *gin.Context) {
	var form session.FormValues
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	d := engine.Compute(session.NormalizeInputs(form))
	c.JSON(http.StatusOK, gin.H{"ok": true, "derived": d})
}

func (h *Handler) workspace(c *gin.Context) {
	s := h.sessions.ForUser(auth.UserDBID(c))
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": s.View()})
}

func (h *Handler) newDraft(c *gin.Context) {
	s := h.sessions.ForUser(auth.UserDBID(c))
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": s.NewDraft()})
}

func (h *Handler) edit(c *gin.Context) {
	var patch session.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	s := h.sessions.ForUser(auth.UserDBID(c))
	v, err := s.Edit(patch)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.Edits.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": v})
}

func (h *Handler) save(c *gin.Context) {
	userID := auth.UserDBID(c)
	s := h.sessions.ForUser(userID)

	res, err := s.Save(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrSaveInFlight) {
			if h.metrics != nil {
				h.metrics.SaveConflicts.Inc()
			}
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
			return
		}
		if h.metrics != nil {
			h.metrics.Saves.WithLabelValues("save", "error").Inc()
		}
		h.publish(c, userID, notify.Event{
			Type:    notify.EventSaveFailed,
			Message: "Failed to save scenario",
		})
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
		return
	}

	if res.Unchanged {
		c.JSON(http.StatusOK, gin.H{"ok": true, "unchanged": true, "workspace": s.View()})
		return
	}

	kind := "update"
	status := http.StatusOK
	evType := notify.EventScenarioUpdated
	if res.Created {
		kind = "create"
		status = http.StatusCreated
		evType = notify.EventScenarioCreated
	}
	if h.metrics != nil {
		h.metrics.Saves.WithLabelValues(kind, "ok").Inc()
	}
	h.publish(c, userID, notify.Event{
		Type:       evType,
		ScenarioID: res.Scenario.ID,
		Name:       res.Scenario.Name,
	})

	c.JSON(status, gin.H{"ok": true, "scenario": res.Scenario, "workspace": s.View()})
}

func (h *Handler) selectScenario(c *gin.Context) {
	s := h.sessions.ForUser(auth.UserDBID(c))

	v, err := s.Select(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "workspace": v})
}

// deleteActive removes the working scenario and moves the selection to the
// most recently updated remaining one, or to nothing when none are left.
// Confirmation happens in the calling layer; this endpoint is unconditional.
func (h *Handler) deleteActive(c *gin.Context) {
	userID := auth.UserDBID(c)
	s := h.sessions.ForUser(userID)

	deleted := s.View().Scenario
	if err := s.Delete(c.Request.Context()); err != nil {
		if h.metrics != nil {
			h.metrics.Deletes.WithLabelValues("error").Inc()
		}
		c.JSON(statusFor(err), gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.Deletes.WithLabelValues("ok").Inc()
	}
	h.publish(c, userID, notify.Event{
		Type:       notify.EventScenarioDeleted,
		ScenarioID: deleted.ID,
		Name:       deleted.Name,
	})

	remaining, err := h.store.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if len(remaining) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "active": nil})
		return
	}

	v, err := s.Select(c.Request.Context(), remaining[0].ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "active": v})
}

// logout drops the server-side workspace when a login ends. Unsaved edits
// are discarded and the next request starts from a fresh draft.
func (h *Handler) logout(c *gin.Context) {
	id := auth.IdentityFrom(c)
	h.sessions.Drop(id.UserDBID)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) publish(c *gin.Context, userID string, ev notify.Event) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.Publish(c.Request.Context(), userID, ev); err != nil {
		log.Printf("notify publish failed: %v", err)
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSaveInFlight):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotPersisted), errors.Is(err, domain.ErrDeleted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
