package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inklinehq/roi-backend/internal/auth"
	"github.com/inklinehq/roi-backend/internal/notify"
	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/engine"
	"github.com/inklinehq/roi-backend/internal/scenarios/session"
)

type memStore struct {
	mu      sync.Mutex
	seq     int
	records map[string]domain.Scenario
	order   []string
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]domain.Scenario)}
}

func (m *memStore) Create(ctx context.Context, ownerID, name string, in engine.Inputs) (*domain.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rec := domain.Scenario{ID: fmt.Sprintf("scn-%05d", m.seq), OwnerID: ownerID, Name: name}
	rec.SetInputs(in)
	rec.Recompute()
	rec.CreatedAt = time.Now().UTC()
	rec.UpdatedAt = rec.CreatedAt
	m.records[rec.ID] = rec
	m.order = append([]string{rec.ID}, m.order...)
	return &rec, nil
}

func (m *memStore) Update(ctx context.Context, ownerID, id, name string, in engine.Inputs) (*domain.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	rec.Name = name
	rec.SetInputs(in)
	rec.Recompute()
	rec.UpdatedAt = time.Now().UTC()
	m.records[id] = rec
	return &rec, nil
}

func (m *memStore) Get(ctx context.Context, ownerID, id string) (*domain.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *memStore) List(ctx context.Context, ownerID string) ([]domain.Scenario, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Scenario, 0, len(m.order))
	for _, id := range m.order {
		if rec, ok := m.records[id]; ok && rec.OwnerID == ownerID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok || rec.OwnerID != ownerID {
		return false, nil
	}
	delete(m.records, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

type capturedEvents struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *capturedEvents) Publish(ctx context.Context, userID string, ev notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
	return nil
}

func setupRouter(t *testing.T) (*gin.Engine, *memStore, *capturedEvents) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemStore()
	events := &capturedEvents{}
	handler := New(store, session.NewManager(store), events, nil)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(auth.CtxUserDBID, "user-1")
		c.Next()
	})
	handler.Register(api)
	return r, store, events
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestWorkspaceStartsAsDraft(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodGet, "/api/v1/workspace", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Workspace session.View `json:"workspace"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, session.StateDraft, resp.Workspace.State)
	assert.Equal(t, 8.0, resp.Workspace.Form.BookingPct)
}

func TestEditThenSaveCreates(t *testing.T) {
	r, store, events := setupRouter(t)

	rr := doJSON(t, r, http.MethodPatch, "/api/v1/workspace", gin.H{"name": "Q3 push", "projected_outreach": 4000})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Scenario  domain.Scenario `json:"scenario"`
		Workspace session.View    `json:"workspace"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Scenario.ID)
	assert.Equal(t, "Q3 push", resp.Scenario.Name)
	assert.Equal(t, 320.0, resp.Scenario.ProjectedLeads)
	assert.Equal(t, session.StateClean, resp.Workspace.State)

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.events, 1)
	assert.Equal(t, notify.EventScenarioCreated, events.events[0].Type)
}

func TestSecondSaveIsUpdate(t *testing.T) {
	r, store, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = doJSON(t, r, http.MethodPatch, "/api/v1/workspace", gin.H{"inkline_investment": 30000})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 30000.0, list[0].InklineInvestment)
}

func TestCleanSaveIsNoOp(t *testing.T) {
	r, _, _ := setupRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	rr := doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"unchanged":true`)
}

func TestDeleteOnlyScenarioClearsSelection(t *testing.T) {
	r, _, events := setupRouter(t)

	doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	rr := doJSON(t, r, http.MethodDelete, "/api/v1/workspace", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		OK     bool          `json:"ok"`
		Active *session.View `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Nil(t, resp.Active)

	events.mu.Lock()
	defer events.mu.Unlock()
	assert.Equal(t, notify.EventScenarioDeleted, events.events[len(events.events)-1].Type)
}

func TestDeleteSelectsNextMostRecent(t *testing.T) {
	r, _, _ := setupRouter(t)

	// first scenario
	doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)
	// second scenario becomes the active one
	doJSON(t, r, http.MethodPost, "/api/v1/workspace/draft", nil)
	doJSON(t, r, http.MethodPatch, "/api/v1/workspace", gin.H{"name": "Second"})
	doJSON(t, r, http.MethodPost, "/api/v1/workspace/save", nil)

	rr := doJSON(t, r, http.MethodDelete, "/api/v1/workspace", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Active *session.View `json:"active"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Active)
	assert.Equal(t, session.StateClean, resp.Active.State)
	assert.Equal(t, "New Scenario", resp.Active.Form.Name)
}

func TestDeleteDraftRejected(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodDelete, "/api/v1/workspace", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPreviewComputesWithoutPersisting(t *testing.T) {
	r, store, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/v1/scenarios/preview", gin.H{
		"current_outreach":   1000,
		"booking_pct":        8,
		"close_pct":          30,
		"avg_customer_value": 8000,
		"projected_outreach": 2000,
		"inkline_investment": 24000,
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Derived engine.Derived `json:"derived"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 80.0, resp.Derived.CurrentLeads)
	require.NotNil(t, resp.Derived.ROI)
	assert.Equal(t, 7.0, *resp.Derived.ROI)

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSelectUnknownScenarioIs404(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/v1/workspace/select/scn-nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDirectCreateNormalizesPercents(t *testing.T) {
	r, store, events := setupRouter(t)

	rr := doJSON(t, r, http.MethodPost, "/api/v1/scenarios", gin.H{
		"name":               "Imported",
		"current_outreach":   1000,
		"booking_pct":        8,
		"close_pct":          30,
		"avg_customer_value": 8000,
		"projected_outreach": 2000,
		"inkline_investment": 24000,
	})
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Scenario domain.Scenario `json:"scenario"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Imported", resp.Scenario.Name)
	assert.InDelta(t, 0.08, resp.Scenario.BookingPct, 1e-12)
	require.NotNil(t, resp.Scenario.ROI)
	assert.InDelta(t, 7.0, *resp.Scenario.ROI, 1e-9)

	list, err := store.List(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	events.mu.Lock()
	defer events.mu.Unlock()
	require.Len(t, events.events, 1)
	assert.Equal(t, notify.EventScenarioCreated, events.events[0].Type)
}

func TestDirectUpdateUnknownIs404(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodPut, "/api/v1/scenarios/scn-nope", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDirectDelete(t *testing.T) {
	r, store, _ := setupRouter(t)

	created, err := store.Create(context.Background(), "user-1", "Doomed", engine.Inputs{})
	require.NoError(t, err)

	rr := doJSON(t, r, http.MethodDelete, "/api/v1/scenarios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodDelete, "/api/v1/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestLogoutDiscardsWorkspace(t *testing.T) {
	r, _, _ := setupRouter(t)

	rr := doJSON(t, r, http.MethodPatch, "/api/v1/workspace", gin.H{"name": "Scratch", "booking_pct": 12})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodPost, "/api/v1/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, r, http.MethodGet, "/api/v1/workspace", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Workspace session.View `json:"workspace"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, session.StateDraft, resp.Workspace.State)
	assert.Equal(t, "New Scenario", resp.Workspace.Scenario.Name)
	assert.Equal(t, 8.0, resp.Workspace.Form.BookingPct)
}
