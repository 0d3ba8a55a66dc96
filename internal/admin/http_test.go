package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inklinehq/roi-backend/internal/scenarios/domain"
	"github.com/inklinehq/roi-backend/internal/scenarios/repository"
)

type fakeDirectory struct {
	items   []repository.OwnedScenario
	deleted []string
	missing bool
	err     error
}

func (f *fakeDirectory) ListAll(context.Context) ([]repository.OwnedScenario, error) {
	return f.items, f.err
}

func (f *fakeDirectory) DeleteAny(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if f.missing {
		return false, nil
	}
	f.deleted = append(f.deleted, id)
	return true, nil
}

type fakeMailer struct {
	sent []string
	err  error
}

func (f *fakeMailer) SendInvitation(_ context.Context, email, _, _ string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email)
	return nil
}

type fakeRoles struct {
	granted map[string]string
}

func (f *fakeRoles) Grant(_ context.Context, userDBID, role string) error {
	if role != "admin" && role != "user" {
		return errors.New("unknown role")
	}
	if f.granted == nil {
		f.granted = map[string]string{}
	}
	f.granted[userDBID] = role
	return nil
}

func setupAdminRouter(t *testing.T, dir *fakeDirectory, mailer *fakeMailer) (*gin.Engine, *fakeRoles) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	roles := &fakeRoles{}
	h := NewHandler(dir, NewStatsRepo(db), mailer, roles, "https://app.inkline.io/join")
	r := gin.New()
	h.Register(r.Group("/admin"))
	return r, roles
}

func TestListScenariosIncludesOwnerEmail(t *testing.T) {
	dir := &fakeDirectory{items: []repository.OwnedScenario{
		{Scenario: domain.Scenario{ID: "scn-11111-2222", Name: "Q3 Push"}, OwnerEmail: "ops@inkline.io"},
	}}
	r, _ := setupAdminRouter(t, dir, &fakeMailer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin/scenarios", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		OK        bool `json:"ok"`
		Scenarios []struct {
			ID         string `json:"id"`
			OwnerEmail string `json:"owner_email"`
		} `json:"scenarios"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Scenarios, 1)
	assert.Equal(t, "scn-11111-2222", body.Scenarios[0].ID)
	assert.Equal(t, "ops@inkline.io", body.Scenarios[0].OwnerEmail)
}

func TestDeleteAnyScenario(t *testing.T) {
	dir := &fakeDirectory{}
	r, _ := setupAdminRouter(t, dir, &fakeMailer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/admin/scenarios/scn-11111-2222", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"scn-11111-2222"}, dir.deleted)
}

func TestDeleteUnknownScenarioReturns404(t *testing.T) {
	dir := &fakeDirectory{missing: true}
	r, _ := setupAdminRouter(t, dir, &fakeMailer{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/admin/scenarios/scn-00000-0000", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvitationSendsEmail(t *testing.T) {
	mailer := &fakeMailer{}
	r, _ := setupAdminRouter(t, &fakeDirectory{}, mailer)

	payload, _ := json.Marshal(map[string]string{"email": "new.hire@example.com", "role": "user"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/invitations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, []string{"new.hire@example.com"}, mailer.sent)
}

func TestInvitationRejectsUnknownRole(t *testing.T) {
	mailer := &fakeMailer{}
	r, _ := setupAdminRouter(t, &fakeDirectory{}, mailer)

	payload, _ := json.Marshal(map[string]string{"email": "x@example.com", "role": "superuser"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/invitations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mailer.sent)
}

func TestInvitationMailerFailureReturns502(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("ses throttled")}
	r, _ := setupAdminRouter(t, &fakeDirectory{}, mailer)

	payload, _ := json.Marshal(map[string]string{"email": "x@example.com"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/invitations", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestGrantRole(t *testing.T) {
	r, roles := setupAdminRouter(t, &fakeDirectory{}, &fakeMailer{})

	payload, _ := json.Marshal(map[string]string{"user_id": "u-1", "role": "admin"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/roles", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", roles.granted["u-1"])
}

func TestGrantRoleRequiresUserID(t *testing.T) {
	r, _ := setupAdminRouter(t, &fakeDirectory{}, &fakeMailer{})

	payload, _ := json.Marshal(map[string]string{"role": "admin"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/admin/roles", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
