package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inklinehq/roi-backend/internal/scenarios/repository"
	"github.com/inklinehq/roi-backend/internal/users"
)

// ScenarioDirectory is the cross-owner view the admin surface needs.
// repository.PG satisfies it.
type ScenarioDirectory interface {
	ListAll(ctx context.Context) ([]repository.OwnedScenario, error)
	DeleteAny(ctx context.Context, id string) (bool, error)
}

// Mailer delivers invitation emails. Satisfied by mail.Mailer.
type Mailer interface {
	SendInvitation(ctx context.Context, email, role, inviteURL string) error
}

// RoleGranter assigns roles. Satisfied by users.Repo.
type RoleGranter interface {
	Grant(ctx context.Context, userDBID, role string) error
}

type Handler struct {
	directory ScenarioDirectory
	stats     *StatsRepo
	mailer    Mailer
	roles     RoleGranter
	inviteURL string
}

func NewHandler(directory ScenarioDirectory, stats *StatsRepo, mailer Mailer, roles RoleGranter, inviteURL string) *Handler {
	return &Handler{directory: directory, stats: stats, mailer: mailer, roles: roles, inviteURL: inviteURL}
}

// Register attaches admin routes. The group must already run RequireAdmin.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/scenarios", h.listScenarios)
	rg.DELETE("/scenarios/:public_id", h.deleteScenario)
	rg.GET("/stats", h.summary)
	rg.POST("/invitations", h.invite)
	rg.POST("/roles", h.grantRole)
}

func (h *Handler) listScenarios(c *gin.Context) {
	items, err := h.directory.ListAll(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "scenarios": items})
}

func (h *Handler) deleteScenario(c *gin.Context) {
	ok, err := h.directory.DeleteAny(c.Request.Context(), c.Param("public_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "scenario not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) summary(c *gin.Context) {
	s, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": s})
}

type inviteReq struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) invite(c *gin.Context) {
	var req inviteReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	role := req.Role
	if role == "" {
		role = users.RoleUser
	}
	if role != users.RoleAdmin && role != users.RoleUser {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown role"})
		return
	}

	if h.mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "mail delivery is not configured"})
		return
	}
	if err := h.mailer.SendInvitation(c.Request.Context(), strings.TrimSpace(req.Email), role, h.inviteURL); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": "failed to send invitation"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"ok": true})
}

type grantReq struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (h *Handler) grantRole(c *gin.Context) {
	var req grantReq
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if err := h.roles.Grant(c.Request.Context(), req.UserID, req.Role); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
