package auth

import (
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"

	"github.com/inklinehq/roi-backend/internal/users"
)

// FirebaseAuth validates Firebase ID tokens and stashes the verified uid
// and email in the request context.
func FirebaseAuth(authClient *fbauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "missing authorization token"})
			c.Abort()
			return
		}

		decoded, err := authClient.VerifyIDToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxFirebaseUID, decoded.UID)
		if email, ok := decoded.Claims["email"].(string); ok {
			c.Set(CtxEmail, email)
		}

		c.Next()
	}
}

// DevAuth trusts X-User-Id / X-User-Email headers instead of verifying
// tokens, falling back to "demo-user". Development and tests only.
func DevAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		c.Set(CtxFirebaseUID, uid)
		c.Set(CtxEmail, c.GetHeader("X-User-Email"))
		c.Next()
	}
}

// WithUser upserts the user row for the verified uid and stashes the
// database id and role. Runs after FirebaseAuth or DevAuth.
func WithUser(userRepo *users.Repo) gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := strings.TrimSpace(c.GetString(CtxFirebaseUID))
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
			c.Abort()
			return
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       c.GetString(CtxEmail),
			DisplayName: c.GetHeader("X-User-Name"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		role, err := userRepo.Role(c.Request.Context(), uid)
		if err != nil {
			role = users.RoleUser
		}

		c.Set(CtxUserDBID, uid)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// WithStaticUser maps the authenticated uid straight to the database id.
// Used when running without Postgres, where no users table exists. The role
// comes from the X-User-Role header, so it is only wired behind DevAuth.
func WithStaticUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		fuid := strings.TrimSpace(c.GetString(CtxFirebaseUID))
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "not authenticated"})
			c.Abort()
			return
		}

		role := users.RoleUser
		if c.GetHeader("X-User-Role") == users.RoleAdmin {
			role = users.RoleAdmin
		}

		c.Set(CtxUserDBID, fuid)
		c.Set(CtxRole, role)
		c.Next()
	}
}

// RequireAdmin rejects requests whose resolved role is not admin.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != users.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// extractToken pulls the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearer := c.GetHeader("Authorization")
	if len(bearer) > 7 && strings.HasPrefix(bearer, "Bearer ") {
		return bearer[7:]
	}
	return ""
}
