package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys set by the auth middleware chain.
const (
	CtxFirebaseUID = "firebase_uid"
	CtxUserDBID    = "user_db_id"
	CtxEmail       = "email"
	CtxRole        = "role"
)

// Identity is the session context for one authenticated request: who the
// user is and what they may do. It is acquired when the token is verified
// and travels with the request instead of living in a global.
type Identity struct {
	FirebaseUID string
	UserDBID    string
	Email       string
	Role        string
}

// IdentityFrom assembles the Identity stashed by the middleware chain.
func IdentityFrom(c *gin.Context) Identity {
	return Identity{
		FirebaseUID: strings.TrimSpace(c.GetString(CtxFirebaseUID)),
		UserDBID:    strings.TrimSpace(c.GetString(CtxUserDBID)),
		Email:       c.GetString(CtxEmail),
		Role:        c.GetString(CtxRole),
	}
}

// UserDBID extracts the database user id set by WithUser.
func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}
