package bootstrap

import "github.com/gin-gonic/gin"

// SetGinMode silences gin's debug output when APP_ENV is production.
// Any other value keeps the default debug mode for local work.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}
