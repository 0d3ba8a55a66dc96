package http

import "github.com/gin-gonic/gin"

// Register attaches the scenario and workspace routes to the group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/scenarios", h.list)
	rg.POST("/scenarios", h.create)
	rg.POST("/scenarios/preview", h.preview)
	rg.PUT("/scenarios/:public_id", h.update)
	rg.DELETE("/scenarios/:public_id", h.remove)

	rg.GET("/workspace", h.workspace)
	rg.POST("/workspace/draft", h.newDraft)
	rg.PATCH("/workspace", h.edit)
	rg.POST("/workspace/save", h.save)
	rg.POST("/workspace/select/:public_id", h.selectScenario)
	rg.DELETE("/workspace", h.deleteActive)

	rg.POST("/logout", h.logout)
}
