package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, approverMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	// === Approver Routes (master data writes) ===
	approver := group.Group("")
	approver.Use(approverMiddleware)
	{
		approver.POST("", h.Create)
		approver.PATCH("/:id", h.Update)
		approver.DELETE("/:id", h.Delete)
	}
}
