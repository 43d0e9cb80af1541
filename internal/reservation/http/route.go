package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, approverMiddleware gin.HandlerFunc) {
	group := g.Group("/reservations")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.DELETE("/:id", h.Cancel)
	}

	// === Approver Routes ===
	approver := group.Group("")
	approver.Use(approverMiddleware)
	{
		approver.PATCH("/:id/approve", h.Approve)
		approver.POST("/sweep", h.Sweep)
	}
}
