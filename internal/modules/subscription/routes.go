package subscription

import "github.com/gin-gonic/gin"

// RegisterPublicRoutes exposes the plan catalogue.
func RegisterPublicRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/subscriptions/plans", h.ListPlans)
}

// RegisterProfessionalRoutes expects JWT middleware on r. The role check
// happens in the service so clients get a 403 with a specific code.
func RegisterProfessionalRoutes(r *gin.RouterGroup, h *Handler) {
	sub := r.Group("/subscription")
	{
		sub.GET("", h.GetCurrent)
		sub.POST("", h.Subscribe)
		sub.POST("/confirm", h.Confirm)
		sub.POST("/cancel", h.Cancel)
	}
}
