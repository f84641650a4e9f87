package review

import (
	"net/http"
	"strconv"

	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/professionals/:id/reviews", h.ListByProfessional)
	}
	if protected != nil {
		protected.POST("/reviews", h.Create)
	}
}

// Create
// @Summary   Review a completed booking
// @Tags      Reviews
// @Security  BearerAuth
// @Param     request body CreateReviewRequest true "booking_id, rating (1-5), comment"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]interface{}
// @Failure   403 {object} map[string]interface{}
// @Failure   409 {object} map[string]interface{}
// @Router    /reviews [POST]
func (h *Handler) Create(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	userID := c.GetInt64("user_id")
	if userID == 0 {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	rv, err := h.svc.Create(c.Request.Context(), userID, req)
	if err != nil {
		switch err {
		case ErrInvalidRequest:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input")
		case ErrInvalidRating:
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be between 1 and 5")
		case ErrNotFound:
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case ErrForbidden:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only the booking's client can review it")
		case ErrReviewNotAllowed:
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can review only after a completed booking")
		case ErrAlreadyReviewed:
			response.Error(c, http.StatusConflict, "ALREADY_REVIEWED", "This booking was already reviewed")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"review": rv})
}

// ListByProfessional returns the newest reviews and the overall summary.
func (h *Handler) ListByProfessional(c *gin.Context) {
	professionalID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || professionalID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid professional ID")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.svc.ListByProfessional(c.Request.Context(), professionalID, limit)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
		return
	}
	summary, err := h.svc.GetSummary(c.Request.Context(), professionalID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"reviews": items, "rating": summary})
}
