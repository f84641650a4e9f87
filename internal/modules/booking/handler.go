package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.ListMine)
	rg.GET("/bookings/:id", h.GetByID)
	rg.POST("/bookings/:id/accept", h.Accept)
	rg.POST("/bookings/:id/reject", h.Reject)
	rg.POST("/bookings/:id/complete", h.Complete)
	rg.POST("/bookings/:id/cancel", h.Cancel)
	rg.GET("/bookings/:id/review-status", h.ReviewStatus)
}

// CreateBooking
// @Summary   Request a booking for a service
// @Tags      Bookings
// @Security  BearerAuth
// @Param     request body CreateBookingRequest true "service, date (YYYY-MM-DD), time (HH:MM), guests, location"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]interface{}
// @Failure   404 {object} map[string]interface{}
// @Router    /bookings [POST]
func (h *Handler) CreateBooking(c *gin.Context) {
	if domain.UserRole(c.GetString("role")) != domain.RoleClient {
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Only clients can request bookings")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"booking": b})
}

func (h *Handler) ListMine(c *gin.Context) {
	filter := ListFilter{Status: domain.BookingStatus(c.Query("status"))}
	role := domain.UserRole(c.GetString("role"))

	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"), role, filter)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"bookings": list})
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) Accept(c *gin.Context)   { h.changeStatus(c, h.service.Accept) }
func (h *Handler) Reject(c *gin.Context)   { h.changeStatus(c, h.service.Reject) }
func (h *Handler) Complete(c *gin.Context) { h.changeStatus(c, h.service.Complete) }
func (h *Handler) Cancel(c *gin.Context)   { h.changeStatus(c, h.service.Cancel) }

type statusChange func(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)

func (h *Handler) changeStatus(c *gin.Context, change statusChange) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := change(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": b})
}

func (h *Handler) ReviewStatus(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	status, err := h.service.ReviewStatus(c.Request.Context(), c.GetInt64("user_id"), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, status)
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid booking data")
	case errors.Is(err, ErrDateInPast):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Event date cannot be in the past")
	case errors.Is(err, ErrCapacityExceeded):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Guest count exceeds the service capacity")
	case errors.Is(err, ErrServiceNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case errors.Is(err, ErrInvalidStatusTransition):
		response.Error(c, http.StatusConflict, "INVALID_STATUS_TRANSITION", "Booking cannot move to that status")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
