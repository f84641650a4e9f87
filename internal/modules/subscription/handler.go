package subscription

import (
	"errors"
	"net/http"

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

// ListPlans godoc
// @Summary List subscription plans
// @Tags Subscriptions
// @Produce json
// @Success 200 {array} Plan
// @Router /subscriptions/plans [get]
func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// GetCurrent godoc
// @Summary Current subscription of the authenticated professional
// @Tags Subscriptions
// @Security BearerAuth
// @Produce json
// @Success 200 {object} CurrentView
// @Router /subscription [get]
func (h *Handler) GetCurrent(c *gin.Context) {
	view, err := h.service.GetCurrent(c.Request.Context(), c.GetInt64("user_id"), callerRole(c))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Subscribe godoc
// @Summary Pay for a plan and activate it
// @Tags Subscriptions
// @Security BearerAuth
// @Accept json
// @Param body body SubscribeRequest true "plan and payment form"
// @Success 201 {object} SubscribeResult
// @Router /subscription [post]
func (h *Handler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.Subscribe(c.Request.Context(), c.GetInt64("user_id"), callerRole(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// Confirm godoc
// @Summary Activate a pending subscription after the app confirmed payment
// @Tags Subscriptions
// @Security BearerAuth
// @Accept json
// @Param body body ConfirmRequest true "pending subscription id"
// @Success 200 {object} Subscription
// @Router /subscription/confirm [post]
func (h *Handler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	sub, err := h.service.Confirm(c.Request.Context(), c.GetInt64("user_id"), callerRole(c), req.SubscriptionID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub})
}

func (h *Handler) Cancel(c *gin.Context) {
	var req CancelRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
			return
		}
	}

	sub, err := h.service.Cancel(c.Request.Context(), c.GetInt64("user_id"), callerRole(c), req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"subscription": sub})
}

func callerRole(c *gin.Context) domain.UserRole {
	return domain.UserRole(c.GetString("role"))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidPayment):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrPaymentDeclined):
		response.Error(c, http.StatusPaymentRequired, "PAYMENT_DECLINED", err.Error())
	case errors.Is(err, ErrPaymentIncomplete):
		response.Error(c, http.StatusConflict, "PAYMENT_PENDING", err.Error())
	case errors.Is(err, ErrNotProfessional):
		response.Error(c, http.StatusForbidden, "NOT_PROFESSIONAL", err.Error())
	case errors.Is(err, ErrPlanNotFound), errors.Is(err, ErrSubscriptionNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
