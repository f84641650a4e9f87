package auth

import (
	"errors"
	"net/http"

	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the public auth endpoints on public and the
// session-bound ones on protected (JWT middleware expected).
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		g := public.Group("/auth")
		g.POST("/signup", h.SignUp)
		g.POST("/signin", h.SignIn)
		g.POST("/password/forgot", h.ForgotPassword)
		g.POST("/password/reset", h.ResetPassword)
	}
	if protected != nil {
		g := protected.Group("/auth")
		g.GET("/session", h.Session)
		g.POST("/signout", h.SignOut)
		g.PUT("/password", h.UpdatePassword)
		g.DELETE("/account", h.DeleteAccount)
	}
}

// SignUp
// @Summary   Create an account
// @Tags      Auth
// @Param     request body SignUpRequest true "email, password, name, role (client|professional), phone"
// @Success   201 {object} map[string]interface{}
// @Failure   400 {object} map[string]interface{}
// @Failure   409 {object} map[string]interface{}
// @Router    /auth/signup [POST]
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.SignUp(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, res)
}

// SignIn
// @Summary   Sign in with email and password
// @Tags      Auth
// @Param     request body SignInRequest true "credentials"
// @Success   200 {object} map[string]interface{}
// @Failure   401 {object} map[string]interface{}
// @Router    /auth/signin [POST]
func (h *Handler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	res, err := h.service.SignIn(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Session(c *gin.Context) {
	user, err := h.service.Session(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func (h *Handler) SignOut(c *gin.Context) {
	err := h.service.SignOut(c.Request.Context(), c.GetInt64("user_id"), c.GetString("jti"), c.GetTime("token_exp"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"signed_out": true})
}

func (h *Handler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.ResetPassword(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"password_updated": true})
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	var req UpdatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	if err := h.service.UpdatePassword(c.Request.Context(), c.GetInt64("user_id"), req); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"password_updated": true})
}

// DeleteAccount
// @Summary   Delete the caller's account and published services
// @Tags      Auth
// @Security  BearerAuth
// @Success   200 {object} map[string]interface{}
// @Router    /auth/account [DELETE]
func (h *Handler) DeleteAccount(c *gin.Context) {
	err := h.service.DeleteAccount(c.Request.Context(), c.GetInt64("user_id"), c.GetString("jti"), c.GetTime("token_exp"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrWeakPassword):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidResetToken):
		response.Error(c, http.StatusBadRequest, "INVALID_RESET_TOKEN", err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, ErrUnauthorized):
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
	case errors.Is(err, ErrUserNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, ErrEmailAlreadyExists):
		response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "Email already registered")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}
