package profile

import (
	"errors"
	"net/http"
	"strconv"

	"churrasco/internal/modules/storage"
	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	if public != nil {
		public.GET("/professionals/:id", h.GetPublic)
	}
	if protected != nil {
		protected.GET("/profile", h.GetMe)
		protected.PUT("/profile", h.UpdateMe)
		protected.POST("/profile/avatar", h.UploadAvatar)
	}
}

func (h *Handler) GetMe(c *gin.Context) {
	u, err := h.service.GetMe(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

// UpdateMe
// @Summary   Edit the caller's profile
// @Tags      Profile
// @Security  BearerAuth
// @Param     request body UpdateRequest true "name, phone, whatsapp, city, bio"
// @Success   200 {object} map[string]interface{}
// @Failure   400 {object} map[string]interface{}
// @Router    /profile [PUT]
func (h *Handler) UpdateMe(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	u, err := h.service.UpdateMe(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

func (h *Handler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadSize+(1<<20))
	fh, err := c.FormFile("avatar")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing avatar file")
		return
	}

	img, err := storage.ReadImage(fh)
	if err != nil {
		writeError(c, err)
		return
	}

	u, err := h.service.UploadAvatar(c.Request.Context(), c.GetInt64("user_id"), img)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": u})
}

// GetPublic
// @Summary   Public profile of a user, with rating and contact links for professionals
// @Tags      Profile
// @Param     id      path  int    true  "user id"
// @Param     message query string false "prefilled WhatsApp text"
// @Success   200 {object} map[string]interface{}
// @Router    /professionals/{id} [GET]
func (h *Handler) GetPublic(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid profile id")
		return
	}

	p, err := h.service.GetPublic(c.Request.Context(), id, c.Query("message"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": p})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Profile not found")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
