package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"churrasco/internal/domain"
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

// RegisterRoutes wires the public listing and the professional's CRUD.
// manage is expected to carry JWT and professional-role middleware.
func (h *Handler) RegisterRoutes(public, manage *gin.RouterGroup) {
	if public != nil {
		public.GET("/services", h.Search)
		public.GET("/services/:id", h.GetByID)
	}
	if manage != nil {
		manage.GET("/services/mine", h.ListMine)
		manage.POST("/services", h.Create)
		manage.PUT("/services/:id", h.Update)
		manage.DELETE("/services/:id", h.Delete)
		manage.POST("/services/:id/images", h.UploadImage)
	}
}

// Search
// @Summary   List services
// @Tags      Services
// @Param     q            query string false "free text over title, description, location and provider"
// @Param     category     query string false "tradicional | premium | gaucho | corporativo | festa"
// @Param     min_price    query number false "minimum price_from"
// @Param     max_price    query number false "maximum price_from"
// @Param     guests       query int    false "guest count the service must admit"
// @Param     min_duration query int    false "minimum hours"
// @Param     max_duration query int    false "maximum hours"
// @Param     min_rating   query number false "minimum average rating"
// @Success   200 {object} map[string]interface{}
// @Router    /services [GET]
func (h *Handler) Search(c *gin.Context) {
	f, err := ParseFilter(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	list, err := h.service.Search(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"services": list, "total": len(list)})
}

// ParseFilter reads the listing filter from the query string.
func ParseFilter(c *gin.Context) (Filter, error) {
	f := Filter{
		Query:    strings.TrimSpace(c.Query("q")),
		Category: domain.ServiceCategory(strings.ToLower(strings.TrimSpace(c.Query("category")))),
	}
	if f.Category != "" && !f.Category.Valid() {
		return f, ErrInvalidCategory
	}

	floats := map[string]*float64{"min_price": &f.MinPrice, "max_price": &f.MaxPrice, "min_rating": &f.MinRating}
	for key, dst := range floats {
		if raw := c.Query(key); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil || v < 0 {
				return f, errors.New("invalid " + key)
			}
			*dst = v
		}
	}

	ints := map[string]*int{"guests": &f.Guests, "min_duration": &f.MinDuration, "max_duration": &f.MaxDuration}
	for key, dst := range ints {
		if raw := c.Query(key); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 0 {
				return f, errors.New("invalid " + key)
			}
			*dst = v
		}
	}
	return f, nil
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	svc, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) ListMine(c *gin.Context) {
	list, err := h.service.ListMine(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"services": list})
}

func (h *Handler) Create(c *gin.Context) {
	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.CreateService(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func (h *Handler) Update(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	var req ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	svc, err := h.service.UpdateService(c.Request.Context(), c.GetInt64("user_id"), id, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"service": svc})
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteService(c.Request.Context(), c.GetInt64("user_id"), id); err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// UploadImage accepts one multipart "image" field.
func (h *Handler) UploadImage(c *gin.Context) {
	id, ok := serviceID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadSize+(1<<20))
	fh, err := c.FormFile("image")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing image file")
		return
	}

	img, err := storage.ReadImage(fh)
	if err != nil {
		writeError(c, err)
		return
	}

	svc, err := h.service.AddImage(c.Request.Context(), c.GetInt64("user_id"), id, img)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"service": svc})
}

func serviceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	var fields FieldErrors
	if errors.As(err, &fields) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid service data", fields)
		return
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidCategory):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, storage.ErrUnsupportedType), errors.Is(err, storage.ErrTooLarge), errors.Is(err, storage.ErrEmptyFile):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Service not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own services")
	case errors.Is(err, storage.ErrObjectExists):
		response.Error(c, http.StatusConflict, "CONFLICT", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
