package chat

import (
	"errors"
	"net/http"
	"strconv"

	"churrasco/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers chat routes under the protected group.
// Base path is /api/v1/chat
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	chatGroup := rg.Group("/chat")
	{
		chatGroup.POST("/conversations", h.StartConversation)
		chatGroup.GET("/conversations", h.ListConversations)

		chatGroup.GET("/conversations/:id/messages", h.GetMessages)
		chatGroup.POST("/conversations/:id/messages", h.SendMessage)
		chatGroup.POST("/conversations/:id/read", h.MarkAsRead)

		chatGroup.GET("/unread", h.Unread)
	}
}

// StartConversation opens (or returns) the thread with another user.
//
// @Summary Start a conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartConversationRequest true "recipient and optional first message"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /chat/conversations [post]
func (h *Handler) StartConversation(c *gin.Context) {
	userID := c.GetInt64("user_id")

	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	conv, initialMsg, err := h.service.StartConversation(c.Request.Context(), userID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	out := gin.H{"conversation": conv}
	if initialMsg != nil {
		out["initial_message"] = initialMsg
	}
	response.Success(c, http.StatusCreated, out)
}

func (h *Handler) ListConversations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	convs, err := h.service.ListConversations(c.Request.Context(), c.GetInt64("user_id"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"conversations": convs})
}

func (h *Handler) GetMessages(c *gin.Context) {
	convID, ok := conversationID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	before, _ := strconv.ParseInt(c.Query("before_id"), 10, 64)

	page, err := h.service.GetMessages(c.Request.Context(), c.GetInt64("user_id"), convID, limit, before)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, page)
}

func (h *Handler) SendMessage(c *gin.Context) {
	convID, ok := conversationID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message content is required")
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), c.GetInt64("user_id"), convID, req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) MarkAsRead(c *gin.Context) {
	convID, ok := conversationID(c)
	if !ok {
		return
	}

	marked, err := h.service.MarkAsRead(c.Request.Context(), c.GetInt64("user_id"), convID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"marked": marked})
}

func (h *Handler) Unread(c *gin.Context) {
	counts, err := h.service.UnreadTotal(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, counts)
}

func conversationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid conversation id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrContentTooLong), errors.Is(err, ErrInvalidParticipants):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrRecipientNotFound), errors.Is(err, ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotParticipant):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal error")
	}
}
