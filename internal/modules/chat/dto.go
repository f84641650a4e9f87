package chat

import "churrasco/internal/domain"

const (
	MaxMessageLength = 4000

	defaultConversationLimit = 20
	defaultMessageLimit      = 50
	maxPageSize              = 100
)

type StartConversationRequest struct {
	RecipientID    int64  `json:"recipient_id" binding:"required"`
	InitialMessage string `json:"initial_message,omitempty"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// UnreadCounts is the payload of the unread_counts realtime event and of
// GET /chat/unread.
type UnreadCounts struct {
	UserID         int64         `json:"user_id"`
	Total          int           `json:"total"`
	ByConversation map[int64]int `json:"by_conversation"`
}

type MessagesPage struct {
	Messages []domain.Message `json:"messages"`
	HasMore  bool             `json:"has_more"`
}

type ReadReceipt struct {
	ConversationID int64 `json:"conversation_id"`
	ReaderID       int64 `json:"reader_id"`
	Marked         int64 `json:"marked"`
}
