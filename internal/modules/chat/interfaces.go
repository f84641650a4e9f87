package chat

import (
	"context"
	"time"

	"churrasco/internal/domain"
)

type ChatRepository interface {
	CreateConversation(ctx context.Context, conv *domain.Conversation) error
	GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error)
	GetConversationByParticipants(ctx context.Context, clientID, professionalID int64) (*domain.Conversation, error)
	GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]domain.Conversation, error)
	UpdateLastMessageAt(ctx context.Context, conversationID int64, at time.Time) error
	CreateMessage(ctx context.Context, msg *domain.Message) error
	GetMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]domain.Message, error)
	LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]*domain.Message, error)
	MarkMessagesAsRead(ctx context.Context, conversationID, readerID int64) (int64, error)
	CountUnreadByConversation(ctx context.Context, userID int64) (map[int64]int, error)
	CountTotalUnread(ctx context.Context, userID int64) (int64, error)
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}
