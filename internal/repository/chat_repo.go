package repository

import (
	"context"
	"errors"
	"time"

	"churrasco/internal/domain"

	"gorm.io/gorm"
)

type ChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{db: db}
}

// CreateConversation inserts a new thread. The (client_id, professional_id)
// unique index rejects a second thread for the same pair.
func (r *ChatRepository) CreateConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.LastMessageAt.IsZero() {
		conv.LastMessageAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *ChatRepository) GetConversationByID(ctx context.Context, id int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := r.db.WithContext(ctx).First(&conv, id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// GetConversationByParticipants returns nil, nil when the pair has no thread yet.
func (r *ChatRepository) GetConversationByParticipants(ctx context.Context, clientID, professionalID int64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND professional_id = ?", clientID, professionalID).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// GetUserConversations lists threads where the user is either side, most
// recent activity first.
func (r *ChatRepository) GetUserConversations(ctx context.Context, userID int64, limit, offset int) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	err := r.db.WithContext(ctx).
		Where("client_id = ? OR professional_id = ?", userID, userID).
		Order("last_message_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&convs).Error
	return convs, err
}

func (r *ChatRepository) UpdateLastMessageAt(ctx context.Context, conversationID int64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ?", conversationID).
		Update("last_message_at", at).Error
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *domain.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// GetMessages returns up to limit messages of a conversation in ascending
// creation order. beforeID pages backwards through older messages.
func (r *ChatRepository) GetMessages(ctx context.Context, conversationID int64, limit int, beforeID int64) ([]domain.Message, error) {
	query := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var messages []domain.Message
	err := query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// LastMessages returns the newest message of each conversation.
func (r *ChatRepository) LastMessages(ctx context.Context, conversationIDs []int64) (map[int64]*domain.Message, error) {
	out := make(map[int64]*domain.Message, len(conversationIDs))
	if len(conversationIDs) == 0 {
		return out, nil
	}

	latest := r.db.Model(&domain.Message{}).
		Select("MAX(id)").
		Where("conversation_id IN ?", conversationIDs).
		Group("conversation_id")

	var msgs []domain.Message
	if err := r.db.WithContext(ctx).Where("id IN (?)", latest).Find(&msgs).Error; err != nil {
		return nil, err
	}
	for i := range msgs {
		out[msgs[i].ConversationID] = &msgs[i]
	}
	return out, nil
}

// MarkMessagesAsRead flags the other party's unread messages as read and
// returns how many rows changed. The reader's own messages are untouched.
func (r *ChatRepository) MarkMessagesAsRead(ctx context.Context, conversationID, readerID int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id = ?", conversationID).
		Where("sender_id <> ?", readerID).
		Where("is_read = ?", false).
		Updates(map[string]interface{}{
			"is_read": true,
			"read_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

// CountUnreadByConversation returns per-conversation unread counts for the
// viewer in one grouped query.
func (r *ChatRepository) CountUnreadByConversation(ctx context.Context, userID int64) (map[int64]int, error) {
	type row struct {
		ConversationID int64 `gorm:"column:conversation_id"`
		Unread         int   `gorm:"column:unread"`
	}

	var rows []row
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("conversation_id, COUNT(*) AS unread").
		Where("conversation_id IN (?)", r.participantConversations(userID)).
		Where("sender_id <> ?", userID).
		Where("is_read = ?", false).
		Group("conversation_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make(map[int64]int, len(rows))
	for _, rw := range rows {
		out[rw.ConversationID] = rw.Unread
	}
	return out, nil
}

// CountTotalUnread counts unread messages across all of the user's conversations.
func (r *ChatRepository) CountTotalUnread(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("conversation_id IN (?)", r.participantConversations(userID)).
		Where("sender_id <> ?", userID).
		Where("is_read = ?", false).
		Count(&count).Error
	return count, err
}

func (r *ChatRepository) participantConversations(userID int64) *gorm.DB {
	return r.db.Model(&domain.Conversation{}).
		Select("id").
		Where("client_id = ? OR professional_id = ?", userID, userID)
}
