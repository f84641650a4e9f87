package domain

import "time"

// Conversation is the single thread between one client and one professional.
type Conversation struct {
	ID             int64     `json:"id" gorm:"primaryKey"`
	ClientID       int64     `json:"client_id" gorm:"not null;uniqueIndex:idx_conversation_pair"`
	ProfessionalID int64     `json:"professional_id" gorm:"not null;uniqueIndex:idx_conversation_pair;index"`
	LastMessageAt  time.Time `json:"last_message_at"`
	CreatedAt      time.Time `json:"created_at"`

	// Filled by the chat service, never stored.
	OtherUser   *User    `json:"other_user,omitempty" gorm:"-"`
	LastMessage *Message `json:"last_message,omitempty" gorm:"-"`
	UnreadCount int      `json:"unread_count" gorm:"-"`
}

func (Conversation) TableName() string {
	return "conversations"
}

func (c *Conversation) IsParticipant(userID int64) bool {
	return c.ClientID == userID || c.ProfessionalID == userID
}

// OtherParticipant returns the id of the user on the other side of the thread.
func (c *Conversation) OtherParticipant(userID int64) int64 {
	if c.ClientID == userID {
		return c.ProfessionalID
	}
	return c.ClientID
}

type Message struct {
	ID             int64      `json:"id" gorm:"primaryKey"`
	ConversationID int64      `json:"conversation_id" gorm:"not null;index"`
	SenderID       int64      `json:"sender_id" gorm:"not null"`
	Content        string     `json:"content" gorm:"type:text;not null"`
	IsRead         bool       `json:"is_read" gorm:"not null;default:false"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at" gorm:"index"`
}

func (Message) TableName() string {
	return "messages"
}
