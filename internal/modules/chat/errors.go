package chat

import "errors"

var (
	ErrNotParticipant       = errors.New("you are not a participant of this conversation")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrEmptyContent         = errors.New("message content cannot be empty")
	ErrContentTooLong       = errors.New("message content is too long")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrInvalidParticipants  = errors.New("a conversation needs one client and one professional")
)
