package chat

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/realtime"

	"go.uber.org/zap"
)

type Service struct {
	chatRepo ChatRepository
	userRepo UserRepository
	events   realtime.Publisher
	log      *zap.Logger
}

func NewService(chatRepo ChatRepository, userRepo UserRepository, events realtime.Publisher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		chatRepo: chatRepo,
		userRepo: userRepo,
		events:   events,
		log:      log,
	}
}

// StartConversation returns the thread between the caller and the recipient,
// creating it on first contact. One side must be a client and the other a
// professional.
func (s *Service) StartConversation(ctx context.Context, senderID int64, req StartConversationRequest) (*domain.Conversation, *domain.Message, error) {
	if senderID == req.RecipientID {
		return nil, nil, ErrInvalidParticipants
	}

	sender, err := s.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sender: %w", err)
	}
	recipient, err := s.userRepo.GetByID(ctx, req.RecipientID)
	if err != nil || recipient == nil {
		if err == nil || dberr.IsNotFound(err) {
			return nil, nil, ErrRecipientNotFound
		}
		return nil, nil, err
	}
	if sender.Role == recipient.Role {
		return nil, nil, ErrInvalidParticipants
	}

	clientID, professionalID := sender.ID, recipient.ID
	if sender.IsProfessional() {
		clientID, professionalID = recipient.ID, sender.ID
	}

	conv, err := s.getOrCreate(ctx, clientID, professionalID)
	if err != nil {
		return nil, nil, err
	}

	var msg *domain.Message
	if strings.TrimSpace(req.InitialMessage) != "" {
		msg, err = s.SendMessage(ctx, senderID, conv.ID, SendMessageRequest{Content: req.InitialMessage})
		if err != nil {
			return nil, nil, err
		}
		conv.LastMessage = msg
		conv.LastMessageAt = msg.CreatedAt
	}

	conv.OtherUser = recipient
	return conv, msg, nil
}

func (s *Service) getOrCreate(ctx context.Context, clientID, professionalID int64) (*domain.Conversation, error) {
	existing, err := s.chatRepo.GetConversationByParticipants(ctx, clientID, professionalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find conversation: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	conv := &domain.Conversation{ClientID: clientID, ProfessionalID: professionalID}
	if err := s.chatRepo.CreateConversation(ctx, conv); err != nil {
		// Both sides opened the thread at the same time.
		if dberr.IsUniqueViolation(err) {
			existing, ferr := s.chatRepo.GetConversationByParticipants(ctx, clientID, professionalID)
			if ferr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	realtime.Emit(ctx, s.events, s.log, realtime.TableConversations, realtime.EventInsert, conv, clientID, professionalID)
	return conv, nil
}

// ListConversations returns the user's threads, most recent activity first,
// each with the other participant, the last message and the unread count.
func (s *Service) ListConversations(ctx context.Context, userID int64, limit, offset int) ([]domain.Conversation, error) {
	limit = clamp(limit, defaultConversationLimit)
	if offset < 0 {
		offset = 0
	}

	convs, err := s.chatRepo.GetUserConversations(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversations: %w", err)
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]int64, 0, len(convs))
	others := make([]int64, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
		others = append(others, c.OtherParticipant(userID))
	}

	last, err := s.chatRepo.LastMessages(ctx, ids)
	if err != nil {
		return nil, err
	}
	unread, err := s.chatRepo.CountUnreadByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.GetByIDs(ctx, others)
	if err != nil {
		return nil, err
	}

	for i := range convs {
		convs[i].LastMessage = last[convs[i].ID]
		convs[i].UnreadCount = unread[convs[i].ID]
		convs[i].OtherUser = users[convs[i].OtherParticipant(userID)]
	}
	return convs, nil
}

func (s *Service) participantConversation(ctx context.Context, userID, conversationID int64) (*domain.Conversation, error) {
	conv, err := s.chatRepo.GetConversationByID(ctx, conversationID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	if !conv.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return conv, nil
}

func (s *Service) SendMessage(ctx context.Context, senderID, conversationID int64, req SendMessageRequest) (*domain.Message, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, ErrContentTooLong
	}

	conv, err := s.participantConversation(ctx, senderID, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.chatRepo.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	if err := s.chatRepo.UpdateLastMessageAt(ctx, conv.ID, msg.CreatedAt); err != nil {
		s.log.Warn("chat: update last_message_at failed", zap.Int64("conversation_id", conv.ID), zap.Error(err))
	}
	conv.LastMessageAt = msg.CreatedAt

	recipientID := conv.OtherParticipant(senderID)
	realtime.Emit(ctx, s.events, s.log, realtime.TableMessages, realtime.EventInsert, msg, senderID, recipientID)
	realtime.Emit(ctx, s.events, s.log, realtime.TableConversations, realtime.EventUpdate, conv, senderID, recipientID)
	s.pushUnread(ctx, recipientID)

	return msg, nil
}

// GetMessages pages backwards from beforeID. Messages come back oldest first.
func (s *Service) GetMessages(ctx context.Context, userID, conversationID int64, limit int, beforeID int64) (*MessagesPage, error) {
	if _, err := s.participantConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	limit = clamp(limit, defaultMessageLimit)

	msgs, err := s.chatRepo.GetMessages(ctx, conversationID, limit+1, beforeID)
	if err != nil {
		return nil, err
	}

	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[1:]
	}
	return &MessagesPage{Messages: msgs, HasMore: hasMore}, nil
}

// MarkAsRead flags the other party's messages in the conversation as read.
func (s *Service) MarkAsRead(ctx context.Context, userID, conversationID int64) (int64, error) {
	conv, err := s.participantConversation(ctx, userID, conversationID)
	if err != nil {
		return 0, err
	}

	marked, err := s.chatRepo.MarkMessagesAsRead(ctx, conv.ID, userID)
	if err != nil {
		return 0, err
	}
	if marked > 0 {
		receipt := ReadReceipt{ConversationID: conv.ID, ReaderID: userID, Marked: marked}
		realtime.Emit(ctx, s.events, s.log, realtime.TableMessages, realtime.EventUpdate, receipt, conv.OtherParticipant(userID))
		s.pushUnread(ctx, userID)
	}
	return marked, nil
}

// UnreadTotal returns the viewer's unread counts, overall and per conversation.
func (s *Service) UnreadTotal(ctx context.Context, userID int64) (*UnreadCounts, error) {
	total, err := s.chatRepo.CountTotalUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	byConv, err := s.chatRepo.CountUnreadByConversation(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UnreadCounts{UserID: userID, Total: int(total), ByConversation: byConv}, nil
}

func (s *Service) pushUnread(ctx context.Context, userID int64) {
	counts, err := s.UnreadTotal(ctx, userID)
	if err != nil {
		s.log.Warn("chat: unread recount failed", zap.Int64("user_id", userID), zap.Error(err))
		return
	}
	realtime.Emit(ctx, s.events, s.log, realtime.TableUnreadCounts, realtime.EventUpdate, counts, userID)
}

func clamp(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}
