package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"churrasco/internal/database"
	"churrasco/internal/domain"
	"churrasco/internal/pkg/dberr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := database.Connect(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, repo *UserRepository, email string, role domain.UserRole) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "hash", Role: role, Name: strings.Split(email, "@")[0]}
	require.NoError(t, repo.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func TestUserRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository(newTestDB(t))

	u := seedUser(t, users, "Ana@Example.com", domain.RoleProfessional)

	got, err := users.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	exists, err := users.ExistsByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	err = users.Create(ctx, &domain.User{Email: "ana@example.com", PasswordHash: "x", Role: domain.RoleClient})
	assert.True(t, dberr.IsUniqueViolation(err))

	got.Phone = "(11) 98888-7777"
	got.City = "Porto Alegre"
	require.NoError(t, users.Update(ctx, got))
	require.NoError(t, users.UpdateAvatar(ctx, u.ID, "/static/avatars/1"))

	got, err = users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "(11) 98888-7777", got.Phone)
	assert.Equal(t, "Porto Alegre", got.City)
	assert.Equal(t, "/static/avatars/1", got.AvatarURL)

	assert.ErrorIs(t, users.Update(ctx, &domain.User{ID: 999}), gorm.ErrRecordNotFound)
}

func TestUserRepository_DeleteRemovesServices(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	services := NewServiceRepository(db)

	pro := seedUser(t, users, "pro@example.com", domain.RoleProfessional)
	require.NoError(t, services.Create(ctx, &domain.Service{ProfessionalID: pro.ID, Title: "Costela", PriceFrom: 500, MaxGuests: 30}))

	require.NoError(t, users.Delete(ctx, pro.ID))

	_, err := users.GetByID(ctx, pro.ID)
	assert.True(t, dberr.IsNotFound(err))
	left, err := services.ListByProfessional(ctx, pro.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestServiceRepository_AppendImage(t *testing.T) {
	ctx := context.Background()
	services := NewServiceRepository(newTestDB(t))

	s := &domain.Service{ProfessionalID: 1, Title: "Fogo de chão", PriceFrom: 800, MaxGuests: 50}
	require.NoError(t, services.Create(ctx, s))

	updated, err := services.AppendImage(ctx, s.ID, "https://cdn/x.jpg")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn/x.jpg"}, updated.Images)

	assert.ErrorIs(t, services.Delete(ctx, 12345), gorm.ErrRecordNotFound)
}

func TestBookingRepository_UpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	bookings := NewBookingRepository(newTestDB(t))

	b := &domain.Booking{
		ClientID:       1,
		ProfessionalID: 2,
		ServiceID:      3,
		EventDate:      time.Now().UTC().AddDate(0, 0, 7),
		EventTime:      "19:00",
		GuestCount:     20,
		Location:       "Sítio",
		TotalPrice:     700,
		Status:         domain.BookingPending,
	}
	require.NoError(t, bookings.Create(ctx, b))

	confirmed, err := bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, confirmed.Status)

	// A second writer still expecting pending loses.
	_, err = bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingCancelled)
	assert.ErrorIs(t, err, ErrStatusChanged)

	done, err := bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCompleted)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	list, err := bookings.ListByProfessional(ctx, 2, domain.BookingCompleted)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = bookings.ListByClient(ctx, 1, domain.BookingPending)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReviewRepository_Aggregates(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	reviews := NewReviewRepository(db)

	client := seedUser(t, users, "maria@example.com", domain.RoleClient)

	for i, rating := range []int{5, 4, 4} {
		require.NoError(t, reviews.Create(ctx, &domain.Review{
			BookingID:      int64(i + 1),
			ClientID:       client.ID,
			ProfessionalID: 10,
			ServiceID:      1,
			Rating:         rating,
		}))
	}
	require.NoError(t, reviews.Create(ctx, &domain.Review{BookingID: 9, ClientID: client.ID, ProfessionalID: 20, ServiceID: 2, Rating: 3}))

	err := reviews.Create(ctx, &domain.Review{BookingID: 1, ClientID: client.ID, ProfessionalID: 10, ServiceID: 1, Rating: 1})
	assert.True(t, dberr.IsUniqueViolation(err))

	sum, err := reviews.Summary(ctx, 10)
	require.NoError(t, err)
	assert.InDelta(t, 4.333, sum.Average, 0.01)
	assert.Equal(t, int64(3), sum.Count)

	empty, err := reviews.Summary(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.Count)
	assert.Equal(t, domain.NewProfessionalLabel, empty.Label())

	all, err := reviews.Summaries(ctx, []int64{10, 20, 99})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, int64(1), all[20].Count)

	list, err := reviews.ListByProfessional(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "maria", list[0].ClientName)

	has, err := reviews.ExistsForBooking(ctx, 9)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestChatRepository_UnreadCounts(t *testing.T) {
	ctx := context.Background()
	chats := NewChatRepository(newTestDB(t))

	const client, pro, otherClient int64 = 1, 2, 3
	conv := &domain.Conversation{ClientID: client, ProfessionalID: pro}
	require.NoError(t, chats.CreateConversation(ctx, conv))
	other := &domain.Conversation{ClientID: otherClient, ProfessionalID: pro}
	require.NoError(t, chats.CreateConversation(ctx, other))

	dup := &domain.Conversation{ClientID: client, ProfessionalID: pro}
	assert.True(t, dberr.IsUniqueViolation(chats.CreateConversation(ctx, dup)))

	send := func(convID, sender int64, text string) {
		require.NoError(t, chats.CreateMessage(ctx, &domain.Message{ConversationID: convID, SenderID: sender, Content: text}))
	}
	send(conv.ID, client, "oi")
	send(conv.ID, client, "tudo bem?")
	send(conv.ID, pro, "olá")
	send(other.ID, otherClient, "orçamento")

	byConv, err := chats.CountUnreadByConversation(ctx, pro)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{conv.ID: 2, other.ID: 1}, byConv)

	total, err := chats.CountTotalUnread(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	changed, err := chats.MarkMessagesAsRead(ctx, conv.ID, pro)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)

	total, err = chats.CountTotalUnread(ctx, pro)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	// The reader's own message stays unread for the other side.
	total, err = chats.CountTotalUnread(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	msgs, err := chats.GetMessages(ctx, conv.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "oi", msgs[0].Content)
	assert.Equal(t, "olá", msgs[2].Content)

	last, err := chats.LastMessages(ctx, []int64{conv.ID, other.ID})
	require.NoError(t, err)
	assert.Equal(t, "olá", last[conv.ID].Content)
	assert.Equal(t, "orçamento", last[other.ID].Content)

	found, err := chats.GetConversationByParticipants(ctx, client, pro)
	require.NoError(t, err)
	assert.Equal(t, conv.ID, found.ID)
	missing, err := chats.GetConversationByParticipants(ctx, otherClient, 77)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokenRepository(newTestDB(t))
	now := time.Now().UTC()

	require.NoError(t, tokens.Revoke(ctx, &domain.RevokedToken{JTI: "a", UserID: 1, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, tokens.Revoke(ctx, &domain.RevokedToken{JTI: "a", UserID: 1, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, tokens.Revoke(ctx, &domain.RevokedToken{JTI: "old", UserID: 1, ExpiresAt: now.Add(-time.Hour)}))

	revoked, err := tokens.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	reset := &domain.PasswordReset{UserID: 1, TokenHash: "h1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, tokens.CreateReset(ctx, reset))

	got, err := tokens.GetResetByHash(ctx, "h1")
	require.NoError(t, err)
	assert.False(t, got.IsUsed())

	ok, err := tokens.MarkResetUsed(ctx, reset.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = tokens.MarkResetUsed(ctx, reset.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	removed, err := tokens.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	revoked, err = tokens.IsRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)
}
