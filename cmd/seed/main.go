package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"churrasco/internal/config"
	"churrasco/internal/database"
	"churrasco/internal/domain"
	"churrasco/internal/modules/booking"
	"churrasco/internal/modules/subscription"
	"churrasco/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "churrasco123"

// Tables are wiped in dependency order.
var seededTables = []string{
	"messages", "conversations", "reviews", "bookings",
	"subscriptions", "services", "revoked_tokens", "password_resets", "users",
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, nil)
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running migrations...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}
	if err := subscription.Migrate(ctx, db); err != nil {
		log.Fatal("subscription migrate failed:", err)
	}

	log.Println("Cleaning old data...")
	if err := wipe(db); err != nil {
		log.Fatal(err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	users := repository.NewUserRepository(db)
	services := repository.NewServiceRepository(db)
	bookings := repository.NewBookingRepository(db)
	reviews := repository.NewReviewRepository(db)
	chats := repository.NewChatRepository(db)
	subs := subscription.NewRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")
	pros := []*domain.User{
		{Email: "joao@churrasco.app", Name: "João Gaúcho", Role: domain.RoleProfessional, Phone: "(51) 99876-5432", City: "Porto Alegre", Bio: "Fogo de chão há 20 anos."},
		{Email: "carla@churrasco.app", Name: "Carla Brasa", Role: domain.RoleProfessional, Phone: "(11) 98765-1234", WhatsApp: "(11) 98765-1234", City: "São Paulo", Bio: "Eventos corporativos e festas."},
	}
	clients := []*domain.User{
		{Email: "maria@example.com", Name: "Maria Souza", Role: domain.RoleClient, Phone: "(11) 91234-5678", City: "São Paulo"},
		{Email: "pedro@example.com", Name: "Pedro Lima", Role: domain.RoleClient, City: "Campinas"},
		{Email: "ana@example.com", Name: "Ana Costa", Role: domain.RoleClient, City: "Porto Alegre"},
	}
	for _, u := range append(append([]*domain.User{}, pros...), clients...) {
		u.PasswordHash = string(hash)
		must(users.Create(ctx, u))
	}

	// ================== SERVICES ==================
	log.Println("Creating services...")
	catalog := []*domain.Service{
		{ProfessionalID: pros[0].ID, Title: "Costelão fogo de chão", Description: "Costela gaúcha assada por 12 horas.", PriceFrom: 450, PriceTo: 900, DurationHours: 6, MinGuests: 10, MaxGuests: 60, Location: "Porto Alegre"},
		{ProfessionalID: pros[0].ID, Title: "Churrasco tradicional", Description: "Picanha, linguiça e frango.", PriceFrom: 300, DurationHours: 4, MinGuests: 5, MaxGuests: 30, Location: "Porto Alegre"},
		{ProfessionalID: pros[1].ID, Title: "Churrasco corporativo", Description: "Confraternização de empresa com equipe completa.", Category: domain.CategoryCorporativo, PriceFrom: 1500, PriceTo: 4000, DurationHours: 5, MinGuests: 30, MaxGuests: 200, Location: "São Paulo"},
		{ProfessionalID: pros[1].ID, Title: "Festa de aniversário", Description: "Churrasco para festa em casa.", PriceFrom: 350, DurationHours: 4, MinGuests: 10, MaxGuests: 40, Location: "São Paulo"},
	}
	for _, s := range catalog {
		must(services.Create(ctx, s))
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	today := time.Now().UTC().Truncate(24 * time.Hour)
	plan := []struct {
		client  *domain.User
		service *domain.Service
		days    int
		guests  int
		status  domain.BookingStatus
		rating  int
	}{
		{clients[0], catalog[0], -20, 25, domain.BookingCompleted, 5},
		{clients[1], catalog[0], -10, 12, domain.BookingCompleted, 4},
		{clients[2], catalog[1], -5, 15, domain.BookingCompleted, 5},
		{clients[0], catalog[2], 14, 80, domain.BookingConfirmed, 0},
		{clients[1], catalog[3], 21, 20, domain.BookingPending, 0},
		{clients[2], catalog[3], 30, 12, domain.BookingCancelled, 0},
	}
	for _, p := range plan {
		b := &domain.Booking{
			ClientID:       p.client.ID,
			ProfessionalID: p.service.ProfessionalID,
			ServiceID:      p.service.ID,
			EventDate:      today.AddDate(0, 0, p.days),
			EventTime:      "19:00",
			GuestCount:     p.guests,
			Location:       p.service.Location,
			TotalPrice:     booking.CalculateTotal(p.service.PriceFrom, p.guests),
			Status:         domain.BookingPending,
		}
		must(bookings.Create(ctx, b))

		switch p.status {
		case domain.BookingCompleted:
			_, err := bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, domain.BookingConfirmed)
			must(err)
			_, err = bookings.UpdateStatus(ctx, b.ID, domain.BookingConfirmed, domain.BookingCompleted)
			must(err)
		case domain.BookingConfirmed, domain.BookingCancelled:
			_, err := bookings.UpdateStatus(ctx, b.ID, domain.BookingPending, p.status)
			must(err)
		}

		if p.rating > 0 {
			must(reviews.Create(ctx, &domain.Review{
				BookingID:      b.ID,
				ClientID:       b.ClientID,
				ProfessionalID: b.ProfessionalID,
				ServiceID:      b.ServiceID,
				Rating:         p.rating,
				Comment:        "Carne no ponto, recomendo!",
			}))
		}
	}

	// ================== CHAT ==================
	log.Println("Creating conversations...")
	conv := &domain.Conversation{ClientID: clients[1].ID, ProfessionalID: pros[1].ID, LastMessageAt: time.Now().UTC()}
	must(chats.CreateConversation(ctx, conv))
	for _, m := range []struct {
		sender  int64
		content string
	}{
		{clients[1].ID, "Oi Carla, você atende em Campinas?"},
		{pros[1].ID, "Atendo sim! Para quantas pessoas?"},
		{clients[1].ID, "Umas 20 pessoas."},
	} {
		must(chats.CreateMessage(ctx, &domain.Message{ConversationID: conv.ID, SenderID: m.sender, Content: m.content}))
	}

	// ================== SUBSCRIPTIONS ==================
	log.Println("Creating subscriptions...")
	now := time.Now().UTC()
	must(subs.Activate(ctx, &subscription.Subscription{
		ID:             uuid.NewString(),
		ProfessionalID: pros[0].ID,
		PlanID:         subscription.PlanPro,
		Status:         subscription.StatusActive,
		StartsAt:       now,
		ExpiresAt:      now.AddDate(0, 0, 30),
		Amount:         99.90,
		PaymentMethod:  subscription.MethodPix,
		PaymentRef:     "seed_" + uuid.NewString(),
	}, "seed"))

	fmt.Println()
	fmt.Println("Seed completed. Every account uses the password:", seedPassword)
	for _, u := range pros {
		fmt.Printf("  professional  %s\n", u.Email)
	}
	for _, u := range clients {
		fmt.Printf("  client        %s\n", u.Email)
	}
}

func wipe(db *gorm.DB) error {
	for _, table := range seededTables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clean %s: %w", table, err)
		}
	}
	return nil
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
