package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"churrasco/internal/domain"
	"churrasco/internal/modules/contact"
	"churrasco/internal/modules/storage"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/pkg/validator"

	"go.uber.org/zap"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	UpdateAvatar(ctx context.Context, userID int64, url string) error
}

type RatingReader interface {
	Summary(ctx context.Context, professionalID int64) (domain.RatingSummary, error)
}

type ServiceLister interface {
	ListByProfessional(ctx context.Context, professionalID int64) ([]domain.Service, error)
}

type Service struct {
	users    UserRepository
	ratings  RatingReader
	services ServiceLister
	store    storage.Store
	log      *zap.Logger
	now      func() time.Time
}

func NewService(users UserRepository, ratings RatingReader, services ServiceLister, store storage.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{users: users, ratings: ratings, services: services, store: store, log: log, now: time.Now}
}

func (s *Service) GetMe(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateMe applies the non-nil fields of req. Concurrent edits are last
// write wins.
func (s *Service) UpdateMe(ctx context.Context, userID int64, req UpdateRequest) (*domain.User, error) {
	trim(req.Name, req.Phone, req.WhatsApp, req.City, req.Bio)
	if errs := validator.Validate(req); errs != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, errs)
	}

	u, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
		u.Name = *req.Name
	}
	if req.Phone != nil {
		u.Phone = *req.Phone
	}
	if req.WhatsApp != nil {
		u.WhatsApp = *req.WhatsApp
	}
	if req.City != nil {
		u.City = *req.City
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}

	if err := s.users.Update(ctx, u); err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// UploadAvatar replaces the user's avatar object and points avatar_url at it.
// The version query makes clients drop cached copies of the old image.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, img *storage.Image) (*domain.User, error) {
	u, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.store.Put(ctx, storage.AvatarKey(userID), img.Reader(), img.ContentType, true)
	if err != nil {
		return nil, err
	}
	u.AvatarURL = fmt.Sprintf("%s?v=%d", url, s.now().Unix())

	if err := s.users.UpdateAvatar(ctx, userID, u.AvatarURL); err != nil {
		return nil, err
	}
	s.log.Info("avatar updated", zap.Int64("user_id", userID))
	return u, nil
}

// GetPublic returns the profile another user may see. Professionals also
// carry their rating and published services.
func (s *Service) GetPublic(ctx context.Context, id int64, message string) (*PublicProfile, error) {
	u, err := s.GetMe(ctx, id)
	if err != nil {
		return nil, err
	}

	out := &PublicProfile{
		ID:        u.ID,
		Name:      u.Name,
		Role:      u.Role,
		City:      u.City,
		Bio:       u.Bio,
		AvatarURL: u.AvatarURL,
		Contact:   contact.BuildLinks(u, message),
	}
	if !u.IsProfessional() {
		return out, nil
	}

	summary, err := s.ratings.Summary(ctx, id)
	if err != nil {
		return nil, err
	}
	out.Rating = &summary

	out.Services, err = s.services.ListByProfessional(ctx, id)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
