package catalog

import (
	"context"

	"churrasco/internal/domain"
)

type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	Update(ctx context.Context, s *domain.Service) error
	Delete(ctx context.Context, id int64) error
	ListAll(ctx context.Context) ([]domain.Service, error)
	ListByProfessional(ctx context.Context, professionalID int64) ([]domain.Service, error)
	AppendImage(ctx context.Context, serviceID int64, url string) (*domain.Service, error)
}

type UserRepository interface {
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*domain.User, error)
}

type RatingRepository interface {
	Summaries(ctx context.Context, professionalIDs []int64) (map[int64]domain.RatingSummary, error)
}
