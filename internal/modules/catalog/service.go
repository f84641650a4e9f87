package catalog

import (
	"context"
	"strings"

	"churrasco/internal/domain"
	"churrasco/internal/modules/storage"
	"churrasco/internal/pkg/dberr"
	"churrasco/internal/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	services ServiceRepository
	users    UserRepository
	ratings  RatingRepository
	store    storage.Store
	log      *zap.Logger
}

func NewService(services ServiceRepository, users UserRepository, ratings RatingRepository, store storage.Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{services: services, users: users, ratings: ratings, store: store, log: log}
}

func validateRequest(req *ServiceRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Location = strings.TrimSpace(req.Location)

	if errs := validator.Validate(req); errs != nil {
		return FieldErrors(errs)
	}
	if req.Category != "" && !req.Category.Valid() {
		return ErrInvalidCategory
	}
	if req.PriceTo > 0 && req.PriceTo < req.PriceFrom {
		return ErrValidation
	}
	if req.MinGuests > req.MaxGuests {
		return ErrValidation
	}
	return nil
}

/* ---------- PROFESSIONAL CRUD ---------- */

func (s *Service) CreateService(ctx context.Context, professionalID int64, req ServiceRequest) (*domain.Service, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	svc := &domain.Service{ProfessionalID: professionalID}
	req.apply(svc)
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.log.Info("service created", zap.Int64("service_id", svc.ID), zap.Int64("professional_id", professionalID))
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, professionalID, serviceID int64, req ServiceRequest) (*domain.Service, error) {
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	svc, err := s.owned(ctx, professionalID, serviceID)
	if err != nil {
		return nil, err
	}

	req.apply(svc)
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

func (s *Service) DeleteService(ctx context.Context, professionalID, serviceID int64) error {
	if _, err := s.owned(ctx, professionalID, serviceID); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, serviceID); err != nil {
		if dberr.IsNotFound(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// AddImage stores a photo under a fresh key and appends its URL to the service.
func (s *Service) AddImage(ctx context.Context, professionalID, serviceID int64, img *storage.Image) (*domain.Service, error) {
	if _, err := s.owned(ctx, professionalID, serviceID); err != nil {
		return nil, err
	}

	key := storage.ServiceImageKey(serviceID, uuid.NewString()+img.Ext)
	url, err := s.store.Put(ctx, key, img.Reader(), img.ContentType, false)
	if err != nil {
		return nil, err
	}
	return s.services.AppendImage(ctx, serviceID, url)
}

func (s *Service) owned(ctx context.Context, professionalID, serviceID int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if svc.ProfessionalID != professionalID {
		return nil, ErrForbidden
	}
	return svc, nil
}

/* ---------- LISTING ---------- */

// Search loads every service with its provider and rating, then filters and
// orders in memory.
func (s *Service) Search(ctx context.Context, f Filter) ([]domain.Service, error) {
	all, err := s.services.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, all); err != nil {
		return nil, err
	}
	return Apply(all, f), nil
}

func (s *Service) GetByID(ctx context.Context, serviceID int64) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	list := []domain.Service{*svc}
	if err := s.decorate(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (s *Service) ListMine(ctx context.Context, professionalID int64) ([]domain.Service, error) {
	list, err := s.services.ListByProfessional(ctx, professionalID)
	if err != nil {
		return nil, err
	}
	if err := s.decorate(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// decorate attaches provider, rating and derived category with two batched
// queries regardless of the list size.
func (s *Service) decorate(ctx context.Context, list []domain.Service) error {
	if len(list) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(list))
	seen := make(map[int64]bool, len(list))
	for _, svc := range list {
		if !seen[svc.ProfessionalID] {
			seen[svc.ProfessionalID] = true
			ids = append(ids, svc.ProfessionalID)
		}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	ratings, err := s.ratings.Summaries(ctx, ids)
	if err != nil {
		return err
	}

	for i := range list {
		list[i].Professional = users[list[i].ProfessionalID]
		r := ratings[list[i].ProfessionalID]
		list[i].Rating = &r
		list[i].Category = Classify(&list[i])
	}
	return nil
}
