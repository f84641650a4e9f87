package catalog

import "churrasco/internal/domain"

type ServiceRequest struct {
	Title         string                 `json:"title" validate:"required,max=120"`
	Description   string                 `json:"description" validate:"max=4000"`
	Category      domain.ServiceCategory `json:"category,omitempty"`
	PriceFrom     float64                `json:"price_from" validate:"gt=0"`
	PriceTo       float64                `json:"price_to" validate:"gte=0"`
	DurationHours int                    `json:"duration_hours" validate:"gte=0,lte=48"`
	MinGuests     int                    `json:"min_guests" validate:"gte=0"`
	MaxGuests     int                    `json:"max_guests" validate:"required,gte=1"`
	Location      string                 `json:"location"`
	Images        []string               `json:"images,omitempty" validate:"max=20,dive,required"`
}

func (r ServiceRequest) apply(s *domain.Service) {
	s.Title = r.Title
	s.Description = r.Description
	s.Category = r.Category
	s.PriceFrom = r.PriceFrom
	s.PriceTo = r.PriceTo
	s.DurationHours = r.DurationHours
	s.MinGuests = r.MinGuests
	s.MaxGuests = r.MaxGuests
	s.Location = r.Location
	if r.Images != nil {
		s.Images = r.Images
	}
}
