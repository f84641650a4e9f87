package catalog

import (
	"sort"
	"strings"

	"churrasco/internal/domain"
)

// PremiumPriceThreshold marks an uncategorised service as premium.
const PremiumPriceThreshold = 1000.0

// Filter narrows the public listing. Zero values mean "no constraint".
type Filter struct {
	Query       string
	Category    domain.ServiceCategory
	MinPrice    float64
	MaxPrice    float64
	Guests      int
	MinDuration int
	MaxDuration int
	MinRating   float64
}

// keyword order matters: the first category with a hit wins.
var categoryKeywords = []struct {
	category domain.ServiceCategory
	words    []string
}{
	{domain.CategoryGaucho, []string{"gaúcho", "gaucho", "fogo de chão", "fogo de chao", "costelão", "costelao", "chimarrão"}},
	{domain.CategoryCorporativo, []string{"corporativo", "empresa", "empresarial", "confraternização", "confraternizacao"}},
	{domain.CategoryFesta, []string{"festa", "aniversário", "aniversario", "casamento", "formatura"}},
	{domain.CategoryPremium, []string{"premium", "gourmet", "wagyu", "luxo", "exclusivo"}},
}

// Classify returns the stored category, or derives one from the title,
// description and price when none was chosen.
func Classify(s *domain.Service) domain.ServiceCategory {
	if s.Category.Valid() {
		return s.Category
	}

	text := strings.ToLower(s.Title + " " + s.Description)
	for _, kc := range categoryKeywords {
		for _, w := range kc.words {
			if strings.Contains(text, w) {
				return kc.category
			}
		}
	}
	if s.PriceFrom >= PremiumPriceThreshold {
		return domain.CategoryPremium
	}
	return domain.CategoryTradicional
}

// Match reports whether one service passes every constraint of f.
func (f Filter) Match(s *domain.Service) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		haystack := []string{s.Title, s.Description, s.Location}
		if s.Professional != nil {
			haystack = append(haystack, s.Professional.Name)
		}
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if f.Category != "" && Classify(s) != f.Category {
		return false
	}
	if f.MinPrice > 0 && s.PriceFrom < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && s.PriceFrom > f.MaxPrice {
		return false
	}
	if f.Guests > 0 {
		if f.Guests > s.MaxGuests || (s.MinGuests > 0 && f.Guests < s.MinGuests) {
			return false
		}
	}
	if f.MinDuration > 0 && s.DurationHours < f.MinDuration {
		return false
	}
	if f.MaxDuration > 0 && s.DurationHours > f.MaxDuration {
		return false
	}
	if f.MinRating > 0 && ratingOf(s).Average < f.MinRating {
		return false
	}
	return true
}

// Apply filters services and orders them by average rating, then review
// count, both descending. Ties keep their input order.
func Apply(services []domain.Service, f Filter) []domain.Service {
	out := make([]domain.Service, 0, len(services))
	for i := range services {
		if f.Match(&services[i]) {
			out = append(out, services[i])
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := ratingOf(&out[i]), ratingOf(&out[j])
		if ri.Average != rj.Average {
			return ri.Average > rj.Average
		}
		return ri.Count > rj.Count
	})
	return out
}

func ratingOf(s *domain.Service) domain.RatingSummary {
	if s.Rating == nil {
		return domain.RatingSummary{}
	}
	return *s.Rating
}
