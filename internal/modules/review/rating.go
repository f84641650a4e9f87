package review

import "churrasco/internal/domain"

// Summarize computes the arithmetic mean and count of a set of ratings.
// An empty set yields the zero summary, labelled "Novo".
func Summarize(ratings []int) domain.RatingSummary {
	if len(ratings) == 0 {
		return domain.RatingSummary{}
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return domain.RatingSummary{
		Average: float64(sum) / float64(len(ratings)),
		Count:   int64(len(ratings)),
	}
}

// ClampLimit bounds the number of reviews shown on a profile.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	}
	return limit
}
