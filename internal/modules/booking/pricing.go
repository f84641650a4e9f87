package booking

import "math"

const (
	BaselineGuests      = 10
	ExtraGuestSurcharge = 20.0
)

// CalculateTotal prices a booking: the service's starting price covers the
// first BaselineGuests guests, each extra guest adds ExtraGuestSurcharge.
func CalculateTotal(priceFrom float64, guests int) float64 {
	extra := guests - BaselineGuests
	if extra < 0 {
		extra = 0
	}
	total := priceFrom + float64(extra)*ExtraGuestSurcharge
	return math.Round(total*100) / 100
}
