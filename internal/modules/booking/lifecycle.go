package booking

import "churrasco/internal/domain"

// Actor is the side of the booking performing a transition.
type Actor string

const (
	ActorClient       Actor = "client"
	ActorProfessional Actor = "professional"
)

type transition struct {
	from domain.BookingStatus
	to   domain.BookingStatus
}

// allowed maps every legal edge of the status machine to the actor that may take it.
var allowed = map[transition]Actor{
	{domain.BookingPending, domain.BookingConfirmed}:   ActorProfessional,
	{domain.BookingPending, domain.BookingCancelled}:   "",
	{domain.BookingConfirmed, domain.BookingCompleted}: ActorProfessional,
}

// CanTransition reports whether the edge exists for any actor.
func CanTransition(from, to domain.BookingStatus) bool {
	_, ok := allowed[transition{from, to}]
	return ok
}

// ValidateTransition checks the edge first and the actor second. Both sides
// may cancel a pending booking.
func ValidateTransition(actor Actor, from, to domain.BookingStatus) error {
	who, ok := allowed[transition{from, to}]
	if !ok {
		return ErrInvalidStatusTransition
	}
	if who != "" && who != actor {
		return ErrForbidden
	}
	if actor != ActorClient && actor != ActorProfessional {
		return ErrForbidden
	}
	return nil
}

// IsTerminal reports whether no edge leaves the status.
func IsTerminal(status domain.BookingStatus) bool {
	return status == domain.BookingCancelled || status == domain.BookingCompleted
}

func ActorFor(b *domain.Booking, userID int64) (Actor, bool) {
	switch userID {
	case b.ProfessionalID:
		return ActorProfessional, true
	case b.ClientID:
		return ActorClient, true
	}
	return "", false
}
