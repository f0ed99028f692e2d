package orders

import "errors"

// Status is the order lifecycle state. Every new order starts pending; all
// transitions are operator-triggered, none are automatic.
//
// Note on naming: accepting an order moves it straight to "shipped". The
// back office has always conflated "accepted" with "shipped" and downstream
// views branch on exactly this value, so the alias is kept rather than
// introducing a separate accepted state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrAlreadyCancelled   = errors.New("order already cancelled")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrItemsIncomplete    = errors.New("order items were not fully persisted")
	ErrDeleteNotConfirmed = errors.New("order row still present after delete")
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// Terminal states accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition encodes pending → shipped → delivered, with cancelled
// reachable from any non-terminal state.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	switch to {
	case StatusShipped:
		return from == StatusPending
	case StatusDelivered:
		return from == StatusShipped
	case StatusCancelled:
		return true
	}
	return false
}
