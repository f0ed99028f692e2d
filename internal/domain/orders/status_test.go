package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAcceptedAliasesToShipped(t *testing.T) {
	// Accepting an order is the pending -> shipped transition.
	assert.True(t, CanTransition(StatusPending, StatusShipped))
}

func TestForwardFlow(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusShipped))
	assert.True(t, CanTransition(StatusShipped, StatusDelivered))

	// No skipping ahead or moving backwards.
	assert.False(t, CanTransition(StatusPending, StatusDelivered))
	assert.False(t, CanTransition(StatusShipped, StatusShipped))
	assert.False(t, CanTransition(StatusShipped, StatusPending))
	assert.False(t, CanTransition(StatusDelivered, StatusShipped))
}

func TestCancelReachableFromNonTerminalOnly(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusCancelled))
	assert.True(t, CanTransition(StatusShipped, StatusCancelled))

	assert.False(t, CanTransition(StatusDelivered, StatusCancelled))
	assert.False(t, CanTransition(StatusCancelled, StatusCancelled))
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusShipped.Terminal())
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusShipped, StatusDelivered, StatusCancelled} {
		assert.True(t, s.Valid())
	}
	assert.False(t, Status("refunded").Valid())
	assert.False(t, Status("").Valid())
}
