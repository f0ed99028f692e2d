package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	hashids "github.com/speps/go-hashids/v2"
)

// OrderNumberGenerator produces short, non-guessable public order
// references. The encoded pair (millisecond timestamp, random nonce) keeps
// numbers unique without exposing a sequential counter to customers.
type OrderNumberGenerator struct {
	h *hashids.HashID
}

func NewOrderNumberGenerator(salt string) (*OrderNumberGenerator, error) {
	data := hashids.NewData()
	data.Salt = salt
	data.MinLength = 8
	data.Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	h, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("order number generator: %w", err)
	}
	return &OrderNumberGenerator{h: h}, nil
}

func (g *OrderNumberGenerator) Generate() string {
	nonce := int64(uuid.New().ID())
	tag, err := g.h.EncodeInt64([]int64{time.Now().UnixMilli(), nonce})
	if err != nil {
		// EncodeInt64 only fails on negative inputs; both are non-negative.
		tag = strings.ToUpper(uuid.NewString()[:8])
	}
	return fmt.Sprintf("PRF-%s", tag)
}
