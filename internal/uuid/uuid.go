// uuid wraps ID generation behind an interface so repositories and the
// effect manager can be given deterministic IDs under test.
package uuid

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique identifiers
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements Generator using Google's UUID package
type GoogleUUIDGenerator struct{}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// New generates a new random UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// SequentialGenerator produces predictable IDs for tests
type SequentialGenerator struct {
	Prefix string
	n      atomic.Int64
}

// New returns the next sequential ID
func (g *SequentialGenerator) New() string {
	return fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1))
}
