package idgen

import (
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates ULID-based IDs.
type ULIDGenerator struct {
	now     func() time.Time
	entropy io.Reader
}

// NewULIDGenerator creates a ULIDGenerator using the wall clock and
// monotonic entropy, so IDs from one process sort in creation order.
func NewULIDGenerator() *ULIDGenerator {
	return &ULIDGenerator{
		now:     time.Now,
		entropy: ulid.DefaultEntropy(),
	}
}

// Generate generates a new ULID.
func (g *ULIDGenerator) Generate() string {
	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy).String()
}
