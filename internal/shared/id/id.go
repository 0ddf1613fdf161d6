// Package id generates identifiers used by the capture pipeline.
//
// Two formats are in play:
//   - ULIDs: lexicographically sortable, used as optional disambiguators in
//     event file names so that captures within one second never collide.
//   - UUIDs: opaque batch identifiers attached to each upload request.
package id

import (
	"crypto/rand"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// BatchID identifies one upload request
type BatchID string

func (id BatchID) String() string { return string(id) }

// NewBatchID returns a random batch id
func NewBatchID() BatchID {
	return BatchID(uuid.NewString())
}

// Generator produces monotonic ULIDs
type Generator struct {
	mu      sync.Mutex
	entropy io.Reader
	now     func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the shared generator
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator(rand.Reader)
	})
	return defaultGenerator
}

// NewGenerator creates a generator. Within one millisecond successive ids
// increase monotonically.
func NewGenerator(entropy io.Reader) *Generator {
	return &Generator{
		entropy: ulid.Monotonic(entropy, 0),
		now:     time.Now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// Suffix returns a lower-case ULID for file names
func (g *Generator) Suffix() string {
	return strings.ToLower(g.Generate().String())
}

// IsValid checks if s parses as a ULID
func IsValid(s string) bool {
	_, err := ulid.ParseStrict(strings.ToUpper(s))
	return err == nil
}

// Timestamp extracts the embedded time of a ULID
func Timestamp(s string) (time.Time, error) {
	parsed, err := ulid.ParseStrict(strings.ToUpper(s))
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
