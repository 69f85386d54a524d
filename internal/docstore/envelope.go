package docstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Envelope carries the identity and timestamp fields shared by every
// stored record. Entity structs embed it.
type Envelope struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Env returns the embedded envelope; it is how the store reaches the
// common fields of any document type. The accessor cannot share the
// field's name: in an embedding struct the Envelope field would shadow
// the promoted method.
func (e *Envelope) Env() *Envelope { return e }

// Doc is satisfied by any pointer to a struct embedding Envelope.
type Doc interface {
	Env() *Envelope
}

// NewID returns a fresh opaque record identifier.
func NewID() string { return uuid.New().String() }

// Clock produces monotonically non-decreasing timestamps. Wall clocks
// can step backwards; createdAt/updatedAt must not.
type Clock struct {
	mu   sync.Mutex
	last time.Time
}

// Now returns the current UTC time, nudged forward if the wall clock
// reads at or before the previously returned value.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UTC()
	if !now.After(c.last) {
		now = c.last.Add(time.Microsecond)
	}
	c.last = now
	return now
}
