// Package ids provides the identifier generators used for correlation,
// trace and execution ids.
package ids

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// Generator returns a new unique identifier on every call.
type Generator func() string

const (
	FormatUUID = "uuid"
	FormatULID = "ulid"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// UUID returns a random (version 4) UUID string.
func UUID() string {
	return uuid.NewString()
}

// ULID returns a time-sortable ULID encoded as a 26-character string.
func ULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// ForFormat returns the generator registered under format. An empty format
// selects UUID.
func ForFormat(format string) (Generator, error) {
	switch format {
	case "", FormatUUID:
		return UUID, nil
	case FormatULID:
		return ULID, nil
	default:
		return nil, fmt.Errorf("unknown id format %q (expected %q or %q)", format, FormatUUID, FormatULID)
	}
}
