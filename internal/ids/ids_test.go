package ids

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUID(t *testing.T) {
	id := UUID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, UUID())
}

func TestULID_MonotonicUnderConcurrency(t *testing.T) {
	const n = 200
	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := ULID()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for id := range seen {
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantLen int
		wantErr bool
	}{
		{format: "", wantLen: 36},
		{format: FormatUUID, wantLen: 36},
		{format: FormatULID, wantLen: 26},
		{format: "snowflake", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			gen, err := ForFormat(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, gen(), tt.wantLen)
		})
	}
}
