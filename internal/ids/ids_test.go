package ids

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSortableIsMonotonicWithinMillisecond(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	prev := NewSortable(at)
	for i := 0; i < 100; i++ {
		next := NewSortable(at)
		assert.Greater(t, next, prev)
		prev = next
	}
}

func TestNewSortableCarriesTimestamp(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	parsed, err := ulid.Parse(NewSortable(at))
	require.NoError(t, err)
	assert.Equal(t, ulid.Timestamp(at), parsed.Time())
}

func TestNewRandomIsUnique(t *testing.T) {
	assert.NotEqual(t, NewRandom(), NewRandom())
	assert.Len(t, NewRandom(), 36)
}
