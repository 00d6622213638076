package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateStore_SingleUse(t *testing.T) {
	store := NewStateStore(time.Minute)
	state := store.New()

	assert.True(t, store.Consume(state))
	assert.False(t, store.Consume(state))
	assert.False(t, store.Consume("forged"))
}

func TestStateStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewStateStore(time.Minute)
	store.now = func() time.Time { return now }

	stale := store.New()
	now = now.Add(30 * time.Second)
	fresh := store.New()
	now = now.Add(45 * time.Second)

	assert.Equal(t, 1, store.PurgeExpired())
	assert.Equal(t, 1, store.Len())
	assert.False(t, store.Consume(stale))
	assert.True(t, store.Consume(fresh))
}
