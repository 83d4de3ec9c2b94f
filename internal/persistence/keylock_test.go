package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAcquireSerializesSameKey(t *testing.T) {
	l := NewKeyLock(nil, time.Second)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "schedule:org:team:2025-03-03")
	require.NoError(t, err)

	second := make(chan struct{})
	go func() {
		r, err := l.Acquire(ctx, "schedule:org:team:2025-03-03")
		if err == nil {
			r()
		}
		close(second)
	}()

	select {
	case <-second:
		t.Fatal("second holder acquired while the key was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-second:
	case <-time.After(time.Second):
		t.Fatal("second holder never acquired after release")
	}
}

func TestTombstoneVisibleWithoutRedis(t *testing.T) {
	l := NewKeyLock(nil, time.Second)
	ctx := context.Background()

	require.False(t, l.IsTombstoned(ctx, "team:abc"))
	l.Tombstone(ctx, "team:abc", 30*time.Second)
	require.True(t, l.IsTombstoned(ctx, "team:abc"))
	require.False(t, l.IsTombstoned(ctx, "team:other"))
}

func TestTombstoneExpires(t *testing.T) {
	l := NewKeyLock(nil, time.Second)
	ctx := context.Background()

	l.Tombstone(ctx, "team:abc", time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	require.False(t, l.IsTombstoned(ctx, "team:abc"))
}
