package persistence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockPollInterval = 25 * time.Millisecond

// KeyLock serializes writers per logical key. Within one process a keyed
// mutex does the work; when a Redis client is configured an additional
// SET NX lease extends the guarantee across instances. Redis being down
// degrades to process-local locking, matching how the rest of the service
// treats Redis as best-effort.
type KeyLock struct {
	client *redis.Client
	ttl    time.Duration

	mu    sync.Mutex
	local map[string]*localEntry
	tombs map[string]time.Time
}

type localEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyLock builds a lock manager. client may be nil.
func NewKeyLock(client *redis.Client, ttl time.Duration) *KeyLock {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &KeyLock{
		client: client,
		ttl:    ttl,
		local:  make(map[string]*localEntry),
		tombs:  make(map[string]time.Time),
	}
}

// Acquire blocks until the key is held or ctx expires. The returned release
// function is safe to call exactly once.
func (l *KeyLock) Acquire(ctx context.Context, key string) (func(), error) {
	entry := l.retain(key)
	entry.mu.Lock()

	token, err := l.acquireLease(ctx, key)
	if err != nil {
		entry.mu.Unlock()
		l.release(key)
		return nil, err
	}

	return func() {
		l.releaseLease(key, token)
		entry.mu.Unlock()
		l.release(key)
	}, nil
}

// Tombstone marks a key as deleted-in-progress for ttl. Submissions check
// the marker inside their critical section so a write never lands
// mid-cascade. The marker is kept in-process as well as in Redis, so the
// fence holds within one instance even when Redis is unreachable.
func (l *KeyLock) Tombstone(ctx context.Context, key string, ttl time.Duration) {
	l.mu.Lock()
	l.tombs[key] = time.Now().Add(ttl)
	l.mu.Unlock()
	if l.client == nil {
		return
	}
	_ = l.client.Set(ctx, "tomb:"+key, "1", ttl).Err()
}

// IsTombstoned reports whether the key carries a live deletion marker.
func (l *KeyLock) IsTombstoned(ctx context.Context, key string) bool {
	l.mu.Lock()
	deadline, ok := l.tombs[key]
	if ok && time.Now().After(deadline) {
		delete(l.tombs, key)
		ok = false
	}
	l.mu.Unlock()
	if ok {
		return true
	}
	if l.client == nil {
		return false
	}
	exists, err := l.client.Exists(ctx, "tomb:"+key).Result()
	return err == nil && exists > 0
}

func (l *KeyLock) retain(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.local[key]
	if !ok {
		entry = &localEntry{}
		l.local[key] = entry
	}
	entry.refs++
	return entry
}

func (l *KeyLock) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.local[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.local, key)
	}
}

func (l *KeyLock) acquireLease(ctx context.Context, key string) (string, error) {
	if l.client == nil {
		return "", nil
	}
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, "lock:"+key, token, l.ttl).Result()
		if err != nil {
			// Redis unreachable: fall back to the process-local mutex.
			return "", nil
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

func (l *KeyLock) releaseLease(key, token string) {
	if l.client == nil || token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	current, err := l.client.Get(ctx, "lock:"+key).Result()
	if err != nil || current != token {
		return
	}
	_ = l.client.Del(ctx, "lock:"+key).Err()
}
