package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/wayfinder"
	"github.com/aretw0/wayfinder/pkg/adapters/memory"
	"github.com/aretw0/wayfinder/pkg/adapters/redis"
	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/aretw0/wayfinder/pkg/ports"
)

var lockCfg = wayfinder.Config{BaseURL: "http://abc.com:123", Series: []string{"xenial"}}

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(lockCfg, memory.NewStore())
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, _ = mgr.Create(ctx, sid, "")
		_ = mgr.Delete(ctx, sid)
	}

	if lockCount := len(mgr.locks); lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	assert.Empty(t, mgr.sessions)
}

type recordingLocker struct {
	ports.DistributedLocker
	ttls []time.Duration
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.ttls = append(l.ttls, ttl)
	return l.DistributedLocker.Lock(ctx, key, ttl)
}

func TestManager_DistributedLock(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewFromClient(client)
	locker := &recordingLocker{DistributedLocker: redis.NewLocker(client, "wayfinder:")}
	mgr := NewManager(lockCfg, store, WithLocker(locker), WithLockTTL(5*time.Second))
	ctx := context.Background()

	_, err := mgr.Create(ctx, "s1", "")
	require.NoError(t, err)
	_, err = mgr.ChangeState(ctx, "s1", domain.Tree{"profile": "ant"})
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, locker.ttls)
	assert.False(t, mr.Exists("wayfinder:lock:s1"), "lock must be released")

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestManager_LockFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	locker := redis.NewLocker(client, "wayfinder:")
	held, err := locker.Lock(context.Background(), "s1", time.Minute)
	require.NoError(t, err)
	defer func() { _ = held(context.Background()) }()

	mgr := NewManager(lockCfg, memory.NewStore(), WithLocker(locker))
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	_, err = mgr.Create(ctx, "s1", "")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
