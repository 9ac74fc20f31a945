package cache

import (
	"context"
	"testing"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestMemorySubmitLockBlocksSameLead(t *testing.T) {
	ctx := context.Background()
	lock := NewMemorySubmitLock()

	release, err := lock.Acquire(ctx, "lead-1")
	require.NoError(t, err)

	_, err = lock.Acquire(ctx, "lead-1")
	assert.ErrorIs(t, err, entity.ErrFollowupInFlight)

	other, err := lock.Acquire(ctx, "lead-2")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := lock.Acquire(ctx, "lead-1")
	require.NoError(t, err)
	again()
}

func TestRedisSubmitLockLogsFailedRelease(t *testing.T) {
	client := goRedis.NewClient(&goRedis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	core, logs := observer.New(zap.WarnLevel)
	lock := NewRedisSubmitLock(client, time.Second, zap.New(core))

	lock.release(submitKeyPrefix+"lead-1", "token")

	entries := logs.FilterMessageSnippet("falha ao liberar lock").All()
	require.Len(t, entries, 1)
	assert.Equal(t, submitKeyPrefix+"lead-1", entries[0].ContextMap()["key"])
}
