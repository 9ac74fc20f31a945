package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goRedis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xavierca1/imob-crm/internal/entity"
	"github.com/xavierca1/imob-crm/internal/logger"
)

const submitKeyPrefix = "followup:submit:"

// releaseScript só apaga a chave se ela ainda pertencer a quem a criou.
var releaseScript = goRedis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisSubmitLock garante um único envio de follow-up por lead entre instâncias.
// O TTL libera a chave se o processo morrer no meio do envio.
type RedisSubmitLock struct {
	client *goRedis.Client
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisSubmitLock(client *goRedis.Client, ttl time.Duration, log *zap.Logger) *RedisSubmitLock {
	if ttl <= 0 {
		ttl = 15 * time.Second
	}
	return &RedisSubmitLock{client: client, ttl: ttl, log: logger.OrNop(log)}
}

func (l *RedisSubmitLock) Acquire(ctx context.Context, leadID string) (func(), error) {
	key := submitKeyPrefix + leadID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("erro ao reservar envio no redis: %w", err)
	}
	if !ok {
		return nil, entity.ErrFollowupInFlight
	}

	return func() { l.release(key, token) }, nil
}

// release falha sem derrubar a operação: a chave expira sozinha após o TTL.
func (l *RedisSubmitLock) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		l.log.Warn("falha ao liberar lock de envio; lead bloqueado até o TTL",
			zap.String("key", key),
			zap.Duration("ttl", l.ttl),
			zap.Error(err),
		)
	}
}

// MemorySubmitLock é a versão de processo único.
type MemorySubmitLock struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewMemorySubmitLock() *MemorySubmitLock {
	return &MemorySubmitLock{inFlight: make(map[string]struct{})}
}

func (l *MemorySubmitLock) Acquire(ctx context.Context, leadID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.inFlight[leadID]; busy {
		return nil, entity.ErrFollowupInFlight
	}
	l.inFlight[leadID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.inFlight, leadID)
			l.mu.Unlock()
		})
	}, nil
}
