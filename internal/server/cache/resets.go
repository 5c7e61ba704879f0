package cache

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/redis/go-redis/v9"
)

const resetKeyPrefix = "password_reset:"

// consumeScript deletes KEYS[1] only while it still holds ARGV[1].
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisResetTokens stores one reset token per user under
// "password_reset:<user id>" with the token's lifetime as TTL.
type RedisResetTokens struct {
	client redis.Cmdable
}

func NewRedisResetTokens(client redis.Cmdable) *RedisResetTokens {
	return &RedisResetTokens{client: client}
}

func (r *RedisResetTokens) Save(ctx context.Context, userID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, resetKeyPrefix+userID, token, ttl).Err()
}

// Consume removes the stored token of userID if it equals token. The check
// and the delete run as one script, so a token is consumed at most once.
func (r *RedisResetTokens) Consume(ctx context.Context, userID, token string) error {
	n, err := consumeScript.Run(ctx, r.client, []string{resetKeyPrefix + userID}, token).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type memoryToken struct {
	token   string
	expires time.Time
}

// MemoryResetTokens keeps reset tokens in process memory.
type MemoryResetTokens struct {
	mu     sync.Mutex
	tokens map[string]memoryToken
	now    func() time.Time
}

func NewMemoryResetTokens() *MemoryResetTokens {
	return &MemoryResetTokens{tokens: make(map[string]memoryToken), now: time.Now}
}

func (m *MemoryResetTokens) Save(_ context.Context, userID, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = memoryToken{token: token, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryResetTokens) Consume(_ context.Context, userID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[userID]
	if !ok {
		return common.ErrorNotFound
	}
	if !m.now().Before(t.expires) {
		delete(m.tokens, userID)
		return common.ErrorNotFound
	}
	if subtle.ConstantTimeCompare([]byte(t.token), []byte(token)) != 1 {
		return common.ErrorNotFound
	}
	delete(m.tokens, userID)
	return nil
}
