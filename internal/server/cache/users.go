package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/logging"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const userKeyPrefix = "user:"

// cachedUser is the cached projection of models.User; it never carries the
// password hash.
type cachedUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	UserName  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RedisUserCache caches users as JSON under "user:<id>".
type RedisUserCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    logging.Logger
}

func NewRedisUserCache(client redis.Cmdable, ttl time.Duration, log logging.Logger) *RedisUserCache {
	return &RedisUserCache{client: client, ttl: ttl, log: log}
}

func (c *RedisUserCache) Get(ctx context.Context, id string) (*models.User, error) {
	data, err := c.client.Get(ctx, userKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		c.log.Warn(ctx, "user cache get failed", "user_id", id, "error", err)
		return nil, err
	}

	var cu cachedUser
	if err := json.Unmarshal(data, &cu); err != nil {
		c.log.Warn(ctx, "user cache entry corrupt", "user_id", id, "error", err)
		return nil, err
	}
	return &models.User{
		ID:        cu.ID,
		Email:     cu.Email,
		UserName:  cu.UserName,
		AvatarURL: cu.AvatarURL,
		Confirmed: cu.Confirmed,
		CreatedAt: cu.CreatedAt,
		UpdatedAt: cu.UpdatedAt,
	}, nil
}

func (c *RedisUserCache) Set(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(cachedUser{
		ID:        u.ID,
		Email:     u.Email,
		UserName:  u.UserName,
		AvatarURL: u.AvatarURL,
		Confirmed: u.Confirmed,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, userKeyPrefix+u.ID, string(data), c.ttl).Err(); err != nil {
		c.log.Warn(ctx, "user cache set failed", "user_id", u.ID, "error", err)
		return err
	}
	return nil
}

func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, userKeyPrefix+id).Err(); err != nil {
		c.log.Warn(ctx, "user cache delete failed", "user_id", id, "error", err)
		return err
	}
	return nil
}

// NopUserCache never holds anything.
type NopUserCache struct{}

func (NopUserCache) Get(context.Context, string) (*models.User, error) { return nil, common.ErrorNotFound }
func (NopUserCache) Set(context.Context, *models.User) error           { return nil }
func (NopUserCache) Delete(context.Context, string) error              { return nil }
