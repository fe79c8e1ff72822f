package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/user-directory/internal/domain"
)

// Records live in a hash keyed by id; a list keeps insertion order.
// Every mutation touches both keys inside one Lua script.
var (
	insertUserScript = redis.NewScript(`
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 1 then
  redis.call('RPUSH', KEYS[2], ARGV[1])
  return 1
end
return 0`)

	updateUserScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
  redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
  return 1
end
return 0`)

	deleteUserScript = redis.NewScript(`
local removed = redis.call('HDEL', KEYS[1], ARGV[1])
if removed == 1 then
  redis.call('LREM', KEYS[2], 0, ARGV[1])
end
return removed`)
)

type redisUserRecord struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Age       int    `json:"age"`
	Email     string `json:"email"`
}

type redisUserStore struct {
	client   *redis.Client
	usersKey string
	orderKey string
}

// NewRedisUserStore returns a Redis-backed implementation using keys under prefix.
func NewRedisUserStore(client *redis.Client, prefix string) UserStore {
	if prefix == "" {
		prefix = "user-directory"
	}
	return &redisUserStore{
		client:   client,
		usersKey: prefix + ":users",
		orderKey: prefix + ":order",
	}
}

func (r *redisUserStore) SelectAll(ctx context.Context) ([]domain.User, error) {
	var (
		orderCmd *redis.StringSliceCmd
		usersCmd *redis.MapStringStringCmd
	)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		orderCmd = pipe.LRange(ctx, r.orderKey, 0, -1)
		usersCmd = pipe.HGetAll(ctx, r.usersKey)
		return nil
	})
	if err != nil {
		return nil, domain.NewStorageError("select all", err)
	}

	raw := usersCmd.Val()
	users := make([]domain.User, 0, len(raw))
	for _, id := range orderCmd.Val() {
		payload, ok := raw[id]
		if !ok {
			continue
		}
		user, err := decodeRedisUser(payload)
		if err != nil {
			return nil, domain.NewStorageError("select all", err)
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *redisUserStore) SelectByID(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	payload, err := r.client.HGet(ctx, r.usersKey, id.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, domain.NewStorageError("select by id", err)
	}
	user, err := decodeRedisUser(payload)
	if err != nil {
		return domain.User{}, false, domain.NewStorageError("select by id", err)
	}
	return user, true, nil
}

func (r *redisUserStore) Insert(ctx context.Context, id uuid.UUID, user domain.User) (int, error) {
	user.ID = id
	payload, err := encodeRedisUser(user)
	if err != nil {
		return 0, domain.NewStorageError("insert", err)
	}
	n, err := insertUserScript.Run(ctx, r.client, []string{r.usersKey, r.orderKey}, id.String(), payload).Int()
	if err != nil {
		return 0, domain.NewStorageError("insert", err)
	}
	return n, nil
}

func (r *redisUserStore) Update(ctx context.Context, user domain.User) (int, error) {
	payload, err := encodeRedisUser(user)
	if err != nil {
		return 0, domain.NewStorageError("update", err)
	}
	n, err := updateUserScript.Run(ctx, r.client, []string{r.usersKey}, user.ID.String(), payload).Int()
	if err != nil {
		return 0, domain.NewStorageError("update", err)
	}
	return n, nil
}

func (r *redisUserStore) DeleteByID(ctx context.Context, id uuid.UUID) (int, error) {
	n, err := deleteUserScript.Run(ctx, r.client, []string{r.usersKey, r.orderKey}, id.String()).Int()
	if err != nil {
		return 0, domain.NewStorageError("delete", err)
	}
	return n, nil
}

func encodeRedisUser(user domain.User) (string, error) {
	b, err := json.Marshal(redisUserRecord{
		ID:        user.ID.String(),
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Gender:    string(user.Gender),
		Age:       user.Age,
		Email:     user.Email,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeRedisUser(payload string) (domain.User, error) {
	var rec redisUserRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return domain.User{}, err
	}
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return domain.User{}, err
	}
	return domain.User{
		ID:        id,
		FirstName: rec.FirstName,
		LastName:  rec.LastName,
		Gender:    domain.Gender(rec.Gender),
		Age:       rec.Age,
		Email:     rec.Email,
	}, nil
}
