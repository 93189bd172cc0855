package otp

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"subscriber_notification_service/internal/app"

	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// NewRedisConnection creates a Redis client and pings it.
func NewRedisConnection(addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// RedisStore keeps pending OTP sessions in Redis. Expiry is delegated to
// Redis TTLs, so there is no sweeping job.
type RedisStore struct {
	client *goredis.Client
}

func NewRedisStore(client *goredis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, sessionID string, session app.OTPSession, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, keyPrefix+sessionID, payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (app.OTPSession, error) {
	raw, err := s.client.Get(ctx, keyPrefix+sessionID).Bytes()
	if errors.Is(err, goredis.Nil) {
		return app.OTPSession{}, app.ErrOTPSessionNotFound
	}
	if err != nil {
		return app.OTPSession{}, err
	}
	var session app.OTPSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return app.OTPSession{}, err
	}
	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, keyPrefix+sessionID).Err()
}
