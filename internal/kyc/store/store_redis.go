package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"origen/internal/kyc"
	id "origen/pkg/domain"
	"origen/pkg/platform/sentinel"
)

const sessionKeyPrefix = "kyc:session:"

// RedisStore is the shared session store for multi-instance deployments.
// Every Save refreshes the TTL, so the expiry clock measures inactivity,
// not total session age.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, session *kyc.Session) error {
	return s.client.Set(ctx, sessionKeyPrefix+session.ID.String(), session, s.ttl).Err()
}

func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*kyc.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+sessionID.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var session kyc.Session
	if err := session.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID id.SessionID) error {
	return s.client.Del(ctx, sessionKeyPrefix+sessionID.String()).Err()
}
