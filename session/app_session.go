// Package session maps opaque bearer tokens to users. Tokens are minted by
// the identity service (or the dev bootstrap) and only looked up here.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrNoSession = errors.New("session not found")

type AppSessionStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAppSessionStore(rdb *redis.Client, ttl time.Duration) *AppSessionStore {
	return &AppSessionStore{rdb: rdb, ttl: ttl}
}

type AppSession struct {
	UserID    string `json:"uid"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

func key(token string) string      { return fmt.Sprintf("inv:sess:%s", token) }
func userSetKey(uid string) string { return fmt.Sprintf("inv:user_sessions:%s", uid) }

// NewToken returns 32 random hex bytes.
func NewToken() string {
	buf := make([]byte, 32)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func (s *AppSessionStore) Create(ctx context.Context, token, userID string) error {
	now := time.Now()
	b, err := json.Marshal(AppSession{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, key(token), b, s.ttl)
	pipe.SAdd(ctx, userSetKey(userID), token)
	pipe.Expire(ctx, userSetKey(userID), s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

// Get returns ErrNoSession for unknown or expired tokens.
func (s *AppSessionStore) Get(ctx context.Context, token string) (*AppSession, error) {
	b, err := s.rdb.Get(ctx, key(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var as AppSession
	if err := json.Unmarshal(b, &as); err != nil {
		return nil, err
	}
	return &as, nil
}

func (s *AppSessionStore) Delete(ctx context.Context, token string) error {
	as, _ := s.Get(ctx, token) // 忽略失败
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(token))
	if as != nil {
		pipe.SRem(ctx, userSetKey(as.UserID), token)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// 用户被删除后，撤销该用户的所有会话
func (s *AppSessionStore) RevokeAllForUser(ctx context.Context, userID string) error {
	tokens, err := s.rdb.SMembers(ctx, userSetKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	pipe := s.rdb.TxPipeline()
	for _, t := range tokens {
		pipe.Del(ctx, key(t))
	}
	pipe.Del(ctx, userSetKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
