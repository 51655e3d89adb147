package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"stockroom/internal/models"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired/revoked")
)

// SessionStore tracks issued tokens by their JWT ID so they can be revoked
// before they expire.
type SessionStore interface {
	Create(ctx context.Context, username string, ttl time.Duration) (models.Session, error)
	Lookup(ctx context.Context, jti string) (models.Session, error)
	Revoke(ctx context.Context, jti string) error
	// RevokeUser ends every live session of username.
	RevokeUser(ctx context.Context, username string) error
}

type DBSessions struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBSessions(db *gorm.DB) *DBSessions { return &DBSessions{db: db, now: time.Now} }

func (s *DBSessions) Create(ctx context.Context, username string, ttl time.Duration) (models.Session, error) {
	now := s.now()
	sess := models.Session{JTI: uuid.NewString(), Username: username, ExpiresAt: now.Add(ttl), CreatedAt: now}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *DBSessions) Lookup(ctx context.Context, jti string) (models.Session, error) {
	var sess models.Session
	if jti == "" {
		return sess, ErrSessionNotFound
	}
	if err := s.db.WithContext(ctx).First(&sess, "jti = ?", jti).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return sess, ErrSessionNotFound
		}
		return sess, err
	}
	if sess.RevokedAt != nil || s.now().After(sess.ExpiresAt) {
		return sess, ErrSessionExpired
	}
	return sess, nil
}

func (s *DBSessions) Revoke(ctx context.Context, jti string) error {
	now := s.now()
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("jti = ? AND revoked_at IS NULL", jti).Update("revoked_at", now).Error
}

func (s *DBSessions) RevokeUser(ctx context.Context, username string) error {
	now := s.now()
	return s.db.WithContext(ctx).Model(&models.Session{}).
		Where("username = ? AND revoked_at IS NULL", username).Update("revoked_at", now).Error
}

// RedisSessions keeps each session under its own key with the session TTL,
// so expiry is handled by redis itself.
type RedisSessions struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisSessions(rdb redis.UniversalClient) *RedisSessions {
	return &RedisSessions{rdb: rdb, prefix: "stockroom:session:", now: time.Now}
}

func (s *RedisSessions) Create(ctx context.Context, username string, ttl time.Duration) (models.Session, error) {
	now := s.now()
	sess := models.Session{JTI: uuid.NewString(), Username: username, ExpiresAt: now.Add(ttl), CreatedAt: now}
	b, err := json.Marshal(sess)
	if err != nil {
		return models.Session{}, err
	}
	userKey := s.userKey(username)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, s.prefix+sess.JTI, b, ttl)
		p.SAdd(ctx, userKey, sess.JTI)
		p.Expire(ctx, userKey, ttl)
		return nil
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *RedisSessions) Lookup(ctx context.Context, jti string) (models.Session, error) {
	var sess models.Session
	if jti == "" {
		return sess, ErrSessionNotFound
	}
	b, err := s.rdb.Get(ctx, s.prefix+jti).Bytes()
	if errors.Is(err, redis.Nil) {
		return sess, ErrSessionNotFound
	}
	if err != nil {
		return sess, err
	}
	if err := json.Unmarshal(b, &sess); err != nil {
		return sess, fmt.Errorf("decode session: %w", err)
	}
	if s.now().After(sess.ExpiresAt) {
		return sess, ErrSessionExpired
	}
	return sess, nil
}

func (s *RedisSessions) Revoke(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, s.prefix+jti).Err()
}

// RevokeUser deletes the sessions listed in the user's index set.
func (s *RedisSessions) RevokeUser(ctx context.Context, username string) error {
	userKey := s.userKey(username)
	jtis, err := s.rdb.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(jtis)+1)
	for _, jti := range jtis {
		keys = append(keys, s.prefix+jti)
	}
	return s.rdb.Del(ctx, append(keys, userKey)...).Err()
}

func (s *RedisSessions) userKey(username string) string { return s.prefix + "user:" + username }
