package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"stockroom/internal/models"
)

func init() { Cost = bcrypt.MinCost }

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Session{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	assert.NotEqual(t, "admin123", hash)
	assert.NoError(t, CheckPassword(hash, "admin123"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret")
	raw, err := tokens.Sign("alice", []string{"Admin"}, "jti-1", time.Hour)
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, []string{"Admin"}, claims.Roles)
	assert.Equal(t, "jti-1", claims.JWTID)
	assert.True(t, claims.HasRole("Manager", "Admin"))
	assert.False(t, claims.HasRole("Viewer"))
}

func TestTokensRejectsForeignAndExpired(t *testing.T) {
	tokens := NewTokens("secret")
	raw, err := NewTokens("other").Sign("alice", nil, "x", time.Hour)
	require.NoError(t, err)
	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := tokens.Sign("alice", nil, "x", -time.Minute)
	require.NoError(t, err)
	_, err = tokens.Verify(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDBSessionsLifecycle(t *testing.T) {
	ctx := context.Background()
	sessions := NewDBSessions(setupTestDB(t))

	sess, err := sessions.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)
	got, err := sessions.Lookup(ctx, sess.JTI)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, sessions.Revoke(ctx, sess.JTI))
	_, err = sessions.Lookup(ctx, sess.JTI)
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = sessions.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDBSessionsRevokeUser(t *testing.T) {
	ctx := context.Background()
	sessions := NewDBSessions(setupTestDB(t))
	first, err := sessions.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)
	second, err := sessions.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)
	other, err := sessions.Create(ctx, "bob", time.Hour)
	require.NoError(t, err)

	require.NoError(t, sessions.RevokeUser(ctx, "alice"))
	for _, jti := range []string{first.JTI, second.JTI} {
		_, err = sessions.Lookup(ctx, jti)
		assert.ErrorIs(t, err, ErrSessionExpired)
	}
	_, err = sessions.Lookup(ctx, other.JTI)
	assert.NoError(t, err)
}

func TestDBSessionsExpire(t *testing.T) {
	ctx := context.Background()
	sessions := NewDBSessions(setupTestDB(t))
	sess, err := sessions.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)

	sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = sessions.Lookup(ctx, sess.JTI)
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRedisSessionsEmptyJTI(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer rdb.Close()
	_, err := NewRedisSessions(rdb).Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticateMiddleware(t *testing.T) {
	ctx := context.Background()
	tokens := NewTokens("secret")
	sessions := NewDBSessions(setupTestDB(t))
	sess, err := sessions.Create(ctx, "alice", time.Hour)
	require.NoError(t, err)
	raw, err := tokens.Sign("alice", []string{"User"}, sess.JTI, time.Hour)
	require.NoError(t, err)

	var seen Claims
	h := Authenticate(tokens, sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = FromContext(r.Context())
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + raw, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
	assert.Equal(t, "alice", seen.Subject)

	require.NoError(t, sessions.Revoke(ctx, sess.JTI))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole("Admin", "Manager")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	for role, want := range map[string]int{"Manager": http.StatusOK, "User": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(WithClaims(req.Context(), Claims{Subject: "x", Roles: []string{role}}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}
