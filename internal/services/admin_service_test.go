package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "jwt-test-secret"

func newTestAdmins(t *testing.T, revocations *RedisService) *AdminService {
	t.Helper()
	return NewAdminServiceWith(newTestDB(t), revocations, testJWTSecret, "admin-secret", time.Hour)
}

func TestCheckAdminSecret(t *testing.T) {
	svc := newTestAdmins(t, nil)
	assert.NoError(t, svc.CheckAdminSecret("admin-secret"))
	assert.ErrorIs(t, svc.CheckAdminSecret("admin-secreT"), ErrInvalidAdminSecret)
	assert.ErrorIs(t, svc.CheckAdminSecret(""), ErrInvalidAdminSecret)

	unset := NewAdminServiceWith(newTestDB(t), nil, testJWTSecret, "", time.Hour)
	assert.ErrorIs(t, unset.CheckAdminSecret(""), ErrInvalidAdminSecret)
}

func TestAdminRegisterLoginDelete(t *testing.T) {
	svc := newTestAdmins(t, nil)
	ctx := context.Background()

	admin, err := svc.Register(ctx, " Owner@Example.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", admin.Email)
	assert.NotEqual(t, "correct horse", admin.PasswordHash)

	_, err = svc.Register(ctx, "owner@example.com", "another")
	assert.ErrorIs(t, err, ErrAdminExists)

	_, err = svc.Login(ctx, "owner@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	session, err := svc.Login(ctx, "OWNER@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, admin.ID, session.Admin.ID)

	claims, err := svc.ValidateToken(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.AdminID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)

	require.NoError(t, svc.Delete(ctx, "owner@example.com"))
	assert.ErrorIs(t, svc.Delete(ctx, "owner@example.com"), ErrAdminNotFound)

	// the account can be recreated after a hard delete
	_, err = svc.Register(ctx, "owner@example.com", "correct horse")
	assert.NoError(t, err)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := newTestAdmins(t, nil)
	ctx := context.Background()
	admin, err := svc.Register(ctx, "owner@example.com", "pw")
	require.NoError(t, err)

	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }
	expired, _, err := svc.issueToken(admin)
	require.NoError(t, err)
	svc.now = time.Now

	_, err = svc.ValidateToken(ctx, expired)
	assert.ErrorIs(t, err, ErrSessionExpired)

	other := NewAdminServiceWith(newTestDB(t), nil, "other-secret", "", time.Hour)
	forged, _, err := other.issueToken(admin)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, AdminClaims{AdminID: admin.ID})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = svc.ValidateToken(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestDeletedAdminLosesSessions(t *testing.T) {
	svc := newTestAdmins(t, nil)
	ctx := context.Background()
	_, err := svc.Register(ctx, "owner@example.com", "pw")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "owner@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "owner@example.com"))
	_, err = svc.ValidateToken(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	// a recreated account gets a new id, the old token stays dead
	_, err = svc.Register(ctx, "owner@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.ValidateToken(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestLogoutWithoutRedisIsNoop(t *testing.T) {
	svc := newTestAdmins(t, NewRedisServiceWith(nil))
	ctx := context.Background()
	_, err := svc.Register(ctx, "owner@example.com", "pw")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "owner@example.com", "pw")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.ValidateToken(ctx, session.Token)
	assert.NoError(t, err)
}

// Needs a live Redis; set TEST_REDIS_URL to run.
func TestLogoutRevokesSession(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	t.Cleanup(func() { client.Close() })

	svc := newTestAdmins(t, NewRedisServiceWith(client))
	ctx := context.Background()
	_, err = svc.Register(ctx, "owner@example.com", "pw")
	require.NoError(t, err)

	session, err := svc.Login(ctx, "owner@example.com", "pw")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(ctx, session.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.ValidateToken(ctx, session.Token)
	assert.ErrorIs(t, err, ErrSessionRevoked)

	ttl, err := client.TTL(ctx, revokedSessionKey(claims.ID)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= time.Hour)
}

func TestRedisServiceWithoutClient(t *testing.T) {
	var cache *RedisService
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	assert.NoError(t, cache.SetJSON(ctx, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, cache.GetJSON(ctx, "k", &v), ErrCacheMiss)
	assert.NoError(t, cache.Delete(ctx, "k"))

	revoked, err := cache.IsSessionRevoked(ctx, "jti")
	assert.NoError(t, err)
	assert.False(t, revoked)
}
