package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogapi/internal/domain"
	"blogapi/internal/repository/record"
)

func newTestAuthService(t *testing.T, ttl time.Duration) AuthService {
	t.Helper()

	repo := record.NewUserRepository(record.NewMemoryBackend())
	require.NoError(t, repo.Init(context.Background()))
	return NewAuthService(repo, "test-secret", ttl)
}

func TestRegister(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash, "hash must not leak out of the service")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice", "other")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "pw1")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Register(ctx, "alice", "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice", "pw1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "pw1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueAndVerifyToken(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	token, err := svc.IssueToken("alice")
	require.NoError(t, err)

	username, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestAuthService(t, -time.Second)

	token, err := svc.IssueToken("alice")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuing := newTestAuthService(t, time.Hour)
	verifying := NewAuthService(
		record.NewUserRepository(record.NewMemoryBackend()),
		"another-secret",
		time.Hour,
	)

	token, err := issuing.IssueToken("alice")
	require.NoError(t, err)

	_, err = verifying.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenMalformed(t *testing.T) {
	svc := newTestAuthService(t, time.Hour)

	_, err := svc.VerifyToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
