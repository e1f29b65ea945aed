package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/config"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(t *testing.T, ttlMinutes int) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(&config.AuthConfig{
		JWTSecret: "test-signing-secret",
		TokenTTL:  ttlMinutes,
		Issuer:    "bakery-api-test",
	})
	require.NoError(t, err)
	return issuer
}

func testUser() *domain.User {
	return &domain.User{
		BaseModel:   domain.BaseModel{ID: uuid.New()},
		Email:       "ana@hornosanmarino.ec",
		DisplayName: "Ana",
		Role:        domain.RoleProduction,
	}
}

func TestTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer(&config.AuthConfig{})
	assert.Error(t, err)
}

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuer := newTestIssuer(t, 60)
	user := testUser()
	now := time.Now().UTC()

	token, expiresAt, err := issuer.Issue(user, now)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, now.Add(60*time.Minute), expiresAt, time.Second)

	uc, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, uc.UserID)
	assert.Equal(t, user.Email, uc.Email)
	assert.Equal(t, user.DisplayName, uc.DisplayName)
	assert.Equal(t, domain.RoleProduction, uc.Role)
}

func TestTokenIssuer_ExpiredToken(t *testing.T) {
	issuer := newTestIssuer(t, 30)

	token, _, err := issuer.Issue(testUser(), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)

	_, err = issuer.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(t, 30)
	token, _, err := issuer.Issue(testUser(), time.Now().UTC())
	require.NoError(t, err)

	other, err := NewTokenIssuer(&config.AuthConfig{
		JWTSecret: "a-different-secret",
		TokenTTL:  30,
		Issuer:    "bakery-api-test",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongIssuer(t *testing.T) {
	issuer := newTestIssuer(t, 30)
	token, _, err := issuer.Issue(testUser(), time.Now().UTC())
	require.NoError(t, err)

	other, err := NewTokenIssuer(&config.AuthConfig{
		JWTSecret: "test-signing-secret",
		TokenTTL:  30,
		Issuer:    "someone-else",
	})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_GarbageToken(t *testing.T) {
	issuer := newTestIssuer(t, 30)

	_, err := issuer.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
