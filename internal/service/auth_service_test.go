package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/horno-sanmarino/bakery-api/internal/auth"
	"github.com/horno-sanmarino/bakery-api/internal/config"
	"github.com/horno-sanmarino/bakery-api/internal/domain"
	"github.com/horno-sanmarino/bakery-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(&config.AuthConfig{
		JWTSecret: "test-signing-secret",
		TokenTTL:  60,
		Issuer:    "bakery-api-test",
	})
	require.NoError(t, err)
	return NewAuthService(repository.NewUserRepository(db), issuer, zap.NewNop())
}

func seedUser(t *testing.T, db *gorm.DB, email, password string, role domain.UserRole, active bool) *domain.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  "Usuario de Prueba",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, db.Create(user).Error)
	if !active {
		// the column default is true, so deactivation must be an explicit update
		require.NoError(t, db.Model(user).Update("is_active", false).Error)
		user.IsActive = false
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	ctx := context.Background()

	user := seedUser(t, db, "ana@hornosanmarino.ec", "secreto123", domain.RoleProduction, true)

	resp, err := svc.Login(ctx, &domain.LoginRequest{
		Email:    "ana@hornosanmarino.ec",
		Password: "secreto123",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.False(t, resp.ExpiresAt.IsZero())
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, string(domain.RoleProduction), resp.User.Role)
}

func TestAuthService_Login_EmailIsCaseInsensitive(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)

	seedUser(t, db, "ana@hornosanmarino.ec", "secreto123", domain.RoleProduction, true)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "Ana@HornoSanMarino.ec",
		Password: "secreto123",
	})
	assert.NoError(t, err)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	ctx := context.Background()

	seedUser(t, db, "ana@hornosanmarino.ec", "secreto123", domain.RoleProduction, true)

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    "ana@hornosanmarino.ec",
			Password: "incorrecta",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, &domain.LoginRequest{
			Email:    "nadie@hornosanmarino.ec",
			Password: "secreto123",
		})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestAuthService_Login_InactiveUser(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)

	seedUser(t, db, "ex@hornosanmarino.ec", "secreto123", domain.RoleSales, false)

	_, err := svc.Login(context.Background(), &domain.LoginRequest{
		Email:    "ex@hornosanmarino.ec",
		Password: "secreto123",
	})
	assert.ErrorIs(t, err, ErrUserInactive)
}

func TestAuthService_Me(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestAuthService(t, db)
	ctx := context.Background()

	user := seedUser(t, db, "ana@hornosanmarino.ec", "secreto123", domain.RoleAdmin, true)

	dto, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "ana@hornosanmarino.ec", dto.Email)
	assert.Equal(t, string(domain.RoleAdmin), dto.Role)

	_, err = svc.Me(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secreto123")
	require.NoError(t, err)
	assert.NotEqual(t, "secreto123", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secreto123")))
}
