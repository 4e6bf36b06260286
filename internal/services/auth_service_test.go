package services

import (
	"context"
	"testing"
	"time"

	"educate/internal/config"
	"educate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService(users *mockUserRepository) AuthService {
	cfg := &config.AuthConfig{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BCryptCost: 10,
	}
	return NewAuthService(users, cfg, zap.NewNop())
}

func registerRequest() *RegisterRequest {
	return &RegisterRequest{
		Username: "amina",
		Email:    "amina@uni.edu",
		Password: "correct-horse",
	}
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and issues a token", func(t *testing.T) {
		users := newMockUserRepository()
		svc := newTestAuthService(users)

		result, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)
		require.NotNil(t, result.User)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, models.RoleStudent, result.User.Role)
		assert.NotEqual(t, "correct-horse", result.User.PasswordHash)
	})

	t.Run("rejects duplicate email or username", func(t *testing.T) {
		users := newMockUserRepository()
		svc := newTestAuthService(users)

		_, err := svc.Register(ctx, registerRequest())
		require.NoError(t, err)

		_, err = svc.Register(ctx, registerRequest())
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc := newTestAuthService(newMockUserRepository())

		req := registerRequest()
		req.Password = "abc"
		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "VALIDATION_ERROR", serviceErr.Type)
		assert.Contains(t, serviceErr.Details, "password")
	})

	t.Run("rejects non alphanumeric usernames", func(t *testing.T) {
		svc := newTestAuthService(newMockUserRepository())

		req := registerRequest()
		req.Username = "not a username"
		_, err := svc.Register(ctx, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	users := newMockUserRepository()
	svc := newTestAuthService(users)

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	t.Run("valid credentials succeed", func(t *testing.T) {
		result, err := svc.Login(ctx, &LoginRequest{Email: "amina@uni.edu", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "amina", result.User.Username)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Email: "amina@uni.edu", Password: "wrong"})
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "UNAUTHORIZED", serviceErr.Type)
		assert.Equal(t, "Invalid credentials", serviceErr.Message)
	})

	t.Run("unknown email gets the same message", func(t *testing.T) {
		_, err := svc.Login(ctx, &LoginRequest{Email: "nobody@uni.edu", Password: "whatever"})
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "UNAUTHORIZED", serviceErr.Type)
		assert.Equal(t, "Invalid credentials", serviceErr.Message)
	})

	t.Run("deactivated accounts cannot sign in", func(t *testing.T) {
		deactivated := &models.User{
			Username:     "gone",
			Email:        "gone@uni.edu",
			PasswordHash: "x",
			Role:         models.RoleStudent,
		}
		require.NoError(t, users.Create(ctx, deactivated))
		deactivated.IsActive = false

		_, err := svc.Login(ctx, &LoginRequest{Email: "gone@uni.edu", Password: "whatever"})
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "UNAUTHORIZED", serviceErr.Type)
	})
}

func TestAuthService_ValidateToken(t *testing.T) {
	ctx := context.Background()
	users := newMockUserRepository()
	svc := newTestAuthService(users)

	result, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	t.Run("round trips a freshly issued token", func(t *testing.T) {
		user, err := svc.ValidateToken(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, user.ID)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := svc.ValidateToken(ctx, "not.a.token")
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "UNAUTHORIZED", serviceErr.Type)
	})

	t.Run("rejects tokens signed with another secret", func(t *testing.T) {
		other := NewAuthService(users, &config.AuthConfig{
			JWTSecret:  "different-secret",
			JWTExpiry:  time.Hour,
			BCryptCost: 10,
		}, zap.NewNop())

		forged, err := other.Register(ctx, &RegisterRequest{
			Username: "mallory",
			Email:    "mallory@uni.edu",
			Password: "sneaky-pass",
		})
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, forged.Token)
		require.Error(t, err)
	})
}
