package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"educate/internal/contextutils"
	"educate/internal/models"
	"educate/internal/response"
	"educate/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubAuthService accepts exactly one token and returns a fixed user for it.
type stubAuthService struct {
	token string
	user  *models.User
}

func (s *stubAuthService) Register(ctx context.Context, req *services.RegisterRequest) (*services.AuthResult, error) {
	return nil, services.NewInternalError("not implemented")
}

func (s *stubAuthService) Login(ctx context.Context, req *services.LoginRequest) (*services.AuthResult, error) {
	return nil, services.NewInternalError("not implemented")
}

func (s *stubAuthService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.user, nil
}

func (s *stubAuthService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if token == s.token {
		return s.user, nil
	}
	return nil, services.NewUnauthorizedError("Invalid or expired token")
}

func newStubAuth() *stubAuthService {
	return &stubAuthService{
		token: "good-token",
		user:  &models.User{ID: 42, Username: "amina", Role: models.RoleStudent, IsActive: true},
	}
}

// echoUserHandler reports whether a user made it onto the context.
func echoUserHandler(t *testing.T, wantUserID int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, wantUserID, contextutils.GetUserID(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireAuth(t *testing.T) {
	auth := newStubAuth()
	builder := response.NewBuilder(zap.NewNop())

	t.Run("missing header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/auth/me", nil)

		RequireAuth(auth, builder)(echoUserHandler(t, 0)).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
	})

	t.Run("malformed header is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Token abcdef")

		RequireAuth(auth, builder)(echoUserHandler(t, 0)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token is rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer forged")

		RequireAuth(auth, builder)(echoUserHandler(t, 0)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token reaches the handler with the user set", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/auth/me", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		RequireAuth(auth, builder)(echoUserHandler(t, 42)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOptionalAuth(t *testing.T) {
	auth := newStubAuth()

	t.Run("anonymous requests pass through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/resources", nil)

		OptionalAuth(auth)(echoUserHandler(t, 0)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid tokens are treated as anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/resources", nil)
		req.Header.Set("Authorization", "Bearer forged")

		OptionalAuth(auth)(echoUserHandler(t, 0)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid tokens attach the user", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/api/resources", nil)
		req.Header.Set("Authorization", "Bearer good-token")

		OptionalAuth(auth)(echoUserHandler(t, 42)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
