package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"educate/internal/config"
	"educate/internal/models"
	"educate/internal/repositories"
	"educate/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type authService struct {
	users  repositories.UserRepository
	config *config.AuthConfig
	logger *zap.Logger
}

// NewAuthService creates the authentication service.
func NewAuthService(users repositories.UserRepository, cfg *config.AuthConfig, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		config: cfg,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}
	if req.Year != nil && !models.ValidYear(*req.Year) {
		return nil, NewValidationError("Invalid year of study", nil)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		return nil, NewInternalError("Failed to check existing users")
	}
	if exists {
		return nil, NewValidationError("User with this email or username already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BCryptCost)
	if err != nil {
		return nil, NewInternalError("Failed to hash password")
	}

	user := &models.User{
		Username:     req.Username,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		University:   req.University,
		Course:       req.Course,
		Year:         req.Year,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Unique constraints catch the race the existence check misses.
		if strings.Contains(err.Error(), "duplicate key") {
			return nil, NewValidationError("User with this email or username already exists", nil)
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, NewInternalError("Failed to create user")
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, NewInternalError("Failed to generate token")
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
	)
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, NewInternalError("Failed to look up user")
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("Invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, NewUnauthorizedError("Invalid credentials")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn("Failed to update last login", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, NewInternalError("Failed to generate token")
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

func (s *authService) GetCurrentUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to look up user")
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}
	return user, nil
}

func (s *authService) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewUnauthorizedError("Invalid token claims")
	}
	subject, err := claims.GetSubject()
	if err != nil {
		return nil, NewUnauthorizedError("Invalid token claims")
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return nil, NewUnauthorizedError("Invalid token claims")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to look up user")
	}
	if user == nil || !user.IsActive {
		return nil, NewUnauthorizedError("Account is not active")
	}
	return user, nil
}

func (s *authService) generateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(s.config.JWTExpiry).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// validationError folds field messages into a validation ServiceError.
func validationError(fields map[string]string, err error) *ServiceError {
	serviceErr := NewValidationError("Validation failed", err)
	if len(fields) > 0 {
		details := make(map[string]interface{}, len(fields))
		for field, message := range fields {
			details[field] = message
		}
		serviceErr.Details = details
	}
	return serviceErr
}
