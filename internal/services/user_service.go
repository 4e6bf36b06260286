package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"educate/internal/cache"
	"educate/internal/models"
	"educate/internal/repositories"
	"educate/internal/validation"

	"go.uber.org/zap"
)

const (
	leaderboardCacheTTL = 2 * time.Minute
	recentActivityLimit = 5
)

type userService struct {
	users     repositories.UserRepository
	resources repositories.ResourceRepository
	cache     cache.Cache
	logger    *zap.Logger
}

// NewUserService creates the user service.
func NewUserService(
	users repositories.UserRepository,
	resources repositories.ResourceRepository,
	cacheClient cache.Cache,
	logger *zap.Logger,
) UserService {
	return &userService{
		users:     users,
		resources: resources,
		cache:     cacheClient,
		logger:    logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to load user")
	}
	if user == nil || !user.IsActive {
		return nil, NewNotFoundError("User not found")
	}

	stats, err := s.users.GetStats(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to load user stats")
	}

	recent, _, err := s.resources.List(ctx,
		models.ResourceFilter{AuthorID: userID, Status: models.StatusApproved},
		models.PaginationParams{Page: 1, Limit: recentActivityLimit, SortBy: "createdAt", SortOrder: "desc"},
		0,
	)
	if err != nil {
		return nil, NewInternalError("Failed to load recent resources")
	}

	return &Profile{
		User:            user.PublicProfile(),
		Stats:           stats,
		RecentResources: recent,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}
	if req.Year != nil && !models.ValidYear(*req.Year) {
		return nil, NewValidationError("Invalid year of study", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to load user")
	}
	if user == nil {
		return nil, NewNotFoundError("User not found")
	}

	if req.University != nil {
		user.University = req.University
	}
	if req.Course != nil {
		user.Course = req.Course
	}
	if req.Year != nil {
		user.Year = req.Year
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError("User not found")
		}
		return nil, NewInternalError("Failed to update profile")
	}
	return user, nil
}

func (s *userService) Search(ctx context.Context, filter models.UserFilter, params models.PaginationParams) (*models.PaginatedResponse[models.PublicUser], error) {
	if filter.Search == "" && filter.University == "" && filter.Course == "" {
		return nil, NewValidationError("At least one search filter is required", nil)
	}
	users, total, err := s.users.Search(ctx, filter, params)
	if err != nil {
		return nil, NewInternalError("Failed to search users")
	}
	return paginate(users, params, total), nil
}

func (s *userService) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	key := fmt.Sprintf("%s%d", leaderboardCachePrefix, limit)
	var cached []models.LeaderboardEntry
	if cache.GetJSON(ctx, s.cache, key, &cached) {
		return cached, nil
	}

	entries, err := s.users.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, NewInternalError("Failed to load leaderboard")
	}

	if err := cache.SetJSON(ctx, s.cache, key, entries, leaderboardCacheTTL); err != nil {
		s.logger.Warn("Failed to cache leaderboard", zap.Error(err))
	}
	return entries, nil
}

func (s *userService) GetDashboard(ctx context.Context, userID int64) (*Dashboard, error) {
	stats, err := s.users.GetStats(ctx, userID)
	if err != nil {
		return nil, NewInternalError("Failed to load user stats")
	}

	recentParams := models.PaginationParams{
		Page: 1, Limit: recentActivityLimit, SortBy: "createdAt", SortOrder: "desc",
	}
	recent, _, err := s.resources.List(ctx,
		models.ResourceFilter{AuthorID: userID}, recentParams, userID)
	if err != nil {
		return nil, NewInternalError("Failed to load recent resources")
	}

	bookmarks, _, err := s.resources.ListBookmarked(ctx, userID, recentParams)
	if err != nil {
		return nil, NewInternalError("Failed to load recent bookmarks")
	}

	return &Dashboard{
		Stats:           stats,
		RecentResources: recent,
		RecentBookmarks: bookmarks,
	}, nil
}

func (s *userService) GetBookmarks(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Resource], error) {
	resources, total, err := s.resources.ListBookmarked(ctx, userID, params)
	if err != nil {
		return nil, NewInternalError("Failed to load bookmarks")
	}
	return paginate(resources, params, total), nil
}
