package services

import (
	"context"

	"educate/internal/models"
)

// AuthService handles registration, login and token verification.
type AuthService interface {
	Register(ctx context.Context, req *RegisterRequest) (*AuthResult, error)
	Login(ctx context.Context, req *LoginRequest) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, userID int64) (*models.User, error)
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// UserService handles profiles, search and contributor rankings.
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, userID int64, req *UpdateProfileRequest) (*models.User, error)
	Search(ctx context.Context, filter models.UserFilter, params models.PaginationParams) (*models.PaginatedResponse[models.PublicUser], error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	GetDashboard(ctx context.Context, userID int64) (*Dashboard, error)
	GetBookmarks(ctx context.Context, userID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Resource], error)
}

// ResourceService handles the resource lifecycle and its engagement actions.
type ResourceService interface {
	Create(ctx context.Context, authorID int64, req *CreateResourceRequest) (*models.Resource, error)
	GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error)
	View(ctx context.Context, id, viewerID int64) (*models.Resource, error)
	List(ctx context.Context, req *ListResourcesRequest) (*models.PaginatedResponse[models.Resource], error)
	ListByAuthor(ctx context.Context, authorID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Resource], error)
	Update(ctx context.Context, id int64, actor *models.User, req *UpdateResourceRequest) (*models.Resource, error)
	Delete(ctx context.Context, id int64, actor *models.User) error
	Vote(ctx context.Context, resourceID, userID int64, req *VoteRequest) (*VoteOutcome, error)
	ToggleBookmark(ctx context.Context, resourceID, userID int64) (*BookmarkOutcome, error)
	AddComment(ctx context.Context, resourceID, userID int64, req *CommentRequest) (*models.Comment, error)
	ListComments(ctx context.Context, resourceID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Comment], error)
	Download(ctx context.Context, resourceID, fileID int64) (*DownloadOutcome, error)
}
