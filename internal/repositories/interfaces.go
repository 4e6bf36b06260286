package repositories

import (
	"context"
	"educate/internal/models"
)

// UserRepository manages user accounts and contributor rankings.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id int64) error
	Search(ctx context.Context, filter models.UserFilter, params models.PaginationParams) ([]models.PublicUser, int, error)
	GetStats(ctx context.Context, userID int64) (*models.UserStats, error)
	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// ResourceRepository manages resources and their votes, bookmarks and comments.
type ResourceRepository interface {
	Create(ctx context.Context, resource *models.Resource) error
	GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error)
	List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams, viewerID int64) ([]models.Resource, int, error)
	Update(ctx context.Context, resource *models.Resource) error
	Delete(ctx context.Context, id int64) error
	GetFiles(ctx context.Context, resourceID int64) ([]models.ResourceFile, error)
	GetFile(ctx context.Context, resourceID, fileID int64) (*models.ResourceFile, error)
	IncrementViews(ctx context.Context, id int64) error
	IncrementDownloads(ctx context.Context, id int64) error
	Vote(ctx context.Context, resourceID, userID int64, value models.VoteValue) (*models.VoteTally, *string, error)
	ToggleBookmark(ctx context.Context, resourceID, userID int64) (bool, int, error)
	ListBookmarked(ctx context.Context, userID int64, params models.PaginationParams) ([]models.Resource, int, error)
	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, resourceID int64, params models.PaginationParams) ([]models.Comment, int, error)
}
