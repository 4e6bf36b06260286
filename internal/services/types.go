package services

import (
	"mime/multipart"

	"educate/internal/models"
)

// ===============================
// AUTH REQUESTS
// ===============================

// RegisterRequest carries new account details.
type RegisterRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=30,alphanum"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6,max=128"`
	University *string `json:"university,omitempty" validate:"omitempty,max=100"`
	Course     *string `json:"course,omitempty" validate:"omitempty,max=100"`
	Year       *string `json:"year,omitempty"`
}

// LoginRequest carries sign-in credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult pairs an authenticated user with their access token.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// ===============================
// USER REQUESTS
// ===============================

// UpdateProfileRequest carries editable profile fields. Nil means unchanged.
type UpdateProfileRequest struct {
	University *string `json:"university,omitempty" validate:"omitempty,max=100"`
	Course     *string `json:"course,omitempty" validate:"omitempty,max=100"`
	Year       *string `json:"year,omitempty"`
	Bio        *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	Avatar     *string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// Profile is the public view of a user with their contribution stats.
type Profile struct {
	User            *models.PublicUser `json:"user"`
	Stats           *models.UserStats  `json:"stats"`
	RecentResources []models.Resource  `json:"recentResources"`
}

// Dashboard aggregates the signed-in user's activity.
type Dashboard struct {
	Stats           *models.UserStats `json:"stats"`
	RecentResources []models.Resource `json:"recentResources"`
	RecentBookmarks []models.Resource `json:"recentBookmarks"`
}

// ===============================
// RESOURCE REQUESTS
// ===============================

// LinkInput is one external link submitted with a resource.
type LinkInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	URL         string  `json:"url" validate:"required,url"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// CreateResourceRequest carries a new resource submission.
type CreateResourceRequest struct {
	Title       string                  `json:"title" validate:"required,max=200"`
	Description string                  `json:"description" validate:"required,max=1000"`
	Type        models.ResourceType     `json:"type" validate:"required"`
	Category    string                  `json:"category" validate:"required"`
	Subject     string                  `json:"subject" validate:"required,max=100"`
	Semester    *string                 `json:"semester" validate:"required"`
	Difficulty  models.Difficulty       `json:"difficulty,omitempty"`
	Tags        []string                `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
	Links       []LinkInput             `json:"externalLinks,omitempty" validate:"omitempty,max=10,dive"`
	Files       []*multipart.FileHeader `json:"-"`
}

// UpdateResourceRequest carries edits to a resource. Nil means unchanged.
type UpdateResourceRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string            `json:"description,omitempty" validate:"omitempty,max=1000"`
	Category    *string            `json:"category,omitempty"`
	Subject     *string            `json:"subject,omitempty" validate:"omitempty,max=100"`
	Semester    *string            `json:"semester,omitempty"`
	Difficulty  *models.Difficulty `json:"difficulty,omitempty"`
	Tags        []string           `json:"tags,omitempty" validate:"omitempty,max=10,dive,max=30"`
}

// ListResourcesRequest combines listing filters with pagination.
type ListResourcesRequest struct {
	Filter     models.ResourceFilter
	Pagination models.PaginationParams
	ViewerID   int64
}

// VoteRequest carries a vote direction.
type VoteRequest struct {
	Value string `json:"voteType" validate:"required,oneof=upvote downvote"`
}

// CommentRequest carries a new comment body.
type CommentRequest struct {
	Text string `json:"content" validate:"required,min=1,max=500"`
}

// VoteOutcome is the post-vote state returned to the caller.
type VoteOutcome struct {
	Votes    *models.VoteTally `json:"votes"`
	UserVote *string           `json:"userVote"`
}

// BookmarkOutcome is the post-toggle bookmark state.
type BookmarkOutcome struct {
	Bookmarked    bool `json:"isBookmarked"`
	BookmarkCount int  `json:"bookmarkCount"`
}

// DownloadOutcome points the client at a hosted file.
type DownloadOutcome struct {
	FileName    string `json:"fileName"`
	DownloadURL string `json:"downloadUrl"`
	MimeType    string `json:"mimeType"`
}
