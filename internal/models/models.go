package models

import (
	"time"
)

// ===============================
// ENUMERATIONS
// ===============================

// ResourceType classifies what kind of material a resource is.
type ResourceType string

const (
	ResourceTypeNotes          ResourceType = "notes"
	ResourceTypeBook           ResourceType = "book"
	ResourceTypeBlog           ResourceType = "blog"
	ResourceTypeRecommendation ResourceType = "recommendation"
	ResourceTypeProject        ResourceType = "project"
	ResourceTypeAssignment     ResourceType = "assignment"
	ResourceTypeResearchPaper  ResourceType = "research_paper"
)

// ResourceTypes lists every valid resource type.
var ResourceTypes = []ResourceType{
	ResourceTypeNotes,
	ResourceTypeBook,
	ResourceTypeBlog,
	ResourceTypeRecommendation,
	ResourceTypeProject,
	ResourceTypeAssignment,
	ResourceTypeResearchPaper,
}

// Difficulty grades how advanced a resource is.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ResourceStatus tracks the moderation state of a resource.
type ResourceStatus string

const (
	StatusPending  ResourceStatus = "pending"
	StatusApproved ResourceStatus = "approved"
	StatusRejected ResourceStatus = "rejected"
)

// UserRole defines the permission tier of an account.
type UserRole string

const (
	RoleStudent   UserRole = "student"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// Categories lists the engineering branches a resource can belong to.
var Categories = []string{
	"Computer Science",
	"Information Technology",
	"Electronics & Communication",
	"Electrical Engineering",
	"Mechanical Engineering",
	"Civil Engineering",
	"Chemical Engineering",
	"Aerospace Engineering",
	"Biomedical Engineering",
	"Industrial Engineering",
	"Mathematics",
	"Physics",
	"Chemistry",
	"General Engineering",
	"Other",
}

// Semesters lists the academic terms a resource can target.
var Semesters = []string{
	"1st Semester",
	"2nd Semester",
	"3rd Semester",
	"4th Semester",
	"5th Semester",
	"6th Semester",
	"7th Semester",
	"8th Semester",
	"All Semesters",
}

// Years lists the study years a user can declare.
var Years = []string{
	"1st Year",
	"2nd Year",
	"3rd Year",
	"4th Year",
	"Graduate",
}

// ===============================
// USER MODELS
// ===============================

// User represents a registered account.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	University   *string    `json:"university,omitempty" db:"university"`
	Course       *string    `json:"course,omitempty" db:"course"`
	Year         *string    `json:"year,omitempty" db:"year"`
	Bio          *string    `json:"bio,omitempty" db:"bio"`
	Avatar       *string    `json:"avatar,omitempty" db:"avatar"`
	Reputation   int        `json:"reputation" db:"reputation"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLogin    *time.Time `json:"lastLogin,omitempty" db:"last_login"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// PublicProfile strips fields that must not leave the server.
func (u *User) PublicProfile() *PublicUser {
	return &PublicUser{
		ID:         u.ID,
		Username:   u.Username,
		University: u.University,
		Course:     u.Course,
		Year:       u.Year,
		Bio:        u.Bio,
		Avatar:     u.Avatar,
		Reputation: u.Reputation,
		CreatedAt:  u.CreatedAt,
	}
}

// PublicUser is the profile shape exposed to other users.
type PublicUser struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	University *string   `json:"university,omitempty"`
	Course     *string   `json:"course,omitempty"`
	Year       *string   `json:"year,omitempty"`
	Bio        *string   `json:"bio,omitempty"`
	Avatar     *string   `json:"avatar,omitempty"`
	Reputation int       `json:"reputation"`
	CreatedAt  time.Time `json:"createdAt"`
}

// UserStats aggregates a user's contribution activity.
type UserStats struct {
	ResourceCount  int `json:"resourceCount"`
	TotalUpvotes   int `json:"totalUpvotes"`
	TotalDownloads int `json:"totalDownloads"`
	TotalViews     int `json:"totalViews"`
	BookmarkCount  int `json:"bookmarkCount"`
	CommentCount   int `json:"commentCount"`
}

// LeaderboardEntry is one row of the contributor leaderboard.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        int64   `json:"userId"`
	Username      string  `json:"username"`
	Avatar        *string `json:"avatar,omitempty"`
	University    *string `json:"university,omitempty"`
	Reputation    int     `json:"reputation"`
	ResourceCount int     `json:"resourceCount"`
	TotalUpvotes  int     `json:"totalUpvotes"`
}

// ===============================
// RESOURCE MODELS
// ===============================

// Resource is an uploaded or linked study material.
type Resource struct {
	ID          int64          `json:"id" db:"id"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Type        ResourceType   `json:"type" db:"type"`
	Category    string         `json:"category" db:"category"`
	Subject     string         `json:"subject" db:"subject"`
	Semester    *string        `json:"semester,omitempty" db:"semester"`
	Difficulty  Difficulty     `json:"difficulty" db:"difficulty"`
	Tags        StringArray    `json:"tags" db:"tags"`
	Status      ResourceStatus `json:"status" db:"status"`
	AuthorID    int64          `json:"-" db:"author_id"`
	Author      *PublicUser    `json:"author,omitempty"`
	Files       []ResourceFile `json:"files"`
	Links       []ExternalLink `json:"externalLinks"`
	Upvotes     int            `json:"-" db:"upvotes"`
	Downvotes   int            `json:"-" db:"downvotes"`
	Score       int            `json:"-" db:"score"`
	Votes       VoteTally      `json:"votes"`
	Views       int            `json:"views" db:"views"`
	Downloads   int            `json:"downloads" db:"downloads"`
	Bookmarks   int            `json:"bookmarkCount" db:"bookmarks"`
	UserVote    *string        `json:"userVote,omitempty"`
	Bookmarked  *bool          `json:"isBookmarked,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time      `json:"updatedAt" db:"updated_at"`
}

// FillVotes copies the denormalized counters into the serialized tally.
func (r *Resource) FillVotes() {
	r.Votes = VoteTally{
		Upvotes:   r.Upvotes,
		Downvotes: r.Downvotes,
		Score:     r.Score,
	}
}

// VoteTally is the aggregate voting state of a resource.
type VoteTally struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Score     int `json:"score"`
}

// ResourceFile is a hosted file attached to a resource.
type ResourceFile struct {
	ID         int64     `json:"id" db:"id"`
	ResourceID int64     `json:"-" db:"resource_id"`
	FileName   string    `json:"fileName" db:"file_name"`
	FileURL    string    `json:"fileUrl" db:"file_url"`
	PublicID   string    `json:"-" db:"public_id"`
	FileSize   int64     `json:"fileSize" db:"file_size"`
	MimeType   string    `json:"mimeType" db:"mime_type"`
	UploadedAt time.Time `json:"uploadedAt" db:"uploaded_at"`
}

// ExternalLink is an outbound reference attached to a resource.
type ExternalLink struct {
	ID          int64   `json:"id" db:"id"`
	ResourceID  int64   `json:"-" db:"resource_id"`
	Title       string  `json:"title" db:"title"`
	URL         string  `json:"url" db:"url"`
	Description *string `json:"description,omitempty" db:"description"`
}

// Comment is a user remark on a resource.
type Comment struct {
	ID         int64       `json:"id" db:"id"`
	ResourceID int64       `json:"resourceId" db:"resource_id"`
	UserID     int64       `json:"-" db:"user_id"`
	User       *PublicUser `json:"user,omitempty"`
	Text       string      `json:"content" db:"text"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
}

// UserFilter narrows user searches. Search matches username, university
// and course; the other fields match their column exactly.
type UserFilter struct {
	Search     string
	University string
	Course     string
}

// ResourceFilter narrows resource listings.
type ResourceFilter struct {
	Category   string
	Type       ResourceType
	Subject    string
	Semester   string
	Difficulty Difficulty
	Search     string
	AuthorID   int64
	Status     ResourceStatus
}

// VoteValue is the direction of a cast vote.
type VoteValue string

const (
	VoteUp   VoteValue = "upvote"
	VoteDown VoteValue = "downvote"
)

// ===============================
// PAGINATION MODELS
// ===============================

// PaginationParams carries validated paging and sorting inputs.
type PaginationParams struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"`
}

// Offset converts the page number into a row offset.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PaginationMeta describes one page of a paginated listing.
type PaginationMeta struct {
	CurrentPage  int  `json:"currentPage"`
	TotalPages   int  `json:"totalPages"`
	TotalItems   int  `json:"totalItems"`
	ItemsPerPage int  `json:"itemsPerPage"`
	HasNext      bool `json:"hasNext"`
	HasPrev      bool `json:"hasPrev"`
}

// PaginatedResponse wraps a page of results with its metadata.
type PaginatedResponse[T any] struct {
	Data       []T            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}
