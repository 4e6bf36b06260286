package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"educate/internal/cache"
	"educate/internal/config"
	"educate/internal/models"
	"educate/internal/repositories"
	"educate/internal/utils"
	"educate/internal/validation"

	"go.uber.org/zap"
)

// leaderboardCachePrefix keys cached leaderboard pages; votes invalidate it
// because they move reputation.
const leaderboardCachePrefix = "leaderboard:"

type resourceService struct {
	resources repositories.ResourceRepository
	users     repositories.UserRepository
	storage   utils.FileStorage
	cache     cache.Cache
	config    *config.CloudinaryConfig
	logger    *zap.Logger
}

// NewResourceService creates the resource service.
func NewResourceService(
	resources repositories.ResourceRepository,
	users repositories.UserRepository,
	storage utils.FileStorage,
	cacheClient cache.Cache,
	cfg *config.CloudinaryConfig,
	logger *zap.Logger,
) ResourceService {
	return &resourceService{
		resources: resources,
		users:     users,
		storage:   storage,
		cache:     cacheClient,
		config:    cfg,
		logger:    logger,
	}
}

// ===============================
// LIFECYCLE
// ===============================

func (s *resourceService) Create(ctx context.Context, authorID int64, req *CreateResourceRequest) (*models.Resource, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}
	if err := s.validateEnums(req); err != nil {
		return nil, err
	}
	if len(req.Files) == 0 && len(req.Links) == 0 {
		return nil, NewValidationError("A resource needs at least one file or external link", nil)
	}
	if len(req.Files) > s.config.MaxFileCount {
		return nil, NewValidationError(
			fmt.Sprintf("At most %d files per resource", s.config.MaxFileCount), nil)
	}

	// Validate every file before uploading any of them.
	for _, file := range req.Files {
		if err := s.storage.ValidateFile(file); err != nil {
			return nil, NewValidationError(fmt.Sprintf("File %q rejected: %v", file.Filename, err), err)
		}
	}

	uploaded := make([]models.ResourceFile, 0, len(req.Files))
	for _, file := range req.Files {
		result, err := s.storage.UploadFile(ctx, file)
		if err != nil {
			s.cleanupUploads(ctx, uploaded)
			return nil, NewInternalError("File upload failed")
		}
		uploaded = append(uploaded, models.ResourceFile{
			FileName: file.Filename,
			FileURL:  result.URL,
			PublicID: result.PublicID,
			FileSize: result.Size,
			MimeType: file.Header.Get("Content-Type"),
		})
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyIntermediate
	}

	links := make([]models.ExternalLink, 0, len(req.Links))
	for _, link := range req.Links {
		links = append(links, models.ExternalLink{
			Title:       link.Title,
			URL:         link.URL,
			Description: link.Description,
		})
	}

	resource := &models.Resource{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Subject:     req.Subject,
		Semester:    req.Semester,
		Difficulty:  difficulty,
		Tags:        normalizeTags(req.Tags),
		Status:      models.StatusApproved,
		AuthorID:    authorID,
		Files:       uploaded,
		Links:       links,
	}
	if resource.Tags == nil {
		resource.Tags = models.StringArray{}
	}

	if err := s.resources.Create(ctx, resource); err != nil {
		s.cleanupUploads(ctx, uploaded)
		s.logger.Error("Failed to create resource", zap.Error(err))
		return nil, NewInternalError("Failed to create resource")
	}

	s.logger.Info("Resource created",
		zap.Int64("resource_id", resource.ID),
		zap.Int64("author_id", authorID),
		zap.Int("files", len(uploaded)),
	)
	return s.GetByID(ctx, resource.ID, authorID)
}

func (s *resourceService) GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, NewInternalError("Failed to load resource")
	}
	if resource == nil {
		return nil, NewNotFoundError("Resource not found")
	}
	return resource, nil
}

// View returns a resource and counts the view.
func (s *resourceService) View(ctx context.Context, id, viewerID int64) (*models.Resource, error) {
	resource, err := s.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if err := s.resources.IncrementViews(ctx, id); err != nil {
		s.logger.Warn("Failed to count view", zap.Int64("resource_id", id), zap.Error(err))
	} else {
		resource.Views++
	}
	return resource, nil
}

func (s *resourceService) List(ctx context.Context, req *ListResourcesRequest) (*models.PaginatedResponse[models.Resource], error) {
	filter := req.Filter
	if filter.Status == "" {
		filter.Status = models.StatusApproved
	}
	if filter.Category != "" && !models.ValidCategory(filter.Category) {
		return nil, NewValidationError("Invalid category filter", nil)
	}
	if filter.Type != "" && !models.ValidResourceType(filter.Type) {
		return nil, NewValidationError("Invalid type filter", nil)
	}
	if filter.Difficulty != "" && !models.ValidDifficulty(filter.Difficulty) {
		return nil, NewValidationError("Invalid difficulty filter", nil)
	}

	resources, total, err := s.resources.List(ctx, filter, req.Pagination, req.ViewerID)
	if err != nil {
		return nil, NewInternalError("Failed to list resources")
	}
	return paginate(resources, req.Pagination, total), nil
}

func (s *resourceService) ListByAuthor(ctx context.Context, authorID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Resource], error) {
	filter := models.ResourceFilter{AuthorID: authorID}
	resources, total, err := s.resources.List(ctx, filter, params, authorID)
	if err != nil {
		return nil, NewInternalError("Failed to list resources")
	}
	return paginate(resources, params, total), nil
}

func (s *resourceService) Update(ctx context.Context, id int64, actor *models.User, req *UpdateResourceRequest) (*models.Resource, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}

	resource, err := s.GetByID(ctx, id, actor.ID)
	if err != nil {
		return nil, err
	}
	if !canManage(resource, actor) {
		return nil, NewForbiddenError("You can only edit your own resources")
	}

	if req.Title != nil {
		resource.Title = *req.Title
	}
	if req.Description != nil {
		resource.Description = *req.Description
	}
	if req.Category != nil {
		if !models.ValidCategory(*req.Category) {
			return nil, NewValidationError("Invalid category", nil)
		}
		resource.Category = *req.Category
	}
	if req.Subject != nil {
		resource.Subject = *req.Subject
	}
	if req.Semester != nil {
		if !models.ValidSemester(*req.Semester) {
			return nil, NewValidationError("Invalid semester", nil)
		}
		resource.Semester = req.Semester
	}
	if req.Difficulty != nil {
		if !models.ValidDifficulty(*req.Difficulty) {
			return nil, NewValidationError("Invalid difficulty", nil)
		}
		resource.Difficulty = *req.Difficulty
	}
	if req.Tags != nil {
		resource.Tags = normalizeTags(req.Tags)
	}

	if err := s.resources.Update(ctx, resource); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError("Resource not found")
		}
		return nil, NewInternalError("Failed to update resource")
	}
	return resource, nil
}

func (s *resourceService) Delete(ctx context.Context, id int64, actor *models.User) error {
	resource, err := s.GetByID(ctx, id, actor.ID)
	if err != nil {
		return err
	}
	if !canManage(resource, actor) {
		return NewForbiddenError("You can only delete your own resources")
	}

	files, err := s.resources.GetFiles(ctx, id)
	if err != nil {
		return NewInternalError("Failed to load resource files")
	}

	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewNotFoundError("Resource not found")
		}
		return NewInternalError("Failed to delete resource")
	}

	// Hosted files are removed best effort after the row is gone.
	s.cleanupUploads(ctx, files)

	s.logger.Info("Resource deleted",
		zap.Int64("resource_id", id),
		zap.Int64("actor_id", actor.ID),
	)
	return nil
}

// ===============================
// ENGAGEMENT
// ===============================

func (s *resourceService) Vote(ctx context.Context, resourceID, userID int64, req *VoteRequest) (*VoteOutcome, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}

	tally, userVote, err := s.resources.Vote(ctx, resourceID, userID, models.VoteValue(req.Value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError("Resource not found")
		}
		s.logger.Error("Vote failed", zap.Int64("resource_id", resourceID), zap.Error(err))
		return nil, NewInternalError("Failed to record vote")
	}

	if err := s.cache.DeletePattern(ctx, leaderboardCachePrefix+"*"); err != nil {
		s.logger.Warn("Failed to invalidate leaderboard cache", zap.Error(err))
	}
	return &VoteOutcome{Votes: tally, UserVote: userVote}, nil
}

func (s *resourceService) ToggleBookmark(ctx context.Context, resourceID, userID int64) (*BookmarkOutcome, error) {
	bookmarked, count, err := s.resources.ToggleBookmark(ctx, resourceID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewNotFoundError("Resource not found")
		}
		s.logger.Error("Bookmark toggle failed", zap.Int64("resource_id", resourceID), zap.Error(err))
		return nil, NewInternalError("Failed to update bookmark")
	}
	return &BookmarkOutcome{Bookmarked: bookmarked, BookmarkCount: count}, nil
}

func (s *resourceService) AddComment(ctx context.Context, resourceID, userID int64, req *CommentRequest) (*models.Comment, error) {
	if fields, err := validation.ValidateStruct(req); err != nil {
		return nil, validationError(fields, err)
	}

	if _, err := s.GetByID(ctx, resourceID, 0); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ResourceID: resourceID,
		UserID:     userID,
		Text:       req.Text,
	}
	if err := s.resources.AddComment(ctx, comment); err != nil {
		return nil, NewInternalError("Failed to add comment")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err == nil && user != nil {
		comment.User = user.PublicProfile()
	}
	return comment, nil
}

func (s *resourceService) ListComments(ctx context.Context, resourceID int64, params models.PaginationParams) (*models.PaginatedResponse[models.Comment], error) {
	if _, err := s.GetByID(ctx, resourceID, 0); err != nil {
		return nil, err
	}
	comments, total, err := s.resources.ListComments(ctx, resourceID, params)
	if err != nil {
		return nil, NewInternalError("Failed to list comments")
	}
	return paginate(comments, params, total), nil
}

func (s *resourceService) Download(ctx context.Context, resourceID, fileID int64) (*DownloadOutcome, error) {
	file, err := s.resources.GetFile(ctx, resourceID, fileID)
	if err != nil {
		return nil, NewInternalError("Failed to load file")
	}
	if file == nil {
		return nil, NewNotFoundError("File not found")
	}

	if err := s.resources.IncrementDownloads(ctx, resourceID); err != nil {
		s.logger.Warn("Failed to count download", zap.Int64("resource_id", resourceID), zap.Error(err))
	}
	return &DownloadOutcome{
		FileName:    file.FileName,
		DownloadURL: file.FileURL,
		MimeType:    file.MimeType,
	}, nil
}

// ===============================
// HELPERS
// ===============================

func (s *resourceService) validateEnums(req *CreateResourceRequest) error {
	if !models.ValidResourceType(req.Type) {
		return NewValidationError("Invalid resource type", nil)
	}
	if !models.ValidCategory(req.Category) {
		return NewValidationError("Invalid category", nil)
	}
	if req.Semester != nil && !models.ValidSemester(*req.Semester) {
		return NewValidationError("Invalid semester", nil)
	}
	if req.Difficulty != "" && !models.ValidDifficulty(req.Difficulty) {
		return NewValidationError("Invalid difficulty", nil)
	}
	return nil
}

func (s *resourceService) cleanupUploads(ctx context.Context, files []models.ResourceFile) {
	// Deletion outlives the request so a cancelled upload still cleans up.
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, file := range files {
		if file.PublicID == "" {
			continue
		}
		if err := s.storage.DeleteFile(cleanupCtx, file.PublicID); err != nil {
			s.logger.Warn("Failed to remove hosted file",
				zap.String("public_id", file.PublicID),
				zap.Error(err),
			)
		}
	}
}

// normalizeTags lowercases and trims tags and drops empty ones.
func normalizeTags(tags models.StringArray) models.StringArray {
	out := make(models.StringArray, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func canManage(resource *models.Resource, actor *models.User) bool {
	if resource.AuthorID == actor.ID {
		return true
	}
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleModerator
}

// paginate packages one page of items with its metadata.
func paginate[T any](items []T, params models.PaginationParams, total int) *models.PaginatedResponse[T] {
	totalPages := 0
	if total > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return &models.PaginatedResponse[T]{
		Data: items,
		Pagination: models.PaginationMeta{
			CurrentPage:  params.Page,
			TotalPages:   totalPages,
			TotalItems:   total,
			ItemsPerPage: params.Limit,
			HasNext:      params.Page < totalPages,
			HasPrev:      params.Page > 1 && total > 0,
		},
	}
}
