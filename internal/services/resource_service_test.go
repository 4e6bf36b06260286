package services

import (
	"context"
	"strings"
	"testing"

	"educate/internal/config"
	"educate/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResourceService(repo *mockResourceRepository, users *mockUserRepository, storage *mockFileStorage) ResourceService {
	cfg := &config.CloudinaryConfig{
		MaxFileSize:  10 * 1024 * 1024,
		MaxFileCount: 5,
	}
	return NewResourceService(repo, users, storage, newMockCache(), cfg, zap.NewNop())
}

func seedResource(repo *mockResourceRepository, authorID int64) *models.Resource {
	resource := &models.Resource{
		Title:       "Discrete Math Notes",
		Description: "Full semester notes",
		Type:        models.ResourceTypeNotes,
		Category:    "Mathematics",
		Subject:     "Discrete Mathematics",
		Difficulty:  models.DifficultyIntermediate,
		Status:      models.StatusApproved,
		AuthorID:    authorID,
		Tags:        models.StringArray{},
		Files: []models.ResourceFile{
			{ID: 1, FileName: "notes.pdf", FileURL: "https://files.example/notes.pdf", PublicID: "educate/resources/notes", MimeType: "application/pdf"},
		},
	}
	repo.Create(context.Background(), resource)
	return resource
}

func TestResourceService_Vote(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})
	resource := seedResource(repo, 1)

	t.Run("first upvote is counted", func(t *testing.T) {
		outcome, err := svc.Vote(ctx, resource.ID, 2, &VoteRequest{Value: "upvote"})
		require.NoError(t, err)
		assert.Equal(t, 1, outcome.Votes.Upvotes)
		assert.Equal(t, 0, outcome.Votes.Downvotes)
		assert.Equal(t, 1, outcome.Votes.Score)
		require.NotNil(t, outcome.UserVote)
		assert.Equal(t, "upvote", *outcome.UserVote)
	})

	t.Run("repeating the vote removes it", func(t *testing.T) {
		outcome, err := svc.Vote(ctx, resource.ID, 2, &VoteRequest{Value: "upvote"})
		require.NoError(t, err)
		assert.Equal(t, 0, outcome.Votes.Upvotes)
		assert.Equal(t, 0, outcome.Votes.Score)
		assert.Nil(t, outcome.UserVote)
	})

	t.Run("opposite vote switches direction", func(t *testing.T) {
		_, err := svc.Vote(ctx, resource.ID, 2, &VoteRequest{Value: "upvote"})
		require.NoError(t, err)

		outcome, err := svc.Vote(ctx, resource.ID, 2, &VoteRequest{Value: "downvote"})
		require.NoError(t, err)
		assert.Equal(t, 0, outcome.Votes.Upvotes)
		assert.Equal(t, 1, outcome.Votes.Downvotes)
		assert.Equal(t, -1, outcome.Votes.Score)
		require.NotNil(t, outcome.UserVote)
		assert.Equal(t, "downvote", *outcome.UserVote)
	})

	t.Run("invalid direction is rejected", func(t *testing.T) {
		_, err := svc.Vote(ctx, resource.ID, 2, &VoteRequest{Value: "sideways"})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("unknown resource returns not found", func(t *testing.T) {
		_, err := svc.Vote(ctx, 999, 2, &VoteRequest{Value: "upvote"})
		require.Error(t, err)
		assert.True(t, IsNotFoundError(err))
	})
}

func TestResourceService_ToggleBookmark(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})
	resource := seedResource(repo, 1)

	outcome, err := svc.ToggleBookmark(ctx, resource.ID, 2)
	require.NoError(t, err)
	assert.True(t, outcome.Bookmarked)
	assert.Equal(t, 1, outcome.BookmarkCount)

	outcome, err = svc.ToggleBookmark(ctx, resource.ID, 2)
	require.NoError(t, err)
	assert.False(t, outcome.Bookmarked)
	assert.Equal(t, 0, outcome.BookmarkCount)

	_, err = svc.ToggleBookmark(ctx, 999, 2)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestResourceService_Create(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *CreateResourceRequest {
		semester := "3rd Semester"
		return &CreateResourceRequest{
			Title:       "Graph Theory Reading List",
			Description: "Recommended papers and books",
			Type:        models.ResourceTypeRecommendation,
			Category:    "Mathematics",
			Subject:     "Graph Theory",
			Semester:    &semester,
			Links: []LinkInput{
				{Title: "Survey paper", URL: "https://example.com/survey.pdf"},
			},
		}
	}

	t.Run("link-only resource is created and approved", func(t *testing.T) {
		repo := newMockResourceRepository()
		svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})

		resource, err := svc.Create(ctx, 7, validRequest())
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, resource.Status)
		assert.Equal(t, models.DifficultyIntermediate, resource.Difficulty)
		assert.Equal(t, int64(7), resource.AuthorID)
	})

	t.Run("needs a file or link", func(t *testing.T) {
		svc := newTestResourceService(newMockResourceRepository(), newMockUserRepository(), &mockFileStorage{})

		req := validRequest()
		req.Links = nil
		_, err := svc.Create(ctx, 7, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("accepts every listed category", func(t *testing.T) {
		repo := newMockResourceRepository()
		svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})

		for _, category := range models.Categories {
			req := validRequest()
			req.Category = category
			_, err := svc.Create(ctx, 7, req)
			require.NoError(t, err, "category %q should be accepted", category)
		}
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		svc := newTestResourceService(newMockResourceRepository(), newMockUserRepository(), &mockFileStorage{})

		req := validRequest()
		req.Category = "Astrology"
		_, err := svc.Create(ctx, 7, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("requires a semester", func(t *testing.T) {
		svc := newTestResourceService(newMockResourceRepository(), newMockUserRepository(), &mockFileStorage{})

		req := validRequest()
		req.Semester = nil
		_, err := svc.Create(ctx, 7, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects unknown semester", func(t *testing.T) {
		svc := newTestResourceService(newMockResourceRepository(), newMockUserRepository(), &mockFileStorage{})

		req := validRequest()
		bad := "13th Semester"
		req.Semester = &bad
		_, err := svc.Create(ctx, 7, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc := newTestResourceService(newMockResourceRepository(), newMockUserRepository(), &mockFileStorage{})

		req := validRequest()
		req.Type = "mixtape"
		_, err := svc.Create(ctx, 7, req)
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestResourceService_UpdatePermissions(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})
	resource := seedResource(repo, 1)

	owner := &models.User{ID: 1, Role: models.RoleStudent}
	stranger := &models.User{ID: 2, Role: models.RoleStudent}
	moderator := &models.User{ID: 3, Role: models.RoleModerator}

	newTitle := "Updated title"

	t.Run("stranger cannot edit", func(t *testing.T) {
		_, err := svc.Update(ctx, resource.ID, stranger, &UpdateResourceRequest{Title: &newTitle})
		require.Error(t, err)
		serviceErr := GetServiceError(err)
		assert.Equal(t, "FORBIDDEN", serviceErr.Type)
	})

	t.Run("owner can edit", func(t *testing.T) {
		updated, err := svc.Update(ctx, resource.ID, owner, &UpdateResourceRequest{Title: &newTitle})
		require.NoError(t, err)
		assert.Equal(t, newTitle, updated.Title)
	})

	t.Run("moderator can edit", func(t *testing.T) {
		title := "Moderated title"
		updated, err := svc.Update(ctx, resource.ID, moderator, &UpdateResourceRequest{Title: &title})
		require.NoError(t, err)
		assert.Equal(t, title, updated.Title)
	})
}

func TestResourceService_DeleteCleansUpFiles(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	storage := &mockFileStorage{}
	svc := newTestResourceService(repo, newMockUserRepository(), storage)
	resource := seedResource(repo, 1)

	owner := &models.User{ID: 1, Role: models.RoleStudent}

	require.NoError(t, svc.Delete(ctx, resource.ID, owner))
	assert.Contains(t, repo.deleted, resource.ID)
	assert.Equal(t, []string{"educate/resources/notes"}, storage.deletions)

	err := svc.Delete(ctx, resource.ID, owner)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestResourceService_Comments(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	users := newMockUserRepository()
	svc := newTestResourceService(repo, users, &mockFileStorage{})
	resource := seedResource(repo, 1)

	author := &models.User{Username: "dana", Email: "dana@uni.edu", PasswordHash: "x", Role: models.RoleStudent}
	require.NoError(t, users.Create(ctx, author))

	t.Run("comment is stored with its author", func(t *testing.T) {
		comment, err := svc.AddComment(ctx, resource.ID, author.ID, &CommentRequest{Text: "Very helpful, thanks"})
		require.NoError(t, err)
		assert.Equal(t, resource.ID, comment.ResourceID)
		require.NotNil(t, comment.User)
		assert.Equal(t, "dana", comment.User.Username)
	})

	t.Run("empty comment is rejected", func(t *testing.T) {
		_, err := svc.AddComment(ctx, resource.ID, author.ID, &CommentRequest{Text: ""})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})

	t.Run("oversized comment is rejected", func(t *testing.T) {
		_, err := svc.AddComment(ctx, resource.ID, author.ID, &CommentRequest{Text: strings.Repeat("a", 501)})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
	})
}

func TestResourceService_Download(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})
	resource := seedResource(repo, 1)

	outcome, err := svc.Download(ctx, resource.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", outcome.FileName)
	assert.Equal(t, "https://files.example/notes.pdf", outcome.DownloadURL)
	assert.Equal(t, "application/pdf", outcome.MimeType)
	assert.Equal(t, 1, repo.resources[resource.ID].Downloads)

	_, err = svc.Download(ctx, resource.ID, 42)
	require.Error(t, err)
	assert.True(t, IsNotFoundError(err))
}

func TestResourceService_ViewCountsOnce(t *testing.T) {
	ctx := context.Background()
	repo := newMockResourceRepository()
	svc := newTestResourceService(repo, newMockUserRepository(), &mockFileStorage{})
	resource := seedResource(repo, 1)

	viewed, err := svc.View(ctx, resource.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, viewed.Views)
	assert.Equal(t, 1, repo.resources[resource.ID].Views)
}
