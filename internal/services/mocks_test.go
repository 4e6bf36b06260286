package services

import (
	"context"
	"database/sql"
	"mime/multipart"
	"time"

	"educate/internal/models"
	"educate/internal/utils"
)

// mockUserRepository is an in-memory user store for service tests.
type mockUserRepository struct {
	users             map[int64]*models.User
	nextID            int64
	leaderboard       []models.LeaderboardEntry
	leaderboardLimits []int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*models.User), nextID: 1}
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = m.nextID
	m.nextID++
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	for _, user := range m.users {
		if user.Email == email || user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	return nil
}

func (m *mockUserRepository) Search(ctx context.Context, filter models.UserFilter, params models.PaginationParams) ([]models.PublicUser, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepository) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	return &models.UserStats{}, nil
}

func (m *mockUserRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	m.leaderboardLimits = append(m.leaderboardLimits, limit)
	return m.leaderboard, nil
}

// mockResourceRepository records calls and serves canned resources.
type mockResourceRepository struct {
	resources map[int64]*models.Resource
	votes     map[int64]string
	bookmarks map[int64]bool
	comments  []models.Comment
	deleted   []int64
	nextID    int64
}

func newMockResourceRepository() *mockResourceRepository {
	return &mockResourceRepository{
		resources: make(map[int64]*models.Resource),
		votes:     make(map[int64]string),
		bookmarks: make(map[int64]bool),
		nextID:    1,
	}
}

func (m *mockResourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	resource.ID = m.nextID
	m.nextID++
	resource.CreatedAt = time.Now()
	resource.UpdatedAt = resource.CreatedAt
	m.resources[resource.ID] = resource
	return nil
}

func (m *mockResourceRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error) {
	res, ok := m.resources[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (m *mockResourceRepository) List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams, viewerID int64) ([]models.Resource, int, error) {
	out := make([]models.Resource, 0)
	for _, res := range m.resources {
		if filter.AuthorID > 0 && res.AuthorID != filter.AuthorID {
			continue
		}
		out = append(out, *res)
	}
	return out, len(out), nil
}

func (m *mockResourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	if _, ok := m.resources[resource.ID]; !ok {
		return sql.ErrNoRows
	}
	m.resources[resource.ID] = resource
	return nil
}

func (m *mockResourceRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.resources[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.resources, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockResourceRepository) GetFiles(ctx context.Context, resourceID int64) ([]models.ResourceFile, error) {
	if res, ok := m.resources[resourceID]; ok {
		return res.Files, nil
	}
	return nil, nil
}

func (m *mockResourceRepository) GetFile(ctx context.Context, resourceID, fileID int64) (*models.ResourceFile, error) {
	res, ok := m.resources[resourceID]
	if !ok {
		return nil, nil
	}
	for i := range res.Files {
		if res.Files[i].ID == fileID {
			return &res.Files[i], nil
		}
	}
	return nil, nil
}

func (m *mockResourceRepository) IncrementViews(ctx context.Context, id int64) error {
	if res, ok := m.resources[id]; ok {
		res.Views++
	}
	return nil
}

func (m *mockResourceRepository) IncrementDownloads(ctx context.Context, id int64) error {
	if res, ok := m.resources[id]; ok {
		res.Downloads++
	}
	return nil
}

func (m *mockResourceRepository) Vote(ctx context.Context, resourceID, userID int64, value models.VoteValue) (*models.VoteTally, *string, error) {
	res, ok := m.resources[resourceID]
	if !ok {
		return nil, nil, sql.ErrNoRows
	}

	existing := m.votes[userID]
	var userVote *string
	switch {
	case existing == "":
		m.votes[userID] = string(value)
		if value == models.VoteUp {
			res.Upvotes++
		} else {
			res.Downvotes++
		}
		v := string(value)
		userVote = &v
	case existing == string(value):
		delete(m.votes, userID)
		if value == models.VoteUp {
			res.Upvotes--
		} else {
			res.Downvotes--
		}
	default:
		m.votes[userID] = string(value)
		if value == models.VoteUp {
			res.Upvotes++
			res.Downvotes--
		} else {
			res.Upvotes--
			res.Downvotes++
		}
		v := string(value)
		userVote = &v
	}

	if res.Upvotes < 0 {
		res.Upvotes = 0
	}
	if res.Downvotes < 0 {
		res.Downvotes = 0
	}
	res.Score = res.Upvotes - res.Downvotes
	return &models.VoteTally{Upvotes: res.Upvotes, Downvotes: res.Downvotes, Score: res.Score}, userVote, nil
}

func (m *mockResourceRepository) ToggleBookmark(ctx context.Context, resourceID, userID int64) (bool, int, error) {
	res, ok := m.resources[resourceID]
	if !ok {
		return false, 0, sql.ErrNoRows
	}
	if m.bookmarks[userID] {
		delete(m.bookmarks, userID)
		res.Bookmarks--
		return false, res.Bookmarks, nil
	}
	m.bookmarks[userID] = true
	res.Bookmarks++
	return true, res.Bookmarks, nil
}

func (m *mockResourceRepository) ListBookmarked(ctx context.Context, userID int64, params models.PaginationParams) ([]models.Resource, int, error) {
	return []models.Resource{}, 0, nil
}

func (m *mockResourceRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = int64(len(m.comments) + 1)
	comment.CreatedAt = time.Now()
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockResourceRepository) ListComments(ctx context.Context, resourceID int64, params models.PaginationParams) ([]models.Comment, int, error) {
	return m.comments, len(m.comments), nil
}

// mockFileStorage pretends to host files and records deletions.
type mockFileStorage struct {
	uploads   int
	deletions []string
	failNext  bool
}

func (m *mockFileStorage) UploadFile(ctx context.Context, file *multipart.FileHeader) (*utils.UploadResult, error) {
	if m.failNext {
		return nil, utils.ErrUploadFailed
	}
	m.uploads++
	return &utils.UploadResult{
		URL:      "https://files.example/" + file.Filename,
		PublicID: "educate/resources/" + file.Filename,
		Size:     file.Size,
	}, nil
}

func (m *mockFileStorage) DeleteFile(ctx context.Context, publicID string) error {
	m.deletions = append(m.deletions, publicID)
	return nil
}

func (m *mockFileStorage) ValidateFile(file *multipart.FileHeader) error {
	return nil
}

// mockCache satisfies cache.Cache without storing anything durable.
type mockCache struct {
	store map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{store: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, ok := m.store[key]
	return raw, ok
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.store[key] = value
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.store, key)
	return nil
}

func (m *mockCache) DeletePattern(ctx context.Context, pattern string) error {
	for key := range m.store {
		delete(m.store, key)
	}
	return nil
}

func (m *mockCache) Increment(ctx context.Context, key string, delta int64, ttl time.Duration) (int64, error) {
	return delta, nil
}

func (m *mockCache) Health(ctx context.Context) error { return nil }
func (m *mockCache) Close() error                     { return nil }
