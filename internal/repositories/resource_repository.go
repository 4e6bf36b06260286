package repositories

import (
	"context"
	"database/sql"
	"educate/internal/database"
	"educate/internal/models"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type resourceRepository struct {
	*BaseRepository
}

// NewResourceRepository creates a PostgreSQL-backed resource repository.
func NewResourceRepository(manager *database.Manager, logger *zap.Logger, slowQueryThreshold time.Duration) ResourceRepository {
	return &resourceRepository{
		BaseRepository: NewBaseRepository(manager, logger, slowQueryThreshold),
	}
}

// resourceSortColumns maps API sort keys onto real columns. Anything outside
// this map falls back to created_at.
var resourceSortColumns = map[string]string{
	"createdAt":   "res.created_at",
	"score":       "res.score",
	"votes.score": "res.score",
	"views":       "res.views",
	"downloads":   "res.downloads",
}

// ===============================
// RESOURCE CRUD
// ===============================

func (r *resourceRepository) Create(ctx context.Context, resource *models.Resource) error {
	return r.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO resources (
				title, description, type, category, subject, semester,
				difficulty, tags, status, author_id
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id, upvotes, downvotes, score, views, downloads, bookmarks,
			          created_at, updated_at`

		err := tx.QueryRowContext(ctx, query,
			resource.Title,
			resource.Description,
			resource.Type,
			resource.Category,
			resource.Subject,
			resource.Semester,
			resource.Difficulty,
			resource.Tags,
			resource.Status,
			resource.AuthorID,
		).Scan(
			&resource.ID,
			&resource.Upvotes, &resource.Downvotes, &resource.Score,
			&resource.Views, &resource.Downloads, &resource.Bookmarks,
			&resource.CreatedAt, &resource.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert resource: %w", err)
		}

		for i := range resource.Files {
			file := &resource.Files[i]
			err := tx.QueryRowContext(ctx, `
				INSERT INTO resource_files (resource_id, file_name, file_url, public_id, file_size, mime_type)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id, uploaded_at`,
				resource.ID, file.FileName, file.FileURL, file.PublicID, file.FileSize, file.MimeType,
			).Scan(&file.ID, &file.UploadedAt)
			if err != nil {
				return fmt.Errorf("failed to insert resource file: %w", err)
			}
			file.ResourceID = resource.ID
		}

		for i := range resource.Links {
			link := &resource.Links[i]
			err := tx.QueryRowContext(ctx, `
				INSERT INTO resource_links (resource_id, title, url, description)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				resource.ID, link.Title, link.URL, link.Description,
			).Scan(&link.ID)
			if err != nil {
				return fmt.Errorf("failed to insert resource link: %w", err)
			}
			link.ResourceID = resource.ID
		}

		resource.FillVotes()
		return nil
	})
}

const resourceSelect = `
	SELECT
		res.id, res.title, res.description, res.type, res.category, res.subject,
		res.semester, res.difficulty, res.tags, res.status, res.author_id,
		res.upvotes, res.downvotes, res.score, res.views, res.downloads,
		res.bookmarks, res.created_at, res.updated_at,
		u.id, u.username, u.university, u.course, u.year, u.bio, u.avatar,
		u.reputation, u.created_at
	FROM resources res
	JOIN users u ON u.id = res.author_id`

func scanResource(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Resource, error) {
	var res models.Resource
	var author models.PublicUser
	err := scanner.Scan(
		&res.ID, &res.Title, &res.Description, &res.Type, &res.Category,
		&res.Subject, &res.Semester, &res.Difficulty, &res.Tags, &res.Status,
		&res.AuthorID,
		&res.Upvotes, &res.Downvotes, &res.Score, &res.Views, &res.Downloads,
		&res.Bookmarks, &res.CreatedAt, &res.UpdatedAt,
		&author.ID, &author.Username, &author.University, &author.Course,
		&author.Year, &author.Bio, &author.Avatar, &author.Reputation,
		&author.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	res.Author = &author
	res.FillVotes()
	return &res, nil
}

func (r *resourceRepository) GetByID(ctx context.Context, id, viewerID int64) (*models.Resource, error) {
	row := r.QueryRowContext(ctx, resourceSelect+` WHERE res.id = $1`, id)
	resource, err := scanResource(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	if err := r.attachChildren(ctx, []*models.Resource{resource}); err != nil {
		return nil, err
	}
	if viewerID > 0 {
		if err := r.attachViewerState(ctx, []*models.Resource{resource}, viewerID); err != nil {
			return nil, err
		}
	}
	return resource, nil
}

// buildResourceFilter turns a filter into a WHERE clause with numbered args.
// Returns an empty clause when no filter field is set.
func buildResourceFilter(filter models.ResourceFilter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Status != "" {
		addCondition("res.status = $%d", filter.Status)
	}
	if filter.Category != "" {
		addCondition("res.category = $%d", filter.Category)
	}
	if filter.Type != "" {
		addCondition("res.type = $%d", filter.Type)
	}
	if filter.Subject != "" {
		addCondition("res.subject ILIKE $%d", "%"+filter.Subject+"%")
	}
	if filter.Semester != "" {
		addCondition("res.semester = $%d", filter.Semester)
	}
	if filter.Difficulty != "" {
		addCondition("res.difficulty = $%d", filter.Difficulty)
	}
	if filter.AuthorID > 0 {
		addCondition("res.author_id = $%d", filter.AuthorID)
	}
	if filter.Search != "" {
		// Tags need the same case-insensitive substring treatment as the
		// text columns, so the array is unnested instead of matched exactly.
		addCondition(
			"(res.title ILIKE $%[1]d OR res.description ILIKE $%[1]d OR res.subject ILIKE $%[1]d"+
				" OR EXISTS (SELECT 1 FROM unnest(res.tags) tag WHERE tag ILIKE $%[1]d))",
			"%"+filter.Search+"%",
		)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func (r *resourceRepository) List(ctx context.Context, filter models.ResourceFilter, params models.PaginationParams, viewerID int64) ([]models.Resource, int, error) {
	where, args := buildResourceFilter(filter)

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM resources res`+where, args...)
	if err != nil {
		return nil, 0, err
	}

	sortColumn, ok := resourceSortColumns[params.SortBy]
	if !ok {
		sortColumn = "res.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		direction = "ASC"
	}

	args = append(args, params.Limit, params.Offset())
	query := fmt.Sprintf(
		"%s%s ORDER BY %s %s, res.id DESC LIMIT $%d OFFSET $%d",
		resourceSelect, where, sortColumn, direction, len(args)-1, len(args),
	)

	resources, err := r.queryResources(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	if err := r.hydrate(ctx, resources, viewerID); err != nil {
		return nil, 0, err
	}
	return derefResources(resources), total, nil
}

func (r *resourceRepository) Update(ctx context.Context, resource *models.Resource) error {
	query := `
		UPDATE resources
		SET title = $2, description = $3, category = $4, subject = $5,
		    semester = $6, difficulty = $7, tags = $8, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		resource.ID,
		resource.Title,
		resource.Description,
		resource.Category,
		resource.Subject,
		resource.Semester,
		resource.Difficulty,
		resource.Tags,
	).Scan(&resource.UpdatedAt)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to update resource: %w", err)
	}
	return nil
}

func (r *resourceRepository) Delete(ctx context.Context, id int64) error {
	// Child rows cascade via foreign keys.
	result, err := r.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *resourceRepository) GetFiles(ctx context.Context, resourceID int64) ([]models.ResourceFile, error) {
	rows, err := r.QueryContext(ctx, `
		SELECT id, resource_id, file_name, file_url, public_id, file_size, mime_type, uploaded_at
		FROM resource_files
		WHERE resource_id = $1
		ORDER BY id`, resourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get resource files: %w", err)
	}
	defer rows.Close()

	files := make([]models.ResourceFile, 0)
	for rows.Next() {
		var f models.ResourceFile
		if err := rows.Scan(&f.ID, &f.ResourceID, &f.FileName, &f.FileURL, &f.PublicID, &f.FileSize, &f.MimeType, &f.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (r *resourceRepository) GetFile(ctx context.Context, resourceID, fileID int64) (*models.ResourceFile, error) {
	var f models.ResourceFile
	err := r.QueryRowContext(ctx, `
		SELECT id, resource_id, file_name, file_url, public_id, file_size, mime_type, uploaded_at
		FROM resource_files
		WHERE id = $1 AND resource_id = $2`, fileID, resourceID).Scan(
		&f.ID, &f.ResourceID, &f.FileName, &f.FileURL, &f.PublicID, &f.FileSize, &f.MimeType, &f.UploadedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource file: %w", err)
	}
	return &f, nil
}

func (r *resourceRepository) IncrementViews(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx, `UPDATE resources SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}

func (r *resourceRepository) IncrementDownloads(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx, `UPDATE resources SET downloads = downloads + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment downloads: %w", err)
	}
	return nil
}

// ===============================
// VOTING
// ===============================

// Vote applies one user action to a resource's vote state. Casting the same
// direction twice removes the vote; casting the opposite direction switches
// it. Counters and the author's reputation change in the same transaction.
func (r *resourceRepository) Vote(ctx context.Context, resourceID, userID int64, value models.VoteValue) (*models.VoteTally, *string, error) {
	var tally models.VoteTally
	var userVote *string

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		repDelta := 0
		var authorID int64
		var upvotes, downvotes int
		err := tx.QueryRowContext(ctx, `
			SELECT author_id, upvotes, downvotes
			FROM resources
			WHERE id = $1
			FOR UPDATE`, resourceID).Scan(&authorID, &upvotes, &downvotes)
		if err != nil {
			return err
		}

		var existing string
		err = tx.QueryRowContext(ctx, `
			SELECT value FROM resource_votes
			WHERE resource_id = $1 AND user_id = $2`, resourceID, userID).Scan(&existing)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to read existing vote: %w", err)
		}

		switch {
		case existing == "":
			_, err = tx.ExecContext(ctx, `
				INSERT INTO resource_votes (resource_id, user_id, value)
				VALUES ($1, $2, $3)`, resourceID, userID, value)
			if err != nil {
				return fmt.Errorf("failed to insert vote: %w", err)
			}
			if value == models.VoteUp {
				upvotes++
				repDelta = 1
			} else {
				downvotes++
			}
			v := string(value)
			userVote = &v

		case existing == string(value):
			// Same direction again removes the vote.
			_, err = tx.ExecContext(ctx, `
				DELETE FROM resource_votes
				WHERE resource_id = $1 AND user_id = $2`, resourceID, userID)
			if err != nil {
				return fmt.Errorf("failed to remove vote: %w", err)
			}
			if value == models.VoteUp {
				upvotes--
				repDelta = -1
			} else {
				downvotes--
			}

		default:
			_, err = tx.ExecContext(ctx, `
				UPDATE resource_votes SET value = $3, created_at = NOW()
				WHERE resource_id = $1 AND user_id = $2`, resourceID, userID, value)
			if err != nil {
				return fmt.Errorf("failed to switch vote: %w", err)
			}
			if value == models.VoteUp {
				upvotes++
				downvotes--
				repDelta = 1
			} else {
				upvotes--
				downvotes++
				repDelta = -1
			}
			v := string(value)
			userVote = &v
		}

		if upvotes < 0 {
			upvotes = 0
		}
		if downvotes < 0 {
			downvotes = 0
		}

		err = tx.QueryRowContext(ctx, `
			UPDATE resources
			SET upvotes = $2, downvotes = $3, score = $2 - $3, updated_at = NOW()
			WHERE id = $1
			RETURNING upvotes, downvotes, score`,
			resourceID, upvotes, downvotes,
		).Scan(&tally.Upvotes, &tally.Downvotes, &tally.Score)
		if err != nil {
			return fmt.Errorf("failed to update vote counters: %w", err)
		}

		// Author reputation tracks net upvotes on their resources.
		if repDelta != 0 && authorID != userID {
			_, err = tx.ExecContext(ctx, `
				UPDATE users
				SET reputation = GREATEST(0, reputation + $2)
				WHERE id = $1`, authorID, repDelta)
			if err != nil {
				return fmt.Errorf("failed to adjust reputation: %w", err)
			}
		}
		return nil
	})
	if err == sql.ErrNoRows {
		return nil, nil, sql.ErrNoRows
	}
	if err != nil {
		return nil, nil, err
	}
	return &tally, userVote, nil
}

// ===============================
// BOOKMARKS
// ===============================

func (r *resourceRepository) ToggleBookmark(ctx context.Context, resourceID, userID int64) (bool, int, error) {
	var bookmarked bool
	var count int

	err := r.WithTransaction(ctx, func(tx *sql.Tx) error {
		var current int
		err := tx.QueryRowContext(ctx, `
			SELECT bookmarks FROM resources
			WHERE id = $1
			FOR UPDATE`, resourceID).Scan(&current)
		if err != nil {
			return err
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM resource_bookmarks
			WHERE resource_id = $1 AND user_id = $2`, resourceID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove bookmark: %w", err)
		}
		removed, _ := result.RowsAffected()

		if removed > 0 {
			bookmarked = false
			current--
		} else {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO resource_bookmarks (resource_id, user_id)
				VALUES ($1, $2)`, resourceID, userID)
			if err != nil {
				return fmt.Errorf("failed to add bookmark: %w", err)
			}
			bookmarked = true
			current++
		}

		if current < 0 {
			current = 0
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE resources SET bookmarks = $2 WHERE id = $1`, resourceID, current)
		if err != nil {
			return fmt.Errorf("failed to update bookmark counter: %w", err)
		}
		count = current
		return nil
	})
	if err == sql.ErrNoRows {
		return false, 0, sql.ErrNoRows
	}
	if err != nil {
		return false, 0, err
	}
	return bookmarked, count, nil
}

func (r *resourceRepository) ListBookmarked(ctx context.Context, userID int64, params models.PaginationParams) ([]models.Resource, int, error) {
	total, err := r.GetTotalCount(ctx,
		`SELECT COUNT(*) FROM resource_bookmarks WHERE user_id = $1`, userID)
	if err != nil {
		return nil, 0, err
	}

	query := resourceSelect + `
		JOIN resource_bookmarks b ON b.resource_id = res.id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
		LIMIT $2 OFFSET $3`

	resources, err := r.queryResources(ctx, query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	if err := r.hydrate(ctx, resources, userID); err != nil {
		return nil, 0, err
	}
	return derefResources(resources), total, nil
}

// ===============================
// COMMENTS
// ===============================

func (r *resourceRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	err := r.QueryRowContext(ctx, `
		INSERT INTO resource_comments (resource_id, user_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		comment.ResourceID, comment.UserID, comment.Text,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

func (r *resourceRepository) ListComments(ctx context.Context, resourceID int64, params models.PaginationParams) ([]models.Comment, int, error) {
	total, err := r.GetTotalCount(ctx,
		`SELECT COUNT(*) FROM resource_comments WHERE resource_id = $1`, resourceID)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.QueryContext(ctx, `
		SELECT
			c.id, c.resource_id, c.user_id, c.text, c.created_at,
			u.id, u.username, u.university, u.course, u.year, u.bio, u.avatar,
			u.reputation, u.created_at
		FROM resource_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.resource_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2 OFFSET $3`, resourceID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		var u models.PublicUser
		if err := rows.Scan(
			&c.ID, &c.ResourceID, &c.UserID, &c.Text, &c.CreatedAt,
			&u.ID, &u.Username, &u.University, &u.Course, &u.Year, &u.Bio,
			&u.Avatar, &u.Reputation, &u.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan comment row: %w", err)
		}
		c.User = &u
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

// ===============================
// HYDRATION HELPERS
// ===============================

func (r *resourceRepository) queryResources(ctx context.Context, query string, args ...interface{}) ([]*models.Resource, error) {
	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	resources := make([]*models.Resource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource row: %w", err)
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *resourceRepository) hydrate(ctx context.Context, resources []*models.Resource, viewerID int64) error {
	if len(resources) == 0 {
		return nil
	}
	if err := r.attachChildren(ctx, resources); err != nil {
		return err
	}
	if viewerID > 0 {
		return r.attachViewerState(ctx, resources, viewerID)
	}
	return nil
}

// attachChildren loads files and links for a page of resources in two queries.
func (r *resourceRepository) attachChildren(ctx context.Context, resources []*models.Resource) error {
	ids := make([]int64, 0, len(resources))
	byID := make(map[int64]*models.Resource, len(resources))
	for _, res := range resources {
		ids = append(ids, res.ID)
		byID[res.ID] = res
		res.Files = make([]models.ResourceFile, 0)
		res.Links = make([]models.ExternalLink, 0)
	}

	fileRows, err := r.QueryContext(ctx, `
		SELECT id, resource_id, file_name, file_url, public_id, file_size, mime_type, uploaded_at
		FROM resource_files
		WHERE resource_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load resource files: %w", err)
	}
	defer fileRows.Close()

	for fileRows.Next() {
		var f models.ResourceFile
		if err := fileRows.Scan(&f.ID, &f.ResourceID, &f.FileName, &f.FileURL, &f.PublicID, &f.FileSize, &f.MimeType, &f.UploadedAt); err != nil {
			return fmt.Errorf("failed to scan file row: %w", err)
		}
		if res, ok := byID[f.ResourceID]; ok {
			res.Files = append(res.Files, f)
		}
	}
	if err := fileRows.Err(); err != nil {
		return err
	}

	linkRows, err := r.QueryContext(ctx, `
		SELECT id, resource_id, title, url, description
		FROM resource_links
		WHERE resource_id = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load resource links: %w", err)
	}
	defer linkRows.Close()

	for linkRows.Next() {
		var l models.ExternalLink
		if err := linkRows.Scan(&l.ID, &l.ResourceID, &l.Title, &l.URL, &l.Description); err != nil {
			return fmt.Errorf("failed to scan link row: %w", err)
		}
		if res, ok := byID[l.ResourceID]; ok {
			res.Links = append(res.Links, l)
		}
	}
	return linkRows.Err()
}

// attachViewerState overlays the viewer's vote and bookmark on each resource.
func (r *resourceRepository) attachViewerState(ctx context.Context, resources []*models.Resource, viewerID int64) error {
	ids := make([]int64, 0, len(resources))
	byID := make(map[int64]*models.Resource, len(resources))
	for _, res := range resources {
		ids = append(ids, res.ID)
		byID[res.ID] = res
		bookmarked := false
		res.Bookmarked = &bookmarked
	}

	voteRows, err := r.QueryContext(ctx, `
		SELECT resource_id, value
		FROM resource_votes
		WHERE user_id = $1 AND resource_id = ANY($2)`, viewerID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load viewer votes: %w", err)
	}
	defer voteRows.Close()

	for voteRows.Next() {
		var resourceID int64
		var value string
		if err := voteRows.Scan(&resourceID, &value); err != nil {
			return fmt.Errorf("failed to scan vote row: %w", err)
		}
		if res, ok := byID[resourceID]; ok {
			v := value
			res.UserVote = &v
		}
	}
	if err := voteRows.Err(); err != nil {
		return err
	}

	bookmarkRows, err := r.QueryContext(ctx, `
		SELECT resource_id
		FROM resource_bookmarks
		WHERE user_id = $1 AND resource_id = ANY($2)`, viewerID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load viewer bookmarks: %w", err)
	}
	defer bookmarkRows.Close()

	for bookmarkRows.Next() {
		var resourceID int64
		if err := bookmarkRows.Scan(&resourceID); err != nil {
			return fmt.Errorf("failed to scan bookmark row: %w", err)
		}
		if res, ok := byID[resourceID]; ok {
			bookmarked := true
			res.Bookmarked = &bookmarked
		}
	}
	return bookmarkRows.Err()
}

func derefResources(resources []*models.Resource) []models.Resource {
	out := make([]models.Resource, len(resources))
	for i, res := range resources {
		out[i] = *res
	}
	return out
}
