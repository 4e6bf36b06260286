package repositories

import (
	"context"
	"database/sql"
	"educate/internal/database"
	"educate/internal/models"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type userRepository struct {
	*BaseRepository
}

// NewUserRepository creates a PostgreSQL-backed user repository.
func NewUserRepository(manager *database.Manager, logger *zap.Logger, slowQueryThreshold time.Duration) UserRepository {
	return &userRepository{
		BaseRepository: NewBaseRepository(manager, logger, slowQueryThreshold),
	}
}

const userColumns = `
	id, username, email, password_hash, role, university, course, year,
	bio, avatar, reputation, is_active, last_login, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, email, password_hash, role, university, course, year)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, reputation, is_active, created_at, updated_at`

	err := r.QueryRowContext(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.University,
		user.Course,
		user.Year,
	).Scan(&user.ID, &user.Reputation, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `SELECT`+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *userRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User
	err := r.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.University,
		&user.Course,
		&user.Year,
		&user.Bio,
		&user.Avatar,
		&user.Reputation,
		&user.IsActive,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE LOWER(email) = LOWER($1) OR LOWER(username) = LOWER($2)
		)`
	if err := r.QueryRowContext(ctx, query, email, username).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return exists, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET university = $2, course = $3, year = $4, bio = $5, avatar = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.QueryRowContext(ctx, query,
		user.ID,
		user.University,
		user.Course,
		user.Year,
		user.Bio,
		user.Avatar,
	).Scan(&user.UpdatedAt)
	if err == sql.ErrNoRows {
		return sql.ErrNoRows
	}
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.ExecContext(ctx, `UPDATE users SET last_login = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// buildUserFilter turns a search filter into a WHERE clause with numbered
// args. Every field is a case-insensitive substring match; inactive accounts
// are always excluded.
func buildUserFilter(filter models.UserFilter) (string, []interface{}) {
	conditions := []string{"is_active = TRUE"}
	args := make([]interface{}, 0, 3)

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.Search != "" {
		addCondition("(username ILIKE $%[1]d OR university ILIKE $%[1]d OR course ILIKE $%[1]d)", "%"+filter.Search+"%")
	}
	if filter.University != "" {
		addCondition("university ILIKE $%d", "%"+filter.University+"%")
	}
	if filter.Course != "" {
		addCondition("course ILIKE $%d", "%"+filter.Course+"%")
	}
	return strings.Join(conditions, " AND "), args
}

func (r *userRepository) Search(ctx context.Context, filter models.UserFilter, params models.PaginationParams) ([]models.PublicUser, int, error) {
	where, args := buildUserFilter(filter)

	total, err := r.GetTotalCount(ctx, `SELECT COUNT(*) FROM users WHERE `+where, args...)
	if err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`
		SELECT id, username, university, course, year, bio, avatar, reputation, created_at
		FROM users
		WHERE %s
		ORDER BY reputation DESC, created_at DESC
		LIMIT $%d OFFSET $%d`, where, len(args)+1, len(args)+2)

	rows, err := r.QueryContext(ctx, listQuery, append(args, params.Limit, params.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search users: %w", err)
	}
	defer rows.Close()

	users := make([]models.PublicUser, 0)
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(
			&u.ID, &u.Username, &u.University, &u.Course, &u.Year,
			&u.Bio, &u.Avatar, &u.Reputation, &u.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) GetStats(ctx context.Context, userID int64) (*models.UserStats, error) {
	var stats models.UserStats
	query := `
		SELECT
			COUNT(res.id),
			COALESCE(SUM(res.upvotes), 0),
			COALESCE(SUM(res.downloads), 0),
			COALESCE(SUM(res.views), 0),
			(SELECT COUNT(*) FROM resource_bookmarks WHERE user_id = $1),
			(SELECT COUNT(*) FROM resource_comments WHERE user_id = $1)
		FROM resources res
		WHERE res.author_id = $1 AND res.status <> 'rejected'`

	err := r.QueryRowContext(ctx, query, userID).Scan(
		&stats.ResourceCount,
		&stats.TotalUpvotes,
		&stats.TotalDownloads,
		&stats.TotalViews,
		&stats.BookmarkCount,
		&stats.CommentCount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &stats, nil
}

func (r *userRepository) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT
			u.id, u.username, u.avatar, u.university, u.reputation,
			COUNT(res.id),
			COALESCE(SUM(res.upvotes), 0)
		FROM users u
		LEFT JOIN resources res ON res.author_id = u.id AND res.status = 'approved'
		WHERE u.is_active = TRUE
		GROUP BY u.id
		ORDER BY u.reputation DESC, COALESCE(SUM(res.upvotes), 0) DESC, u.username ASC
		LIMIT $1`

	rows, err := r.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0, limit)
	rank := 0
	for rows.Next() {
		rank++
		entry := models.LeaderboardEntry{Rank: rank}
		if err := rows.Scan(
			&entry.UserID, &entry.Username, &entry.Avatar, &entry.University,
			&entry.Reputation, &entry.ResourceCount, &entry.TotalUpvotes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
