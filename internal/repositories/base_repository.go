package repositories

import (
	"context"
	"database/sql"
	"educate/internal/database"
	"educate/internal/models"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// BaseRepository provides common database operations shared by all repositories.
type BaseRepository struct {
	db                 *sql.DB
	logger             *zap.Logger
	slowQueryThreshold time.Duration
}

// NewBaseRepository creates a new base repository.
func NewBaseRepository(manager *database.Manager, logger *zap.Logger, slowQueryThreshold time.Duration) *BaseRepository {
	if slowQueryThreshold <= 0 {
		slowQueryThreshold = 100 * time.Millisecond
	}
	return &BaseRepository{
		db:                 manager.DB(),
		logger:             logger,
		slowQueryThreshold: slowQueryThreshold,
	}
}

// ===============================
// CORE DATABASE OPERATIONS
// ===============================

// ExecContext executes a statement with slow-query logging.
func (r *BaseRepository) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := time.Now()
	result, err := r.db.ExecContext(ctx, query, args...)
	r.observe(query, start, err)
	return result, err
}

// QueryContext executes a query that returns rows.
func (r *BaseRepository) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, query, args...)
	r.observe(query, start, err)
	return rows, err
}

// QueryRowContext executes a query that returns a single row.
func (r *BaseRepository) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := time.Now()
	row := r.db.QueryRowContext(ctx, query, args...)
	r.observe(query, start, nil)
	return row
}

func (r *BaseRepository) observe(query string, start time.Time, err error) {
	duration := time.Since(start)
	if duration > r.slowQueryThreshold {
		r.logger.Warn("Slow query detected",
			zap.String("query", truncateQuery(query)),
			zap.Duration("duration", duration),
		)
	}
	if err != nil && err != sql.ErrNoRows {
		r.logger.Error("Query execution failed",
			zap.String("query", truncateQuery(query)),
			zap.Error(err),
		)
	}
}

// WithTransaction runs fn inside a transaction, rolling back on error or panic.
func (r *BaseRepository) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.logger.Error("Transaction rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ===============================
// PAGINATION HELPERS
// ===============================

// GetTotalCount runs a COUNT query and returns the total.
func (r *BaseRepository) GetTotalCount(ctx context.Context, countQuery string, args ...interface{}) (int, error) {
	var total int
	if err := r.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return total, nil
}

// BuildPaginationMeta derives page metadata from validated params and a total.
func (r *BaseRepository) BuildPaginationMeta(params models.PaginationParams, total int) models.PaginationMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + params.Limit - 1) / params.Limit
	}
	return models.PaginationMeta{
		CurrentPage:  params.Page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: params.Limit,
		HasNext:      params.Page < totalPages,
		HasPrev:      params.Page > 1 && total > 0,
	}
}

// IsNotFound reports whether err is the no-rows sentinel.
func (r *BaseRepository) IsNotFound(err error) bool {
	return err == sql.ErrNoRows
}

func truncateQuery(query string) string {
	const max = 200
	if len(query) > max {
		return query[:max] + "..."
	}
	return query
}
