package repositories

import (
	"testing"

	"educate/internal/models"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Resource filter SQL
// ============================================================================

func TestBuildResourceFilter(t *testing.T) {
	t.Run("empty filter produces no clause", func(t *testing.T) {
		where, args := buildResourceFilter(models.ResourceFilter{})

		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("search matches tags as substrings", func(t *testing.T) {
		where, args := buildResourceFilter(models.ResourceFilter{Search: "Algo"})

		assert.Contains(t, where, "res.title ILIKE $1")
		assert.Contains(t, where, "res.description ILIKE $1")
		assert.Contains(t, where, "res.subject ILIKE $1")
		assert.Contains(t, where, "EXISTS (SELECT 1 FROM unnest(res.tags) tag WHERE tag ILIKE $1)")
		assert.Equal(t, []interface{}{"%Algo%"}, args)
	})

	t.Run("numbers args in order", func(t *testing.T) {
		where, args := buildResourceFilter(models.ResourceFilter{
			Status:   models.StatusApproved,
			Category: "Mathematics",
			Search:   "calculus",
		})

		assert.Contains(t, where, "res.status = $1")
		assert.Contains(t, where, "res.category = $2")
		assert.Contains(t, where, "tag ILIKE $3")
		assert.Equal(t, []interface{}{models.StatusApproved, "Mathematics", "%calculus%"}, args)
	})

	t.Run("subject filter is a substring match", func(t *testing.T) {
		where, args := buildResourceFilter(models.ResourceFilter{Subject: "Linear"})

		assert.Contains(t, where, "res.subject ILIKE $1")
		assert.Equal(t, []interface{}{"%Linear%"}, args)
	})
}

// ============================================================================
// User filter SQL
// ============================================================================

func TestBuildUserFilter(t *testing.T) {
	t.Run("always excludes inactive accounts", func(t *testing.T) {
		where, args := buildUserFilter(models.UserFilter{})

		assert.Equal(t, "is_active = TRUE", where)
		assert.Empty(t, args)
	})

	t.Run("university and course match as substrings", func(t *testing.T) {
		where, args := buildUserFilter(models.UserFilter{
			University: "Nairobi",
			Course:     "Computer",
		})

		assert.Contains(t, where, "university ILIKE $1")
		assert.Contains(t, where, "course ILIKE $2")
		assert.Equal(t, []interface{}{"%Nairobi%", "%Computer%"}, args)
	})

	t.Run("search spans username, university and course", func(t *testing.T) {
		where, args := buildUserFilter(models.UserFilter{Search: "eng"})

		assert.Contains(t, where, "username ILIKE $1")
		assert.Contains(t, where, "university ILIKE $1")
		assert.Contains(t, where, "course ILIKE $1")
		assert.Equal(t, []interface{}{"%eng%"}, args)
	})
}
