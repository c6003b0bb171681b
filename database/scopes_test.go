package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/blogquery"
	"github.com/zakdoc/blog-backend/models"
)

// dryRunDB renders SQL without a server; the pgx pool is never dialed
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=blog dbname=blog sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func listingSQL(db *gorm.DB, q blogquery.Query) string {
	return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var blogs []models.Blog
		return tx.Model(&models.Blog{}).Scopes(filterScope(q.Filter), pageScope(q)).Find(&blogs)
	})
}

func TestFilterScopeDefaults(t *testing.T) {
	sql := listingSQL(dryRunDB(t), blogquery.Build(blogquery.Params{Page: 2}))

	assert.Contains(t, sql, "blogs.is_deleted = false")
	assert.Contains(t, sql, "ORDER BY blogs.created_at DESC, blogs.id DESC")
	assert.Contains(t, sql, "LIMIT 10 OFFSET 10")
	assert.NotContains(t, sql, "ILIKE")
}

func TestFilterScopeTitleIsEscaped(t *testing.T) {
	sql := listingSQL(dryRunDB(t), blogquery.Build(blogquery.Params{Title: "50%_off"}))

	assert.Contains(t, sql, `blogs.title ILIKE '%50\%\_off%'`)
}

func TestFilterScopeReferences(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	category := uuid.New()
	author := uuid.New()

	q := blogquery.Build(blogquery.Params{
		Category:  category.String(),
		Tags:      []string{a.String(), b.String()},
		SortBy:    "title",
		SortOrder: "asc",
	})
	q.Filter.AuthorIDs = []uuid.UUID{author}
	sql := listingSQL(dryRunDB(t), q)

	assert.Contains(t, sql, "blogs.category_id = '"+category.String()+"'")
	assert.Contains(t, sql, "blogs.author_id IN ('"+author.String()+"')")
	assert.Contains(t, sql, "blogs.id IN (SELECT blog_id FROM")
	assert.Contains(t, sql, "HAVING COUNT(DISTINCT tag_id) = 2")
	assert.Contains(t, sql, "ORDER BY blogs.title ASC, blogs.id ASC")
}

func TestFilterScopeNoMatch(t *testing.T) {
	sql := listingSQL(dryRunDB(t), blogquery.Build(blogquery.Params{Category: "garbage"}))

	assert.Contains(t, sql, "1 = 0")
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%ada%`, containsPattern("ada"))
	assert.Equal(t, `%a\\b\_c\%%`, containsPattern(`a\b_c%`))
}
