package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zakdoc/blog-backend/blogquery"
	"github.com/zakdoc/blog-backend/models"
)

type BlogRepo struct {
	db *gorm.DB
}

func NewBlogRepo(db *gorm.DB) *BlogRepo {
	return &BlogRepo{db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").Preload("Tags").Preload("Reactions")
}

// Add inserts a blog together with its tag links
func (r *BlogRepo) Add(ctx context.Context, blog *models.Blog) error {
	return r.db.WithContext(ctx).Omit("Author", "Category", "Reactions", "Tags.*").Create(blog).Error
}

// FindByID returns a blog including soft-deleted ones
func (r *BlogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	if err := withRelations(r.db.WithContext(ctx)).First(&blog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindActive returns a blog that has not been soft-deleted
func (r *BlogRepo) FindActive(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	var blog models.Blog
	err := withRelations(r.db.WithContext(ctx)).
		Where("is_deleted = ?", false).
		First(&blog, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// FindAll returns every blog that has not been soft-deleted, newest first
func (r *BlogRepo) FindAll(ctx context.Context) ([]models.Blog, error) {
	blogs := []models.Blog{}
	err := withRelations(r.db.WithContext(ctx)).
		Where("is_deleted = ?", false).
		Order("created_at DESC, id DESC").
		Find(&blogs).Error
	return blogs, err
}

// SlugTaken reports whether another blog already uses slug
func (r *BlogRepo) SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&models.Blog{}).Where("slug = ?", slug)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

// Update saves the blog's own columns and, when tags is non-nil, replaces its tag links
func (r *BlogRepo) Update(ctx context.Context, blog *models.Blog, tags []models.Tag) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(blog).Error; err != nil {
			return err
		}
		if tags == nil {
			return nil
		}
		if err := tx.Model(blog).Omit("Tags.*").Association("Tags").Replace(tags); err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		blog.Tags = tags
		return nil
	})
}

// SoftDelete flags a live blog as deleted
func (r *BlogRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count includes soft-deleted blogs
func (r *BlogRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Count(&n).Error
	return n, err
}

func (r *BlogRepo) CountByStatus(ctx context.Context, status models.BlogStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).
		Where("status = ? AND is_deleted = ?", status, false).
		Count(&n).Error
	return n, err
}

// AuthorIDsByName, FindBlogs and CountBlogs make BlogRepo a blogquery.Store

func (r *BlogRepo) AuthorIDsByName(ctx context.Context, name string) ([]uuid.UUID, error) {
	return NewUserRepo(r.db).IDsByName(ctx, name)
}

func (r *BlogRepo) FindBlogs(ctx context.Context, q blogquery.Query) ([]models.Blog, error) {
	blogs := []models.Blog{}
	err := withRelations(r.db.WithContext(ctx)).
		Scopes(filterScope(q.Filter), pageScope(q)).
		Find(&blogs).Error
	return blogs, err
}

func (r *BlogRepo) CountBlogs(ctx context.Context, f blogquery.Filter) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Blog{}).Scopes(filterScope(f)).Count(&n).Error
	return n, err
}

// filterScope is the SQL form of blogquery.Filter.Matches
func filterScope(f blogquery.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.NoMatch || (f.AuthorIDs != nil && len(f.AuthorIDs) == 0) {
			return db.Where("1 = 0")
		}
		if f.ExcludeDeleted {
			db = db.Where("blogs.is_deleted = ?", false)
		}
		if f.Title != "" {
			db = db.Where("blogs.title ILIKE ?", containsPattern(f.Title))
		}
		if f.AuthorIDs != nil {
			db = db.Where("blogs.author_id IN ?", f.AuthorIDs)
		}
		if f.CategoryID != nil {
			db = db.Where("blogs.category_id = ?", *f.CategoryID)
		}
		if len(f.TagIDs) > 0 {
			tagged := db.Session(&gorm.Session{NewDB: true}).
				Table("blog_tags").
				Select("blog_id").
				Where("tag_id IN ?", f.TagIDs).
				Group("blog_id").
				Having("COUNT(DISTINCT tag_id) = ?", len(f.TagIDs))
			db = db.Where("blogs.id IN (?)", tagged)
		}
		return db
	}
}

func pageScope(q blogquery.Query) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		dir := "DESC"
		if q.Sort.Ascending {
			dir = "ASC"
		}
		column := q.Sort.Field.Column()
		if column == "" {
			column = blogquery.SortCreatedAt.Column()
		}
		return db.Order(fmt.Sprintf("blogs.%s %s, blogs.id %s", column, dir, dir)).
			Offset(q.Skip).
			Limit(q.Limit)
	}
}
