package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/zakdoc/blog-backend/blogquery"
	"github.com/zakdoc/blog-backend/database"
	"github.com/zakdoc/blog-backend/models"
	"github.com/zakdoc/blog-backend/services"
)

// The handler dependencies below are satisfied by the database repos; tests swap in fakes.

type userStore interface {
	userFinder
	Add(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindAll(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.UserStatus) (int64, error)
}

type blogStore interface {
	blogquery.Store
	Add(ctx context.Context, blog *models.Blog) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	FindActive(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	FindAll(ctx context.Context) ([]models.Blog, error)
	SlugTaken(ctx context.Context, slug string, except uuid.UUID) (bool, error)
	Update(ctx context.Context, blog *models.Blog, tags []models.Tag) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context, status models.BlogStatus) (int64, error)
}

type categoryStore interface {
	Add(ctx context.Context, category *models.Category) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	FindAll(ctx context.Context) ([]models.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagStore interface {
	Add(ctx context.Context, tag *models.Tag) error
	FindAll(ctx context.Context) ([]models.Tag, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type commentStore interface {
	Add(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	FindByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Comment, error)
	UpdateText(ctx context.Context, id uuid.UUID, text string) (*models.Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type reactionStore interface {
	Set(ctx context.Context, blogID, userID uuid.UUID, kind models.ReactionKind) (database.ReactionTotals, error)
}

type imageUploader interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
}

type healthChecker interface {
	Health(ctx context.Context) map[string]string
}

// deps bundles everything the router wires into handlers
type deps struct {
	users      userStore
	blogs      blogStore
	categories categoryStore
	tags       tagStore
	comments   commentStore
	reactions  reactionStore
	health     healthChecker
	mailer     services.Mailer
	otp        services.OTPProvider
	images     imageUploader
}

func depsFromDatabase(db database.Database, mailer services.Mailer, otp services.OTPProvider, images imageUploader) deps {
	return deps{
		users:      db.UserRepo(),
		blogs:      db.BlogRepo(),
		categories: db.CategoryRepo(),
		tags:       db.TagRepo(),
		comments:   db.CommentRepo(),
		reactions:  db.ReactionRepo(),
		health:     db,
		mailer:     mailer,
		otp:        otp,
		images:     images,
	}
}

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	userHandler      userHandler
	blogHandler      blogHandler
	commentHandler   commentHandler
	taxonomyHandler  taxonomyHandler
	dashboardHandler dashboardHandler
	healthHandler    healthHandler
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(d deps, tokens tokenIssuer, secureCookies bool) *routeHandlers {
	return &routeHandlers{
		userHandler:      newUserHandler(d.users, d.otp, tokens, secureCookies),
		blogHandler:      newBlogHandler(d.blogs, d.categories, d.tags, d.reactions, d.mailer, d.images),
		commentHandler:   newCommentHandler(d.comments, d.blogs),
		taxonomyHandler:  newTaxonomyHandler(d.categories, d.tags),
		dashboardHandler: newDashboardHandler(d.users, d.blogs),
		healthHandler:    newHealthHandler(d.health),
	}
}
