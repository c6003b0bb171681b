package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/blogquery"
	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
	"github.com/zakdoc/blog-backend/services"
)

type blogHandler struct {
	responder  Responder
	logger     zerolog.Logger
	blogs      blogStore
	categories categoryStore
	tags       tagStore
	reactions  reactionStore
	mailer     services.Mailer
	images     imageUploader
}

func newBlogHandler(blogs blogStore, categories categoryStore, tags tagStore, reactions reactionStore, mailer services.Mailer, images imageUploader) blogHandler {
	logger := log.With().Str("handlerName", "blogHandler").Logger()

	return blogHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		blogs:      blogs,
		categories: categories,
		tags:       tags,
		reactions:  reactions,
		mailer:     mailer,
		images:     images,
	}
}

// blogView is a blog as clients see it, with the reaction sets split out and the
// author reduced to its public summary
type blogView struct {
	models.Blog
	Author   *models.UserSummary `json:"author,omitempty"`
	Likes    []uuid.UUID         `json:"likes"`
	Dislikes []uuid.UUID         `json:"dislikes"`
}

func toBlogView(b *models.Blog) blogView {
	v := blogView{Blog: *b, Likes: b.Likes(), Dislikes: b.Dislikes()}
	if b.Author != nil {
		author := b.Author.Summary()
		v.Author = &author
	}
	return v
}

func toBlogViews(blogs []models.Blog) []blogView {
	views := make([]blogView, 0, len(blogs))
	for i := range blogs {
		views = append(views, toBlogView(&blogs[i]))
	}
	return views
}

type createBlogRequest struct {
	Title         string            `json:"title"`
	Content       string            `json:"content"`
	Category      string            `json:"category"`
	Tags          []string          `json:"tags"`
	FeaturedImage string            `json:"featuredImage"`
	Status        models.BlogStatus `json:"status"`
}

func (req *createBlogRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	switch {
	case req.Title == "":
		return errs.NewMissingRequiredFieldError("title")
	case strings.TrimSpace(req.Content) == "":
		return errs.NewMissingRequiredFieldError("content")
	case req.Category == "":
		return errs.NewMissingRequiredFieldError("category")
	}
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if req.Status == "" {
		req.Status = models.BlogDraft
	}
	if !req.Status.Valid() {
		return errs.NewInvalidFieldError("status", "must be draft or published")
	}
	return nil
}

// updateBlogRequest carries only the fields being changed; a nil pointer leaves the field alone
type updateBlogRequest struct {
	Title         *string            `json:"title"`
	Content       *string            `json:"content"`
	Category      *string            `json:"category"`
	Tags          *[]string          `json:"tags"`
	FeaturedImage *string            `json:"featuredImage"`
	Status        *models.BlogStatus `json:"status"`
}

type reactionRequest struct {
	Action models.ReactionKind `json:"action"`
}

type filterBlogsResponse struct {
	TotalBlogs  int64      `json:"totalBlogs"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Limit       int        `json:"limit"`
	Blogs       []blogView `json:"blogs"`
}

func validateTitle(title string) error {
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return errs.NewInvalidFieldError("title", "must be at most 200 characters")
	}
	if services.Slugify(title) == "" {
		return errs.NewInvalidFieldError("title", "must contain letters or digits")
	}
	return nil
}

// resolveCategory checks that the referenced category exists
func (h blogHandler) resolveCategory(r *http.Request, raw string) (*uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errs.NewInvalidFieldError("category", "must be a UUID")
	}
	if _, err := h.categories.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewInvalidFieldError("category", "category does not exist")
		}
		return nil, wrapDatabaseError("fetch", "category", err)
	}
	return &id, nil
}

// resolveTags loads the referenced tags, failing when any of them is unknown
func (h blogHandler) resolveTags(r *http.Request, raw []string) ([]models.Tag, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	seen := map[uuid.UUID]bool{}
	for _, s := range raw {
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return nil, errs.NewInvalidFieldError("tags", "every tag must be a UUID")
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	tags, err := h.tags.FindByIDs(r.Context(), ids)
	if err != nil {
		return nil, wrapDatabaseError("fetch", "tags", err)
	}
	if len(tags) != len(ids) {
		return nil, errs.NewInvalidFieldError("tags", "one or more tags do not exist")
	}
	return tags, nil
}

func (h blogHandler) ensureSlugFree(r *http.Request, slug string, except uuid.UUID) error {
	taken, err := h.blogs.SlugTaken(r.Context(), slug, except)
	if err != nil {
		return wrapDatabaseError("check", "blog slug", err)
	}
	if taken {
		return errs.NewUniqueConstraintViolationError("blog", "slug", nil)
	}
	return nil
}

// notify emails the author; delivery failures are logged and never fail the request
func (h blogHandler) notify(r *http.Request, author *models.User, blog *models.Blog) {
	subject, body := services.DraftSavedEmail(author, blog)
	if blog.Status == models.BlogPublished {
		subject, body = services.PublishedEmail(author, blog)
	}
	if err := h.mailer.Send(r.Context(), author.Email, subject, body); err != nil {
		h.logger.Warn().Err(err).Str("blogId", blog.ID.String()).Msg("Failed to send blog notification")
	}
}

// loadOwned fetches a live blog and checks that user wrote it
func (h blogHandler) loadOwned(r *http.Request, user *models.User) (*models.Blog, error) {
	id, err := uuidParam(r, "id")
	if err != nil {
		return nil, err
	}
	blog, err := h.blogs.FindActive(r.Context(), id)
	if err != nil {
		return nil, wrapDatabaseError("fetch", "blog", err)
	}
	if !sameUser(blog.AuthorID, user.ID) {
		return nil, errs.NewForbiddenError("only the author can modify this blog")
	}
	return blog, nil
}

func (h blogHandler) createBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req createBlogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := req.validate(); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		slug := services.Slugify(req.Title)
		if err := h.ensureSlugFree(r, slug, uuid.Nil); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		categoryID, err := h.resolveCategory(r, req.Category)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tags, err := h.resolveTags(r, req.Tags)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog := models.Blog{
			AuthorID:      user.ID,
			Title:         req.Title,
			Content:       req.Content,
			Slug:          slug,
			FeaturedImage: strings.TrimSpace(req.FeaturedImage),
			CategoryID:    categoryID,
			Status:        req.Status,
			Tags:          tags,
		}
		if err := h.blogs.Add(r.Context(), &blog); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "blog", err))
			return
		}

		created, err := h.blogs.FindByID(r.Context(), blog.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}
		h.notify(r, user, created)

		h.responder.WriteCreated(w, map[string]interface{}{
			"success": true,
			"message": "Blog created successfully",
			"blog":    toBlogView(created),
		})
	}
}

func (h blogHandler) updateBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		blog, err := h.loadOwned(r, user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req updateBlogRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				h.responder.WriteError(w, errs.NewInvalidFieldError("title", "cannot be empty"))
				return
			}
			if err := validateTitle(title); err != nil {
				h.responder.WriteError(w, err)
				return
			}
			if title != blog.Title {
				slug := services.Slugify(title)
				if err := h.ensureSlugFree(r, slug, blog.ID); err != nil {
					h.responder.WriteError(w, err)
					return
				}
				blog.Title, blog.Slug = title, slug
			}
		}
		if req.Content != nil {
			if strings.TrimSpace(*req.Content) == "" {
				h.responder.WriteError(w, errs.NewInvalidFieldError("content", "cannot be empty"))
				return
			}
			blog.Content = *req.Content
		}
		if req.FeaturedImage != nil {
			blog.FeaturedImage = strings.TrimSpace(*req.FeaturedImage)
		}
		if req.Category != nil {
			categoryID, err := h.resolveCategory(r, strings.TrimSpace(*req.Category))
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			blog.CategoryID = categoryID
			blog.Category = nil
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				h.responder.WriteError(w, errs.NewInvalidFieldError("status", "must be draft or published"))
				return
			}
			blog.Status = *req.Status
		}

		var tags []models.Tag
		if req.Tags != nil {
			if tags, err = h.resolveTags(r, *req.Tags); err != nil {
				h.responder.WriteError(w, err)
				return
			}
		}

		if err := h.blogs.Update(r.Context(), blog, tags); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog", err))
			return
		}
		updated, err := h.blogs.FindByID(r.Context(), blog.ID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"message": "Blog updated successfully",
			"blog":    toBlogView(updated),
		})
	}
}

func (h blogHandler) publishBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		blog, err := h.loadOwned(r, user)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if blog.Status == models.BlogPublished {
			h.responder.WriteError(w, errs.NewConflictError("blog is already published"))
			return
		}

		blog.Status = models.BlogPublished
		if err := h.blogs.Update(r.Context(), blog, nil); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "blog", err))
			return
		}
		h.notify(r, user, blog)

		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"message": "Blog published successfully",
			"blog":    toBlogView(blog),
		})
	}
}

// deleteBlog soft-deletes; admins may delete any blog, authors only their own
func (h blogHandler) deleteBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blog, err := h.blogs.FindActive(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}
		if user.Role != models.RoleAdmin && !sameUser(blog.AuthorID, user.ID) {
			h.responder.WriteError(w, errs.NewForbiddenError("only the author or an admin can delete this blog"))
			return
		}

		if err := h.blogs.SoftDelete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "blog", err))
			return
		}
		h.responder.WriteMessage(w, "Blog deleted successfully")
	}
}

func (h blogHandler) getAllBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogs, err := h.blogs.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blogs", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"total":   len(blogs),
			"blogs":   toBlogViews(blogs),
		})
	}
}

func (h blogHandler) getBlog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		blog, err := h.blogs.FindActive(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "blog": toBlogView(blog)})
	}
}

func (h blogHandler) react() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		blogID, err := uuidParam(r, "blogId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req reactionRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if !req.Action.Valid() {
			h.responder.WriteError(w, errs.NewInvalidFieldError("action", "must be like or dislike"))
			return
		}

		if _, err := h.blogs.FindActive(r.Context(), blogID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}
		totals, err := h.reactions.Set(r.Context(), blogID, user.ID, req.Action)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "reaction", err))
			return
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success":       true,
			"message":       "Blog " + string(req.Action) + "d successfully",
			"totalLikes":    totals.Likes,
			"totalDislikes": totals.Dislikes,
		})
	}
}

func (h blogHandler) filterBlogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := blogquery.Build(blogquery.ParseParams(r.URL.Query()))

		res, err := blogquery.Execute(r.Context(), h.blogs, query)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("filter", "blogs", err))
			return
		}

		h.responder.WriteJSON(w, filterBlogsResponse{
			TotalBlogs:  res.TotalCount,
			CurrentPage: res.Page,
			TotalPages:  res.TotalPages,
			Limit:       res.Limit,
			Blogs:       toBlogViews(res.Items),
		})
	}
}

// uploadFeaturedImage stores a multipart "image" file and returns its public URL
func (h blogHandler) uploadFeaturedImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.images == nil {
			h.responder.WriteError(w, errs.NewApiErr(http.StatusServiceUnavailable, "image uploads are not configured"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+(64<<10))
		file, _, err := r.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxImageSize))
				return
			}
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxImageSize+1))
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("image", err))
			return
		}
		if len(data) > services.MaxImageSize {
			h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxImageSize))
			return
		}

		contentType := http.DetectContentType(data)
		if !isImageType(contentType) {
			h.responder.WriteError(w, errs.NewUnsupportedMediaTypeError(contentType, services.ImageContentTypes()))
			return
		}

		url, err := h.images.Upload(r.Context(), contentType, data)
		if err != nil {
			h.responder.WriteError(w, errs.NewInternalErrorWithCause("could not store image", err))
			return
		}
		h.responder.WriteCreated(w, map[string]interface{}{"success": true, "url": url})
	}
}

func isImageType(contentType string) bool {
	for _, allowed := range services.ImageContentTypes() {
		if contentType == allowed {
			return true
		}
	}
	return false
}
