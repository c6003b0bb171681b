package api

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/blogquery"
	"github.com/zakdoc/blog-backend/database"
	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
)

// memStore is an in-memory stand-in for the database repos. Each fake* type below
// exposes one repo's method set over the shared state.
type memStore struct {
	mu         sync.Mutex
	ticks      int
	users      map[uuid.UUID]models.User
	blogs      map[uuid.UUID]models.Blog
	categories map[uuid.UUID]models.Category
	tags       map[uuid.UUID]models.Tag
	comments   map[uuid.UUID]models.Comment
	reactions  map[[2]uuid.UUID]models.ReactionKind
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[uuid.UUID]models.User{},
		blogs:      map[uuid.UUID]models.Blog{},
		categories: map[uuid.UUID]models.Category{},
		tags:       map[uuid.UUID]models.Tag{},
		comments:   map[uuid.UUID]models.Comment{},
		reactions:  map[[2]uuid.UUID]models.ReactionKind{},
	}
}

// now hands out strictly increasing timestamps so orderings are deterministic
func (m *memStore) now() time.Time {
	m.ticks++
	return time.Date(2024, 1, 1, 0, 0, m.ticks, 0, time.UTC)
}

type fakeUsers struct{ *memStore }

func (f fakeUsers) Add(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = f.now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = *u
	return nil
}

func (f fakeUsers) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (f fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range f.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) FindAll(_ context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := []models.User{}
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (f fakeUsers) Update(_ context.Context, id uuid.UUID, fields map[string]interface{}) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v.(string)
		case "password":
			u.Password = v.(string)
		case "email_verified":
			u.EmailVerified = v.(bool)
		case "status":
			u.Status = v.(models.UserStatus)
		case "role":
			u.Role = v.(models.Role)
		}
	}
	f.users[id] = u
	return &u, nil
}

func (f fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.users, id)
	return nil
}

func (f fakeUsers) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f fakeUsers) CountByStatus(_ context.Context, status models.UserStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeBlogs struct{ *memStore }

// resolve fills the relations the gorm repo preloads; callers hold the lock
func (f fakeBlogs) resolve(b models.Blog) models.Blog {
	if u, ok := f.users[b.AuthorID]; ok {
		b.Author = &u
	}
	b.Category = nil
	if b.CategoryID != nil {
		if c, ok := f.categories[*b.CategoryID]; ok {
			b.Category = &c
		}
	}
	b.Reactions = nil
	for key, kind := range f.reactions {
		if key[0] == b.ID {
			b.Reactions = append(b.Reactions, models.BlogReaction{BlogID: b.ID, UserID: key[1], Kind: kind})
		}
	}
	return b
}

func (f fakeBlogs) all() []models.Blog {
	blogs := make([]models.Blog, 0, len(f.blogs))
	for _, b := range f.blogs {
		blogs = append(blogs, f.resolve(b))
	}
	return blogs
}

func (f fakeBlogs) Add(_ context.Context, b *models.Blog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.blogs {
		if existing.Slug == b.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	b.ID = uuid.New()
	b.CreatedAt = f.now()
	b.UpdatedAt = b.CreatedAt
	f.blogs[b.ID] = *b
	return nil
}

func (f fakeBlogs) FindByID(_ context.Context, id uuid.UUID) (*models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	b = f.resolve(b)
	return &b, nil
}

func (f fakeBlogs) FindActive(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	b, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.IsDeleted {
		return nil, gorm.ErrRecordNotFound
	}
	return b, nil
}

func (f fakeBlogs) FindAll(_ context.Context) ([]models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, _ := blogquery.Query{Filter: blogquery.Filter{ExcludeDeleted: true}, Limit: len(f.blogs) + 1}.Apply(f.all())
	return items, nil
}

func (f fakeBlogs) SlugTaken(_ context.Context, slug string, except uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.blogs {
		if b.Slug == slug && b.ID != except {
			return true, nil
		}
	}
	return false, nil
}

func (f fakeBlogs) Update(_ context.Context, b *models.Blog, tags []models.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.blogs[b.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	updated := *b
	updated.Tags = stored.Tags
	if tags != nil {
		updated.Tags = tags
	}
	updated.UpdatedAt = f.now()
	f.blogs[b.ID] = updated
	return nil
}

func (f fakeBlogs) SoftDelete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.blogs[id]
	if !ok || b.IsDeleted {
		return gorm.ErrRecordNotFound
	}
	b.IsDeleted = true
	f.blogs[id] = b
	return nil
}

func (f fakeBlogs) Count(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.blogs)), nil
}

func (f fakeBlogs) CountByStatus(_ context.Context, status models.BlogStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.blogs {
		if b.Status == status && !b.IsDeleted {
			n++
		}
	}
	return n, nil
}

func (f fakeBlogs) AuthorIDsByName(_ context.Context, name string) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []uuid.UUID{}
	for _, u := range f.users {
		if strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
			ids = append(ids, u.ID)
		}
	}
	return ids, nil
}

func (f fakeBlogs) FindBlogs(_ context.Context, q blogquery.Query) ([]models.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items, _ := q.Apply(f.all())
	return items, nil
}

func (f fakeBlogs) CountBlogs(_ context.Context, filter blogquery.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, total := blogquery.Query{Filter: filter, Limit: 1}.Apply(f.all())
	return total, nil
}

type fakeCategories struct{ *memStore }

func (f fakeCategories) Add(_ context.Context, c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.categories {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = uuid.New()
	c.CreatedAt = f.now()
	f.categories[c.ID] = *c
	return nil
}

func (f fakeCategories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f fakeCategories) FindAll(_ context.Context) ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Category{}
	for _, c := range f.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeCategories) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.categories, id)
	return nil
}

type fakeTags struct{ *memStore }

func (f fakeTags) Add(_ context.Context, t *models.Tag) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tags {
		if existing.Slug == t.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	t.ID = uuid.New()
	t.CreatedAt = f.now()
	f.tags[t.ID] = *t
	return nil
}

func (f fakeTags) FindAll(_ context.Context) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Tag{}
	for _, t := range f.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeTags) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Tag{}
	for _, id := range ids {
		if t, ok := f.tags[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f fakeTags) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tags[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.tags, id)
	return nil
}

type fakeComments struct{ *memStore }

func (f fakeComments) Add(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = uuid.New()
	c.CreatedAt = f.now()
	c.UpdatedAt = c.CreatedAt
	f.comments[c.ID] = *c
	return nil
}

func (f fakeComments) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (f fakeComments) FindByBlog(_ context.Context, blogID uuid.UUID) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Comment{}
	for _, c := range f.comments {
		if c.BlogID == blogID {
			if u, ok := f.users[c.UserID]; ok {
				c.User = &u
			}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (f fakeComments) UpdateText(_ context.Context, id uuid.UUID, text string) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.CommentText = text
	f.comments[id] = c
	return &c, nil
}

func (f fakeComments) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.comments, id)
	return nil
}

type fakeReactions struct{ *memStore }

func (f fakeReactions) Set(_ context.Context, blogID, userID uuid.UUID, kind models.ReactionKind) (database.ReactionTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions[[2]uuid.UUID{blogID, userID}] = kind
	var totals database.ReactionTotals
	for key, k := range f.reactions {
		if key[0] != blogID {
			continue
		}
		if k == models.ReactionLike {
			totals.Likes++
		} else {
			totals.Dislikes++
		}
	}
	return totals, nil
}

type fakeHealth struct{ status string }

func (f fakeHealth) Health(context.Context) map[string]string {
	return map[string]string{"status": f.status}
}

type sentMail struct {
	to, subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to, subject})
	return nil
}

func (m *fakeMailer) subjects() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for _, s := range m.sent {
		out = append(out, s.subject)
	}
	return out
}

const validOTP = "123456"

type fakeOTP struct {
	mu     sync.Mutex
	issued []models.OTPPurpose
}

func (f *fakeOTP) Issue(_ context.Context, _ *models.User, purpose models.OTPPurpose) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issued = append(f.issued, purpose)
	return nil
}

func (f *fakeOTP) Verify(_ context.Context, _ *models.User, _ models.OTPPurpose, code string) error {
	if code != validOTP {
		return errs.NewInvalidOTPError()
	}
	return nil
}

type fakeUploader struct {
	contentType string
}

func (f *fakeUploader) Upload(_ context.Context, contentType string, _ []byte) (string, error) {
	f.contentType = contentType
	return "https://cdn.example.com/blogs/featured/image.png", nil
}
