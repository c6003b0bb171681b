package blogquery

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/zakdoc/blog-backend/models"
)

// SortField is a whitelisted blog attribute that listings may be ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortTitle     SortField = "title"
	SortSlug      SortField = "slug"
	SortStatus    SortField = "status"
)

var sortColumns = map[SortField]string{
	SortCreatedAt: "created_at",
	SortUpdatedAt: "updated_at",
	SortTitle:     "title",
	SortSlug:      "slug",
	SortStatus:    "status",
}

// Column is the database column for the field.
func (f SortField) Column() string {
	return sortColumns[f]
}

type Sort struct {
	Field     SortField
	Ascending bool
}

// Filter is the predicate every listed blog satisfies.
//
// AuthorIDs is nil when no author narrowing applies; a non-nil empty slice matches nothing.
// NoMatch is set when a reference in the input can never match, such as a malformed category ID.
type Filter struct {
	ExcludeDeleted bool
	Title          string
	AuthorName     string
	AuthorIDs      []uuid.UUID
	CategoryID     *uuid.UUID
	TagIDs         []uuid.UUID
	NoMatch        bool
}

type Query struct {
	Filter Filter
	Sort   Sort
	Skip   int
	Limit  int
	Page   int
}

// Build normalizes p into a Query. It never fails: bad input falls back to defaults
// or to a filter that matches nothing.
func Build(p Params) Query {
	q := Query{
		Filter: Filter{
			ExcludeDeleted: true,
			Title:          strings.TrimSpace(p.Title),
			AuthorName:     strings.TrimSpace(p.AuthorName),
		},
		Sort:  Sort{Field: SortCreatedAt, Ascending: strings.EqualFold(strings.TrimSpace(p.SortOrder), "asc")},
		Page:  p.Page,
		Limit: p.Limit,
	}

	if field := SortField(strings.TrimSpace(p.SortBy)); field.Column() != "" {
		q.Sort.Field = field
	}

	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	// Skip must stay representable.
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	q.Skip = (q.Page - 1) * q.Limit

	if category := strings.TrimSpace(p.Category); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			q.Filter.NoMatch = true
		} else {
			q.Filter.CategoryID = &id
		}
	}

	seen := make(map[uuid.UUID]bool, len(p.Tags))
	for _, raw := range p.Tags {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			q.Filter.NoMatch = true
			continue
		}
		if !seen[id] {
			seen[id] = true
			q.Filter.TagIDs = append(q.Filter.TagIDs, id)
		}
	}
	return q
}

// Matches reports whether b satisfies the filter. Author narrowing uses AuthorIDs,
// which Execute resolves from AuthorName before the blogs are queried.
func (f Filter) Matches(b *models.Blog) bool {
	if f.NoMatch {
		return false
	}
	if f.ExcludeDeleted && b.IsDeleted {
		return false
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.AuthorIDs != nil && !containsID(f.AuthorIDs, b.AuthorID) {
		return false
	}
	if f.CategoryID != nil && (b.CategoryID == nil || *b.CategoryID != *f.CategoryID) {
		return false
	}
	if len(f.TagIDs) > 0 {
		have := b.TagIDs()
		for _, want := range f.TagIDs {
			if !containsID(have, want) {
				return false
			}
		}
	}
	return true
}

// Apply filters, sorts and pages blogs in memory. It returns the page and the number of
// blogs that matched before paging.
func (q Query) Apply(blogs []models.Blog) ([]models.Blog, int64) {
	matched := make([]models.Blog, 0, len(blogs))
	for i := range blogs {
		if q.Filter.Matches(&blogs[i]) {
			matched = append(matched, blogs[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		c := compare(&matched[i], &matched[j], q.Sort.Field)
		if c == 0 {
			c = strings.Compare(matched[i].ID.String(), matched[j].ID.String())
		}
		if q.Sort.Ascending {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(matched))
	if q.Skip < 0 || q.Skip >= len(matched) {
		return []models.Blog{}, total
	}
	end := q.Skip + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[q.Skip:end], total
}

func compare(a, b *models.Blog, field SortField) int {
	switch field {
	case SortUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	case SortSlug:
		return strings.Compare(a.Slug, b.Slug)
	case SortStatus:
		return strings.Compare(string(a.Status), string(b.Status))
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
