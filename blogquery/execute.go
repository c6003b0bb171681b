package blogquery

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/zakdoc/blog-backend/models"
)

// Store is the persistence the listing needs. FindBlogs must honour Query.Skip/Limit/Sort and
// return blogs with author, category and tags loaded; CountBlogs ignores paging.
type Store interface {
	AuthorIDsByName(ctx context.Context, name string) ([]uuid.UUID, error)
	FindBlogs(ctx context.Context, q Query) ([]models.Blog, error)
	CountBlogs(ctx context.Context, f Filter) (int64, error)
}

type Result struct {
	Items      []models.Blog
	TotalCount int64
	Page       int
	Limit      int
	TotalPages int
}

// Execute resolves author names, then fetches one page and the total count with the same filter.
func Execute(ctx context.Context, store Store, q Query) (Result, error) {
	res := Result{Items: []models.Blog{}, Page: q.Page, Limit: q.Limit}
	if q.Filter.NoMatch {
		return res, nil
	}

	if q.Filter.AuthorName != "" {
		ids, err := store.AuthorIDsByName(ctx, q.Filter.AuthorName)
		if err != nil {
			return res, fmt.Errorf("resolve author %q: %w", q.Filter.AuthorName, err)
		}
		if len(ids) == 0 {
			return res, nil
		}
		q.Filter.AuthorIDs = ids
	}

	total, err := store.CountBlogs(ctx, q.Filter)
	if err != nil {
		return res, fmt.Errorf("count blogs: %w", err)
	}
	res.TotalCount = total
	res.TotalPages = TotalPages(total, q.Limit)

	if int64(q.Skip) >= total {
		return res, nil
	}

	items, err := store.FindBlogs(ctx, q)
	if err != nil {
		return res, fmt.Errorf("find blogs: %w", err)
	}
	if items != nil {
		res.Items = items
	}
	return res, nil
}

// TotalPages is ceil(total/limit), or 0 when limit is not positive.
func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
