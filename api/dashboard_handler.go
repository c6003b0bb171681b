package api

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zakdoc/blog-backend/models"
)

type dashboardHandler struct {
	responder Responder
	logger    zerolog.Logger
	users     userStore
	blogs     blogStore
}

func newDashboardHandler(users userStore, blogs blogStore) dashboardHandler {
	logger := log.With().Str("handlerName", "dashboardHandler").Logger()

	return dashboardHandler{
		responder: NewResponder(logger),
		logger:    logger,
		users:     users,
		blogs:     blogs,
	}
}

type dashboardSummary struct {
	TotalUsers     int64 `json:"totalUsers"`
	InactiveUsers  int64 `json:"inactiveUsers"`
	TotalBlogs     int64 `json:"totalBlogs"`
	PublishedBlogs int64 `json:"publishedBlogs"`
	DraftBlogs     int64 `json:"draftBlogs"`
}

func (h dashboardHandler) usersCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.users.Count(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "users", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "totalUsers": n})
	}
}

// blogsCount includes soft-deleted blogs
func (h dashboardHandler) blogsCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.blogs.Count(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "blogs", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "totalBlogs": n})
	}
}

func (h dashboardHandler) inactiveUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := h.users.CountByStatus(r.Context(), models.UserInactive)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "users", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "inactiveUsers": n})
	}
}

// summary runs the independent counts concurrently and fails if any of them fails
func (h dashboardHandler) summary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		var s dashboardSummary
		g, ctx := errgroup.WithContext(r.Context())

		g.Go(func() (err error) {
			s.TotalUsers, err = h.users.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			s.InactiveUsers, err = h.users.CountByStatus(ctx, models.UserInactive)
			return err
		})
		g.Go(func() (err error) {
			s.TotalBlogs, err = h.blogs.Count(ctx)
			return err
		})
		g.Go(func() (err error) {
			s.PublishedBlogs, err = h.blogs.CountByStatus(ctx, models.BlogPublished)
			return err
		})
		g.Go(func() (err error) {
			s.DraftBlogs, err = h.blogs.CountByStatus(ctx, models.BlogDraft)
			return err
		})

		if err := g.Wait(); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("count", "dashboard", err))
			return
		}
		h.logger.Debug().Dur("duration", time.Since(start)).Msg("Dashboard summary computed")
		h.responder.WriteJSON(w, s)
	}
}
