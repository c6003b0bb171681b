package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/zakdoc/blog-backend/models"
)

const (
	admin  = models.RoleAdmin
	author = models.RoleAuthor
	member = models.RoleUser
)

func setupRoutes(r chi.Router, handlers *routeHandlers, auth authMiddleware) {
	r.Get("/health", handlers.healthHandler.health())

	r.Route("/user", func(r chi.Router) {
		h := handlers.userHandler
		r.Post("/register", h.register())
		r.Post("/verify-otp", h.verifyOTP())
		r.Post("/resend-otp", h.resendOTP())
		r.Post("/login", h.login())
		r.Post("/logout", h.logout())
		r.Post("/forget-password", h.forgetPassword())
		r.Post("/reset-password", h.resetPassword())

		r.Group(func(r chi.Router) {
			r.Use(auth.authenticate)
			r.With(auth.authorize(member, author, admin)).Get("/user-details", h.userDetails())
			r.With(auth.authorize(member, author)).Put("/update-profile", h.updateProfile())

			r.Group(func(r chi.Router) {
				r.Use(auth.authorize(admin))
				r.Get("/all-users", h.getAllUsers())
				r.Get("/{id}", h.getUser())
				r.Put("/{id}/status", h.updateStatus())
				r.Put("/{id}/role", h.updateRole())
				r.Delete("/{id}/delete", h.deleteUser())
			})
		})
	})

	r.Route("/blog", func(r chi.Router) {
		h := handlers.blogHandler
		r.Use(auth.authenticate)
		r.With(auth.authorize(author)).Post("/create", h.createBlog())
		r.With(auth.authorize(author)).Put("/update/{id}", h.updateBlog())
		r.With(auth.authorize(author)).Put("/publish/{id}", h.publishBlog())
		r.With(auth.authorize(author, admin)).Delete("/delete/{id}", h.deleteBlog())
		r.With(auth.authorize(member, admin, author)).Get("/all-blogs", h.getAllBlogs())
		r.With(auth.authorize(member, admin, author)).Get("/single-blog/{id}", h.getBlog())
		r.With(auth.authorize(member, author)).Put("/reaction/{blogId}", h.react())
		r.With(auth.authorize(member, admin, author)).Get("/filter-blogs", h.filterBlogs())
		r.With(auth.authorize(author)).Post("/featured-image", h.uploadFeaturedImage())
	})

	r.Route("/comment", func(r chi.Router) {
		h := handlers.commentHandler
		r.Use(auth.authenticate)
		r.With(auth.authorize(member, author)).Post("/create", h.createComment())
		r.With(auth.authorize(member, author, admin)).Delete("/delete/{id}", h.deleteComment())
		r.With(auth.authorize(member, author)).Put("/update/{id}", h.updateComment())
		r.With(auth.authorize(member, author, admin)).Get("/all-comments/{blogId}", h.getBlogComments())
	})

	r.Route("/category", func(r chi.Router) {
		h := handlers.taxonomyHandler
		r.Use(auth.authenticate)
		r.With(auth.authorize(admin)).Post("/create", h.createCategory())
		r.With(auth.authorize(admin, author)).Get("/all-categories", h.getAllCategories())
		r.With(auth.authorize(admin)).Delete("/delete-category/{id}", h.deleteCategory())
	})

	r.Route("/tag", func(r chi.Router) {
		h := handlers.taxonomyHandler
		r.Use(auth.authenticate)
		r.With(auth.authorize(admin)).Post("/create", h.createTag())
		r.With(auth.authorize(admin, author)).Get("/all-tags", h.getAllTags())
		r.With(auth.authorize(admin)).Delete("/delete-tag/{id}", h.deleteTag())
	})

	r.Route("/dashboard", func(r chi.Router) {
		h := handlers.dashboardHandler
		r.Use(auth.authenticate, auth.authorize(admin))
		r.Get("/users-count", h.usersCount())
		r.Get("/blogs-count", h.blogsCount())
		r.Get("/inactive-users", h.inactiveUsers())
		r.Get("/summary", h.summary())
	})
}
