package api

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
	"github.com/zakdoc/blog-backend/services"
)

// taxonomyHandler serves categories and tags, which share the name-plus-slug shape
type taxonomyHandler struct {
	responder  Responder
	logger     zerolog.Logger
	categories categoryStore
	tags       tagStore
}

func newTaxonomyHandler(categories categoryStore, tags tagStore) taxonomyHandler {
	logger := log.With().Str("handlerName", "taxonomyHandler").Logger()

	return taxonomyHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		categories: categories,
		tags:       tags,
	}
}

type nameRequest struct {
	Name string `json:"name"`
}

// decodeName returns the trimmed name and its slug
func decodeName(w http.ResponseWriter, r *http.Request) (string, string, error) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return "", "", err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return "", "", errs.NewMissingRequiredFieldError("name")
	}
	slug := services.Slugify(name)
	if slug == "" {
		return "", "", errs.NewInvalidFieldError("name", "must contain letters or digits")
	}
	return name, slug, nil
}

func (h taxonomyHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, slug, err := decodeName(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		category := models.Category{Name: name, Slug: slug}
		if err := h.categories.Add(r.Context(), &category); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "category", err))
			return
		}
		h.responder.WriteCreated(w, map[string]interface{}{
			"success":  true,
			"message":  "Category created successfully",
			"category": category,
		})
	}
}

func (h taxonomyHandler) getAllCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categories.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "categories", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "categories": categories})
	}
}

func (h taxonomyHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.categories.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "category", err))
			return
		}
		h.responder.WriteMessage(w, "Category deleted successfully")
	}
}

func (h taxonomyHandler) createTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, slug, err := decodeName(w, r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		tag := models.Tag{Name: name, Slug: slug}
		if err := h.tags.Add(r.Context(), &tag); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "tag", err))
			return
		}
		h.responder.WriteCreated(w, map[string]interface{}{
			"success": true,
			"message": "Tag created successfully",
			"tag":     tag,
		})
	}
}

func (h taxonomyHandler) getAllTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.tags.FindAll(r.Context())
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "tags", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{"success": true, "tags": tags})
	}
}

func (h taxonomyHandler) deleteTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuidParam(r, "id")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.tags.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "tag", err))
			return
		}
		h.responder.WriteMessage(w, "Tag deleted successfully")
	}
}
