package api

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/zakdoc/blog-backend/commenttree"
	"github.com/zakdoc/blog-backend/errs"
	"github.com/zakdoc/blog-backend/models"
)

type commentHandler struct {
	responder Responder
	logger    zerolog.Logger
	comments  commentStore
	blogs     blogStore
}

func newCommentHandler(comments commentStore, blogs blogStore) commentHandler {
	logger := log.With().Str("handlerName", "commentHandler").Logger()

	return commentHandler{
		responder: NewResponder(logger),
		logger:    logger,
		comments:  comments,
		blogs:     blogs,
	}
}

type createCommentRequest struct {
	BlogID          string  `json:"blogId"`
	CommentText     string  `json:"commentText"`
	ParentCommentID *string `json:"parentCommentId"`
}

type updateCommentRequest struct {
	CommentText string `json:"commentText"`
}

func validateCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errs.NewMissingRequiredFieldError("commentText")
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return "", errs.NewInvalidFieldError("commentText", "must be at most 1000 characters")
	}
	return text, nil
}

func (h commentHandler) createComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var req createCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if strings.TrimSpace(req.BlogID) == "" {
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("blogId"))
			return
		}
		blogID, err := uuid.Parse(strings.TrimSpace(req.BlogID))
		if err != nil {
			h.responder.WriteError(w, errs.NewInvalidFieldError("blogId", "must be a UUID"))
			return
		}
		text, err := validateCommentText(req.CommentText)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.blogs.FindActive(r.Context(), blogID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}

		comment := models.Comment{BlogID: blogID, UserID: user.ID, CommentText: text}
		if req.ParentCommentID != nil && strings.TrimSpace(*req.ParentCommentID) != "" {
			parentID, err := h.resolveParent(r, blogID, strings.TrimSpace(*req.ParentCommentID))
			if err != nil {
				h.responder.WriteError(w, err)
				return
			}
			comment.ParentCommentID = &parentID
		}

		if err := h.comments.Add(r.Context(), &comment); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "comment", err))
			return
		}

		h.responder.WriteCreated(w, map[string]interface{}{
			"success": true,
			"message": "Comment created successfully",
			"comment": comment,
		})
	}
}

// resolveParent accepts only a parent that exists on the same blog
func (h commentHandler) resolveParent(r *http.Request, blogID uuid.UUID, raw string) (uuid.UUID, error) {
	parentID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewInvalidFieldError("parentCommentId", "must be a UUID")
	}
	parent, err := h.comments.FindByID(r.Context(), parentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return uuid.Nil, errs.NewInvalidFieldError("parentCommentId", "parent comment does not exist")
	}
	if err != nil {
		return uuid.Nil, wrapDatabaseError("fetch", "comment", err)
	}
	if parent.BlogID != blogID {
		return uuid.Nil, errs.NewInvalidFieldError("parentCommentId", "parent comment belongs to another blog")
	}
	return parentID, nil
}

func (h commentHandler) updateComment() http.HandlerFunc {
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

		var req updateCommentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		text, err := validateCommentText(req.CommentText)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		comment, err := h.comments.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "comment", err))
			return
		}
		if !sameUser(comment.UserID, user.ID) {
			h.responder.WriteError(w, errs.NewForbiddenError("only the commenter can edit this comment"))
			return
		}

		updated, err := h.comments.UpdateText(r.Context(), id, text)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("update", "comment", err))
			return
		}
		h.responder.WriteJSON(w, map[string]interface{}{
			"success": true,
			"message": "Comment updated successfully",
			"comment": updated,
		})
	}
}

// deleteComment is allowed for admins, the blog's author and the commenter, checked in that order
func (h commentHandler) deleteComment() http.HandlerFunc {
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

		comment, err := h.comments.FindByID(r.Context(), id)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "comment", err))
			return
		}
		blog, err := h.blogs.FindByID(r.Context(), comment.BlogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}

		var deletedBy string
		switch {
		case user.Role == models.RoleAdmin:
			deletedBy = "Admin"
		case sameUser(blog.AuthorID, user.ID):
			deletedBy = "Blog Author"
		case sameUser(comment.UserID, user.ID):
			deletedBy = "Comment Owner"
		default:
			h.responder.WriteError(w, errs.NewForbiddenError("you are not allowed to delete this comment"))
			return
		}

		if err := h.comments.Delete(r.Context(), id); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("delete", "comment", err))
			return
		}
		h.responder.WriteMessage(w, "Comment deleted successfully by "+deletedBy)
	}
}

func (h commentHandler) getBlogComments() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogID, err := uuidParam(r, "blogId")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if _, err := h.blogs.FindActive(r.Context(), blogID); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "blog", err))
			return
		}

		comments, err := h.comments.FindByBlog(r.Context(), blogID)
		if err != nil {
			h.responder.WriteError(w, wrapDatabaseError("fetch", "comments", err))
			return
		}

		h.responder.WriteJSON(w, map[string]interface{}{
			"success":       true,
			"totalComments": len(comments),
			"comments":      commenttree.Build(comments),
		})
	}
}
