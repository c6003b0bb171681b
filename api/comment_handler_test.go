package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zakdoc/blog-backend/models"
)

func TestCommentThread(t *testing.T) {
	env := newTestEnv(t)
	writer, _ := env.addUser(t, "writer", models.RoleAuthor)
	_, token := env.addUser(t, "reader", models.RoleUser)
	blog := env.addBlog(t, writer, "Post", models.BlogPublished)
	other := env.addBlog(t, writer, "Other", models.BlogPublished)

	create := func(blogID uuid.UUID, text string, parent *string) map[string]interface{} {
		body := map[string]interface{}{"blogId": blogID.String(), "commentText": text}
		if parent != nil {
			body["parentCommentId"] = *parent
		}
		rec := env.do(t, http.MethodPost, "/comment/create", body, token)
		requireStatus(t, rec, http.StatusCreated)
		return decodeBody(t, rec)["comment"].(map[string]interface{})
	}

	root := create(blog.ID, "first", nil)
	rootID := root["id"].(string)
	reply := create(blog.ID, "reply", &rootID)
	replyID := reply["id"].(string)
	create(blog.ID, "nested", &replyID)
	create(blog.ID, "second", nil)
	elsewhere := create(other.ID, "elsewhere", nil)

	rec := env.do(t, http.MethodPost, "/comment/create", map[string]interface{}{
		"blogId": blog.ID.String(), "commentText": "cross", "parentCommentId": elsewhere["id"],
	}, token)
	requireStatus(t, rec, http.StatusBadRequest)

	rec = env.do(t, http.MethodGet, "/comment/all-comments/"+blog.ID.String(), nil, token)
	requireStatus(t, rec, http.StatusOK)
	body := decodeBody(t, rec)
	assert.EqualValues(t, 4, body["totalComments"])

	roots := body["comments"].([]interface{})
	require.Len(t, roots, 2)
	first := roots[0].(map[string]interface{})
	assert.Equal(t, "first", first["commentText"])
	assert.Equal(t, "reader", first["user"].(map[string]interface{})["name"])
	replies := first["replies"].([]interface{})
	require.Len(t, replies, 1)
	nested := replies[0].(map[string]interface{})["replies"].([]interface{})
	require.Len(t, nested, 1)
	assert.Equal(t, "nested", nested[0].(map[string]interface{})["commentText"])
	assert.Equal(t, []interface{}{}, roots[1].(map[string]interface{})["replies"])
}

func TestCreateCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	writer, _ := env.addUser(t, "writer", models.RoleAuthor)
	_, token := env.addUser(t, "reader", models.RoleUser)
	_, adminToken := env.addUser(t, "boss", models.RoleAdmin)
	blog := env.addBlog(t, writer, "Post", models.BlogPublished)

	tests := []struct {
		name string
		body map[string]interface{}
		want int
	}{
		{"missing blog", map[string]interface{}{"commentText": "hi"}, http.StatusBadRequest},
		{"blank text", map[string]interface{}{"blogId": blog.ID.String(), "commentText": "   "}, http.StatusBadRequest},
		{"text too long", map[string]interface{}{"blogId": blog.ID.String(), "commentText": strings.Repeat("x", models.MaxCommentLength+1)}, http.StatusBadRequest},
		{"unknown blog", map[string]interface{}{"blogId": uuid.NewString(), "commentText": "hi"}, http.StatusNotFound},
		{"unknown parent", map[string]interface{}{"blogId": blog.ID.String(), "commentText": "hi", "parentCommentId": uuid.NewString()}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireStatus(t, env.do(t, http.MethodPost, "/comment/create", tt.body, token), tt.want)
		})
	}

	rec := env.do(t, http.MethodPost, "/comment/create", map[string]interface{}{"blogId": blog.ID.String(), "commentText": "hi"}, adminToken)
	requireStatus(t, rec, http.StatusForbidden)
}

func TestUpdateComment(t *testing.T) {
	env := newTestEnv(t)
	writer, writerToken := env.addUser(t, "writer", models.RoleAuthor)
	reader, token := env.addUser(t, "reader", models.RoleUser)
	blog := env.addBlog(t, writer, "Post", models.BlogPublished)
	comment := models.Comment{BlogID: blog.ID, UserID: reader.ID, CommentText: "before"}
	require.NoError(t, fakeComments{env.store}.Add(t.Context(), &comment))
	path := "/comment/update/" + comment.ID.String()

	rec := env.do(t, http.MethodPut, path, map[string]string{"commentText": "after"}, writerToken)
	requireStatus(t, rec, http.StatusForbidden)

	rec = env.do(t, http.MethodPut, path, map[string]string{"commentText": "after"}, token)
	requireStatus(t, rec, http.StatusOK)
	assert.Equal(t, "after", decodeBody(t, rec)["comment"].(map[string]interface{})["commentText"])
}

func TestDeleteCommentPermissions(t *testing.T) {
	env := newTestEnv(t)
	writer, writerToken := env.addUser(t, "writer", models.RoleAuthor)
	commenter, commenterToken := env.addUser(t, "commenter", models.RoleUser)
	_, strangerToken := env.addUser(t, "stranger", models.RoleUser)
	_, adminToken := env.addUser(t, "boss", models.RoleAdmin)
	blog := env.addBlog(t, writer, "Post", models.BlogPublished)

	newComment := func() string {
		c := models.Comment{BlogID: blog.ID, UserID: commenter.ID, CommentText: "hello"}
		require.NoError(t, fakeComments{env.store}.Add(t.Context(), &c))
		return "/comment/delete/" + c.ID.String()
	}

	tests := []struct {
		name    string
		token   string
		want    int
		message string
	}{
		{"stranger", strangerToken, http.StatusForbidden, ""},
		{"admin", adminToken, http.StatusOK, "Comment deleted successfully by Admin"},
		{"blog author", writerToken, http.StatusOK, "Comment deleted successfully by Blog Author"},
		{"comment owner", commenterToken, http.StatusOK, "Comment deleted successfully by Comment Owner"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodDelete, newComment(), nil, tt.token)
			requireStatus(t, rec, tt.want)
			if tt.message != "" {
				assert.Equal(t, tt.message, decodeBody(t, rec)["message"])
			}
		})
	}

	rec := env.do(t, http.MethodDelete, "/comment/delete/"+uuid.NewString(), nil, adminToken)
	requireStatus(t, rec, http.StatusNotFound)
}
