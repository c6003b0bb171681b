package models

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"
)

func TestEnumValidity(t *testing.T) {
	assert.True(t, BlogDraft.Valid())
	assert.True(t, BlogPublished.Valid())
	assert.False(t, BlogStatus("archived").Valid())

	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("owner").Valid())

	assert.True(t, UserInactive.Valid())
	assert.False(t, UserStatus("").Valid())

	assert.True(t, ReactionDislike.Valid())
	assert.False(t, ReactionKind("love").Valid())
}

func TestBlogReactionSets(t *testing.T) {
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()
	blog := Blog{Reactions: []BlogReaction{
		{UserID: alice, Kind: ReactionLike},
		{UserID: bob, Kind: ReactionDislike},
		{UserID: carol, Kind: ReactionLike},
	}}

	assert.Equal(t, []uuid.UUID{alice, carol}, blog.Likes())
	assert.Equal(t, []uuid.UUID{bob}, blog.Dislikes())
	assert.Equal(t, []uuid.UUID{}, (&Blog{}).Likes())
}

func TestUserPasswordNeverSerialized(t *testing.T) {
	raw, err := json.Marshal(User{Name: "Ada", Password: "hash"})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hash")
	assert.Equal(t, UserSummary{Name: "Ada"}, User{Name: "Ada"}.Summary())
}

func TestOTPExpired(t *testing.T) {
	now := time.Now()
	otp := OTP{ExpiresAt: now}
	assert.False(t, otp.Expired(now))
	assert.True(t, otp.Expired(now.Add(time.Second)))
}

func TestModelColumns(t *testing.T) {
	cols := modelColumns(reflect.TypeOf(Comment{}), schema.NamingStrategy{})
	assert.Equal(t, []string{"id", "blog_id", "user_id", "comment_text", "parent_comment_id", "created_at", "updated_at"}, cols)

	assert.Equal(t, []string{"legacy_views"}, findColumnMismatches(
		[]string{"id", "title", "legacy_views"},
		[]string{"id", "title"},
	))
	assert.Empty(t, findColumnMismatches([]string{"id"}, []string{"id", "title"}))
}
