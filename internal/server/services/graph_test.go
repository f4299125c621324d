package services

import (
	"context"
	"testing"

	"github.com/StormRens/Fake-Twitter/internal/common"
	"github.com/StormRens/Fake-Twitter/internal/server/auth"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(list []models.UserSummary) []string {
	out := make([]string, 0, len(list))
	for _, u := range list {
		out = append(out, u.UserName)
	}
	return out
}

func TestFollow_UpdatesBothSides(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.verifiedUser(t, "alice")
	f.verifiedUser(t, "bob")

	require.NoError(t, f.graph.Follow(ctx, alice, "bob"))
	require.NoError(t, f.graph.Follow(ctx, alice, "bob"), "following twice is idempotent")

	followers, err := f.graph.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names(followers))

	following, err := f.graph.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names(following))

	require.NoError(t, f.graph.Unfollow(ctx, alice, "bob"))
	require.NoError(t, f.graph.Unfollow(ctx, alice, "bob"), "unfollowing twice is idempotent")

	followers, err = f.graph.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)
	following, err = f.graph.Following(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollow_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.verifiedUser(t, "alice")

	assert.ErrorIs(t, f.graph.Follow(ctx, alice, "alice"), common.ErrorSelfFollow)
	assert.ErrorIs(t, f.graph.Follow(ctx, alice, "ghost"), common.ErrorUserNotFound)
	assert.ErrorIs(t, f.graph.Follow(ctx, alice, "ghost"), common.ErrorNotFound)
	assert.ErrorIs(t, f.graph.Unfollow(ctx, alice, "ghost"), common.ErrorUserNotFound)

	stale := auth.Identity{ID: "00000000-0000-0000-0000-000000000000", Username: "gone"}
	assert.ErrorIs(t, f.graph.Follow(ctx, stale, "alice"), common.ErrorUnauthorized)

	_, err := f.graph.Followers(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorUserNotFound)
	_, err = f.graph.Following(ctx, "ghost")
	assert.ErrorIs(t, err, common.ErrorUserNotFound)
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.verifiedUser(t, "alice")
	bob := f.verifiedUser(t, "bob")

	require.NoError(t, f.graph.Follow(ctx, alice, "bob"))
	_, err := f.posts.Create(ctx, bob, "hello", "first")
	require.NoError(t, err)

	p, err := f.graph.Profile(ctx, &alice, "bob")
	require.NoError(t, err)
	assert.Equal(t, "bob", p.UserName)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Equal(t, 0, p.FollowingCount)
	require.Len(t, p.Posts, 1)
	assert.Equal(t, "hello", p.Posts[0].Title)
	assert.True(t, p.IsFollowing)

	anon, err := f.graph.Profile(ctx, nil, "bob")
	require.NoError(t, err)
	assert.False(t, anon.IsFollowing)

	self, err := f.graph.Profile(ctx, &alice, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, self.FollowingCount)
	assert.NotNil(t, self.Posts)
	assert.Empty(t, self.Posts)

	_, err = f.graph.Profile(ctx, nil, "ghost")
	assert.ErrorIs(t, err, common.ErrorUserNotFound)
}

func TestDeleteAccount_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.verifiedUser(t, "alice")
	bob := f.verifiedUser(t, "bob")

	require.NoError(t, f.graph.Follow(ctx, alice, "bob"))
	require.NoError(t, f.graph.Follow(ctx, bob, "alice"))
	_, err := f.posts.Create(ctx, alice, "mine", "")
	require.NoError(t, err)
	_, err = f.posts.Create(ctx, bob, "his", "")
	require.NoError(t, err)

	assert.ErrorIs(t, f.graph.DeleteAccount(ctx, bob, "alice"), common.ErrorForbidden)
	assert.ErrorIs(t, f.graph.DeleteAccount(ctx, alice, "ghost"), common.ErrorUserNotFound)

	require.NoError(t, f.graph.DeleteAccount(ctx, alice, "alice"))

	users, err := f.graph.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, names(users))

	followers, err := f.graph.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, followers)
	following, err := f.graph.Following(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, following)

	all, err := f.posts.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "his", all[0].Title)

	_, err = f.accounts.Login(ctx, "alice", "pw-alice")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
}

func TestListUsers_SortedAndEmpty(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	users, err := f.graph.ListUsers(ctx)
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)

	f.verifiedUser(t, "carol")
	f.verifiedUser(t, "alice")

	users, err = f.graph.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, names(users))
}
