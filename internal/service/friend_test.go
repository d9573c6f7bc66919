package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voco-chat/bridge/internal/apperr"
	"github.com/voco-chat/bridge/internal/contract"
	"github.com/voco-chat/bridge/internal/domain"
	"github.com/voco-chat/bridge/internal/storage"
	"github.com/voco-chat/bridge/internal/storage/memory"
)

func friendDeps(t *testing.T) (Deps, *spyDB) {
	t.Helper()
	spy := &spyDB{Database: memory.NewStore()}
	return Deps{DB: spy, Now: fixedNow}, spy
}

// flakyDB fails the nth SetFriend call.
type flakyDB struct {
	storage.Database
	calls  int
	failOn int
}

func (f *flakyDB) SetFriend(ctx context.Context, fr domain.Friend) error {
	f.calls++
	if f.calls == f.failOn {
		return errors.New("write refused")
	}
	return f.Database.SetFriend(ctx, fr)
}

func TestCreateFriend(t *testing.T) {
	ctx := context.Background()

	t.Run("both edges exist after create", func(t *testing.T) {
		d, _ := friendDeps(t)
		bundle, err := CreateFriend(ctx, d, CreateFriendRequest{
			OperatorID: "a", UserID: "a", TargetID: "b",
		})
		require.NoError(t, err)

		forward, err := d.DB.Friend(ctx, "a", "b")
		require.NoError(t, err)
		reverse, err := d.DB.Friend(ctx, "b", "a")
		require.NoError(t, err)
		assert.Equal(t, fixedNow(), forward.CreatedAt)
		assert.Equal(t, forward.CreatedAt, reverse.CreatedAt)

		require.Len(t, bundle.Primary, 1)
		require.Len(t, bundle.Secondary, 1)
		primary := bundle.Primary[0].Payload.(contract.FriendUpdate)
		secondary := bundle.Secondary[0].Payload.(contract.FriendUpdate)
		assert.Equal(t, domain.UserID("a"), primary.UserID)
		assert.Equal(t, domain.UserID("b"), secondary.UserID)
		assert.Len(t, primary.Friends, 1)
		assert.Len(t, secondary.Friends, 1)
	})

	t.Run("self-friending is denied and storage untouched", func(t *testing.T) {
		d, spy := friendDeps(t)
		_, err := CreateFriend(ctx, d, CreateFriendRequest{
			OperatorID: "a", UserID: "a", TargetID: "a",
		})
		env, ok := apperr.From(err)
		require.True(t, ok)
		assert.Equal(t, apperr.NamePermission, env.Name)
		assert.Equal(t, apperr.TagPermissionDenied, env.Tag)
		assert.Equal(t, apperr.PartCreateFriend, env.Part)
		assert.Zero(t, spy.writes.Load())
	})

	t.Run("duplicate friendship", func(t *testing.T) {
		d, spy := friendDeps(t)
		_, err := CreateFriend(ctx, d, CreateFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
		require.NoError(t, err)
		before := spy.writes.Load()

		_, err = CreateFriend(ctx, d, CreateFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
		env, ok := apperr.From(err)
		require.True(t, ok)
		assert.Equal(t, apperr.TagFriendExists, env.Tag)
		assert.Equal(t, before, spy.writes.Load())
	})

	t.Run("reverse edge failure rolls the forward edge back", func(t *testing.T) {
		flaky := &flakyDB{Database: memory.NewStore(), failOn: 2}
		d := Deps{DB: flaky, Now: fixedNow}
		_, err := CreateFriend(ctx, d, CreateFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
		env, ok := apperr.From(err)
		require.True(t, ok)
		assert.Equal(t, apperr.NameServer, env.Name)
		assert.Equal(t, apperr.TagExceptionError, env.Tag)
		assert.Contains(t, env.Message, "write refused")

		_, err = d.DB.Friend(ctx, "a", "b")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = d.DB.Friend(ctx, "b", "a")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpdateFriend(t *testing.T) {
	ctx := context.Background()
	d, _ := friendDeps(t)
	_, err := CreateFriend(ctx, d, CreateFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
	require.NoError(t, err)

	note := "college"
	bundle, err := UpdateFriend(ctx, d, UpdateFriendRequest{
		OperatorID: "a", UserID: "a", TargetID: "b",
		Patch: domain.FriendPatch{Note: &note},
	})
	require.NoError(t, err)
	require.Len(t, bundle.Primary, 1)

	// Only the operator's own edge changed.
	forward, err := d.DB.Friend(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "college", forward.Note)
	reverse, err := d.DB.Friend(ctx, "b", "a")
	require.NoError(t, err)
	assert.Empty(t, reverse.Note)

	_, err = UpdateFriend(ctx, d, UpdateFriendRequest{
		OperatorID: "a", UserID: "b", TargetID: "a",
		Patch: domain.FriendPatch{Note: &note},
	})
	env, ok := apperr.From(err)
	require.True(t, ok)
	assert.Equal(t, apperr.TagPermissionDenied, env.Tag)
	assert.Equal(t, apperr.PartUpdateFriend, env.Part)
}

func TestDeleteFriend(t *testing.T) {
	ctx := context.Background()
	d, _ := friendDeps(t)
	_, err := CreateFriend(ctx, d, CreateFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
	require.NoError(t, err)

	bundle, err := DeleteFriend(ctx, d, DeleteFriendRequest{OperatorID: "a", UserID: "a", TargetID: "b"})
	require.NoError(t, err)
	require.Len(t, bundle.Primary, 1)
	require.Len(t, bundle.Secondary, 1)

	// Never just one side.
	_, err = d.DB.Friend(ctx, "a", "b")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = d.DB.Friend(ctx, "b", "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
