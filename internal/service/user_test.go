package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/memeverse/internal/repository"
)

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repository.NewMemoryKV(), quietLogger(), func() time.Time { return fixedNow })

	u, err := svc.Login(ctx, "", "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ann", u.Name)
	assert.Equal(t, "user-1714564800000", u.ID)

	same, err := svc.Login(ctx, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, "Bob", same.Name)
	assert.NotEqual(t, u.ID, same.ID, "IDs stay unique within one millisecond")

	_, err = svc.Login(ctx, " ", "")
	assert.Error(t, err)
}

func TestUserService_GetAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(repository.NewMemoryKV(), quietLogger(), nil)

	u, err := svc.Login(ctx, "Ann", "")
	require.NoError(t, err)

	bio, pic := "memes all day", "https://example.com/a.png"
	updated, err := svc.UpdateProfile(ctx, u.ID, ProfileUpdate{Bio: &bio, ProfilePicture: &pic})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Ann", updated.Name)
	assert.Equal(t, bio, updated.Bio)

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pic, got.ProfilePicture)

	missing, err := svc.Get(ctx, "user-0")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = svc.UpdateProfile(ctx, "user-0", ProfileUpdate{Bio: &bio})
	require.NoError(t, err)
	assert.Nil(t, missing)
}
