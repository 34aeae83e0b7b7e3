package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := newTestUser(t, store, "alice")
	assert.NotZero(t, user.ID)
	assert.NotEmpty(t, user.PublicID)
	assert.Equal(t, "UTC", user.Timezone)
	assert.True(t, user.IsActive)

	_, err := store.CreateUser(ctx, CreateUserRequest{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.CreateUser(ctx, CreateUserRequest{Username: "bob", Email: "ALICE@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrConflict, "emails compare case-insensitively")

	_, err = store.CreateUser(ctx, CreateUserRequest{Username: "", Email: "c@example.com", PasswordHash: "x"})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")

	got, err := store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = store.GetUserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.GetUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")

	updated, err := store.UpdateProfile(ctx, user.ID, UpdateProfileRequest{
		FirstName:            ptr("Alice"),
		LastName:             ptr("Liddell"),
		Timezone:             ptr("Europe/London"),
		Theme:                ptr("dark"),
		NotificationsEnabled: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", updated.FullName())
	assert.Equal(t, "Europe/London", updated.Timezone)
	assert.Equal(t, "dark", updated.Theme)
	assert.False(t, updated.NotificationsEnabled)

	_, err = store.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Theme: ptr("neon")})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateProfile(ctx, user.ID, UpdateProfileRequest{Timezone: ptr("Mars/Olympus")})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestTaskStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")
	other := newTestUser(t, store, "bob")

	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)

	_, err := store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "overdue", DueDate: &yesterday})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "done", Status: "completed", DueDate: &yesterday})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "doing", Status: "in-progress"})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, other.ID, CreateTaskRequest{Title: "not mine"})
	require.NoError(t, err)

	stats, err := store.TaskStats(ctx, user.ID, now)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 1, stats.Completed)
	assert.EqualValues(t, 2, stats.Pending)
	assert.EqualValues(t, 1, stats.Overdue)
	assert.InDelta(t, 33.33, stats.CompletionRate, 0.01)
}
