package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/models"
)

func TestCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")

	work, err := store.CreateCategory(ctx, user.ID, CategoryRequest{Name: ptr("Work")})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultCategoryColor, work.Color)

	_, err = store.CreateCategory(ctx, user.ID, CategoryRequest{Name: ptr("work")})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = store.CreateCategory(ctx, user.ID, CategoryRequest{Name: ptr("Home"), Color: ptr("red")})
	assert.ErrorIs(t, err, ErrInvalid)

	t1, err := store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "a", CategoryID: &work.ID})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "b", CategoryID: &work.ID, Status: "completed"})
	require.NoError(t, err)

	stats, err := store.ListCategories(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.EqualValues(t, 2, stats[0].TaskCount)
	assert.EqualValues(t, 1, stats[0].CompletedTasks)
	assert.InDelta(t, 50.0, stats[0].CompletionRate, 0.001)

	updated, err := store.UpdateCategory(ctx, user.ID, work.ID, CategoryRequest{Name: ptr("Work"), Color: ptr("#10b981")})
	require.NoError(t, err, "renaming to its own name is not a conflict")
	assert.Equal(t, "#10B981", updated.Color)

	require.NoError(t, store.DeleteCategory(ctx, user.ID, work.ID))
	task, err := store.GetTask(ctx, user.ID, t1.ID)
	require.NoError(t, err)
	assert.Nil(t, task.CategoryID)
}
