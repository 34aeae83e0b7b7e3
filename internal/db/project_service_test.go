package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/models"
)

func TestProjectLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")

	project, err := store.CreateProject(ctx, user.ID, CreateProjectRequest{Name: " Garden ", Description: "veg"})
	require.NoError(t, err)
	assert.Equal(t, "Garden", project.Name)
	assert.Equal(t, models.ProjectActive, project.Status)

	t1, err := store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "dig", ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "plant", ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = store.MarkTaskDone(ctx, user.ID, t1.ID)
	require.NoError(t, err)

	detail, err := store.GetProject(ctx, user.ID, project.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, detail.TaskCount)
	assert.EqualValues(t, 1, detail.CompletedTasks)
	assert.InDelta(t, 50.0, detail.Progress, 0.001)

	archived, err := store.SetProjectStatus(ctx, user.ID, project.ID, models.ProjectArchived)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectArchived, archived.Status)

	_, err = store.SetProjectStatus(ctx, user.ID, project.ID, models.ProjectArchived)
	assert.ErrorIs(t, err, ErrConflict)

	active, err := store.ListProjects(ctx, user.ID, models.ProjectActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := store.ListProjects(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	completed, err := store.UpdateProject(ctx, user.ID, project.ID, UpdateProjectRequest{
		Name:   ptr("Allotment"),
		Status: ptr(models.ProjectCompleted),
	})
	require.NoError(t, err)
	assert.Equal(t, "Allotment", completed.Name)
	assert.NotNil(t, completed.CompletedAt)

	_, err = store.UpdateProject(ctx, user.ID, project.ID, UpdateProjectRequest{Status: ptr("paused")})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteProjectKeepsTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := newTestUser(t, store, "alice")

	project, err := store.CreateProject(ctx, user.ID, CreateProjectRequest{Name: "Temp"})
	require.NoError(t, err)
	task, err := store.CreateTask(ctx, user.ID, CreateTaskRequest{Title: "survivor", ProjectID: &project.ID})
	require.NoError(t, err)
	note, err := store.CreateNote(ctx, user.ID, NoteRequest{Content: ptr("remember"), ProjectID: &project.ID})
	require.NoError(t, err)

	require.NoError(t, store.DeleteProject(ctx, user.ID, project.ID))

	_, err = store.GetProject(ctx, user.ID, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := store.GetTask(ctx, user.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Projects)

	keptNote, err := store.GetNote(ctx, user.ID, note.ID)
	require.NoError(t, err)
	assert.Nil(t, keptNote.ProjectID)
}

func TestProjectsAreOwnerScoped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	project, err := store.CreateProject(ctx, alice.ID, CreateProjectRequest{Name: "Mine"})
	require.NoError(t, err)

	_, err = store.GetProject(ctx, bob.ID, project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteProject(ctx, bob.ID, project.ID), ErrNotFound)

	_, err = store.CreateProject(ctx, alice.ID, CreateProjectRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalid)
}
