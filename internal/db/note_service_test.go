package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	alice := newTestUser(t, store, "alice")
	bob := newTestUser(t, store, "bob")

	project, err := store.CreateProject(ctx, alice.ID, CreateProjectRequest{Name: "P"})
	require.NoError(t, err)

	_, err = store.CreateNote(ctx, alice.ID, NoteRequest{Title: ptr("Ideas"), Content: ptr("grow tomatoes")})
	require.NoError(t, err)
	attached, err := store.CreateNote(ctx, alice.ID, NoteRequest{Title: ptr("tomato plan"), Content: ptr("**bold**"), ProjectID: &project.ID})
	require.NoError(t, err)

	_, err = store.CreateNote(ctx, alice.ID, NoteRequest{Content: ptr("  ")})
	assert.ErrorIs(t, err, ErrInvalid)

	foreign, err := store.CreateProject(ctx, bob.ID, CreateProjectRequest{Name: "B"})
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, alice.ID, NoteRequest{Content: ptr("x"), ProjectID: &foreign.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	byProject, err := store.ListNotes(ctx, alice.ID, &project.ID)
	require.NoError(t, err)
	require.Len(t, byProject, 1)
	assert.Equal(t, attached.ID, byProject[0].ID)

	found, err := store.SearchNotes(ctx, alice.ID, "tomato")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "tomato plan", found[0].Title, "title matches rank above content matches")

	updated, err := store.UpdateNote(ctx, alice.ID, attached.ID, NoteRequest{Content: ptr("changed")})
	require.NoError(t, err)
	assert.Equal(t, "changed", updated.Content)
	assert.Equal(t, "tomato plan", updated.Title)

	assert.ErrorIs(t, store.DeleteNote(ctx, bob.ID, attached.ID), ErrNotFound)
	require.NoError(t, store.DeleteNote(ctx, alice.ID, attached.ID))
	_, err = store.GetNote(ctx, alice.ID, attached.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
