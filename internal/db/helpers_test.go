package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planora/planora/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "planora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), CreateUserRequest{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	return user
}

func ptr[T any](v T) *T {
	return &v
}
