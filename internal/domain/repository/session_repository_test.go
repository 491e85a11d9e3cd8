package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSessionRepository(t *testing.T, repo SessionRepository) {
	ctx := context.Background()

	v, err := repo.Get(ctx, "s1", "token")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, repo.Set(ctx, "s1", map[string]string{"token": "abc", "userName": "Ana", "darkMode": "true"}))
	require.NoError(t, repo.Set(ctx, "s2", map[string]string{"token": "xyz"}))

	v, err = repo.Get(ctx, "s1", "userName")
	require.NoError(t, err)
	assert.Equal(t, "Ana", v)

	require.NoError(t, repo.Delete(ctx, "s1", "darkMode"))
	all, err := repo.GetAll(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "abc", "userName": "Ana"}, all)

	require.NoError(t, repo.Clear(ctx, "s1"))
	all, err = repo.GetAll(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, all)

	v, err = repo.Get(ctx, "s2", "token")
	require.NoError(t, err)
	assert.Equal(t, "xyz", v, "clearing one session must leave the others alone")
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseSessionRepository(t, NewMemorySessionRepository())
}

func TestFileSessionRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	exerciseSessionRepository(t, NewFileSessionRepository(path))

	reopened := NewFileSessionRepository(path)
	v, err := reopened.Get(context.Background(), "s2", "token")
	require.NoError(t, err)
	assert.Equal(t, "xyz", v)
}
