package tgclient

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gotd/td/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSessionStorage(t *testing.T) {
	ctx := context.Background()
	s := &FileSessionStorage{FilePath: filepath.Join(t.TempDir(), "sessions", "user_session.json")}

	_, err := s.LoadSession(ctx)
	assert.ErrorIs(t, err, session.ErrNotFound)

	require.NoError(t, s.StoreSession(ctx, []byte(`{"Version":1}`)))
	data, err := s.LoadSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"Version":1}`, string(data))

	fi, err := os.Stat(s.FilePath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
}

func TestFileSessionStorageEmpty(t *testing.T) {
	s := &FileSessionStorage{FilePath: filepath.Join(t.TempDir(), "user_session.json")}
	require.NoError(t, os.WriteFile(s.FilePath, nil, 0o600))

	_, err := s.LoadSession(context.Background())
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestFileSessionStorageInvalidate(t *testing.T) {
	s := &FileSessionStorage{FilePath: filepath.Join(t.TempDir(), "user_session.json")}
	_, err := s.Invalidate()
	assert.Error(t, err)

	require.NoError(t, s.StoreSession(context.Background(), []byte("data")))
	bak, err := s.Invalidate()
	require.NoError(t, err)
	assert.Equal(t, s.FilePath+".bak", bak)
	assert.NoFileExists(t, s.FilePath)
	assert.FileExists(t, bak)
}
