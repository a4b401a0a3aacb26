package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocalStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	s, err := NewLocalStore(dir)
	assert.NoError(t, err)
	assert.DirExists(t, dir)

	ctx := context.Background()

	path, err := s.Save(ctx, Upload{Filename: "banner.png", Data: pngHeader})
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, "images/"))
	assert.True(t, strings.HasSuffix(path, ".png"))

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(path)))
	assert.NoError(t, err)
	assert.Equal(t, pngHeader, stored)

	other, err := s.Save(ctx, Upload{Filename: "banner.png", Data: pngHeader})
	assert.NoError(t, err)
	assert.NotEqual(t, path, other)

	err = s.Delete(ctx, path)
	assert.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(dir, filepath.Base(path)))

	// already removed
	err = s.Delete(ctx, path)
	assert.NoError(t, err)

	err = s.Delete(ctx, "images/../../etc/passwd")
	assert.Equal(t, ErrInvalidPath, err)
}

func TestLocalStoreRejectsInvalidUpload(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	assert.NoError(t, err)

	path, err := s.Save(context.Background(), Upload{Filename: "notes.txt", Data: []byte("plain text")})
	assert.Equal(t, ErrUnsupportedImage, err)
	assert.Empty(t, path)

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries)
}
