package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMem(t *testing.T) (*LocalStorage, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	s, err := NewStorageOnFs(fs, "/uploads", "/uploads/")
	require.NoError(t, err)
	return s, fs
}

func TestSaveYDelete(t *testing.T) {
	s, fs := newMem(t)
	ctx := context.Background()

	url, err := s.Save(ctx, "p1-20260504.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/p1-20260504.png", url)

	raw, err := afero.ReadFile(fs, "/uploads/p1-20260504.png")
	require.NoError(t, err)
	assert.Equal(t, "png", string(raw))

	require.NoError(t, s.Delete(ctx, url))
	ok, err := afero.Exists(fs, "/uploads/p1-20260504.png")
	require.NoError(t, err)
	assert.False(t, ok)

	// borrar dos veces no falla
	assert.NoError(t, s.Delete(ctx, url))
}

func TestSave_RechazaRutas(t *testing.T) {
	s, _ := newMem(t)
	for _, name := range []string{"", "../x.png", "a/b.png", ".."} {
		_, err := s.Save(context.Background(), name, strings.NewReader("x"))
		assert.Error(t, err, name)
	}
}

func TestDelete_URLExternaSeIgnora(t *testing.T) {
	s, _ := newMem(t)
	assert.NoError(t, s.Delete(context.Background(), "https://cdn.example.com/a.png"))
}
