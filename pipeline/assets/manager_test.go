package assets

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/travaso/pipeline/datauri"
)

// 1x1 transparent png
const pngURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(datauri.NewResolver())
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManager_ResolveDataURI(t *testing.T) {
	m := newTestManager(t)

	manifest := &Manifest{
		Buffers: []BufferSource{
			{Name: "inline", URI: "data:application/octet-stream;base64,aGVsbG8="},
		},
	}

	sources, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)

	src := sources["inline"]
	require.NotNil(t, src)
	require.Equal(t, []byte("hello"), src.Data)
	require.Equal(t, "application/octet-stream", src.MimeType)
	require.NotZero(t, src.Hash)
	require.Nil(t, src.Image)
}

func TestManager_ResolveFile(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "buffer.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))

	manifest := &Manifest{
		Buffers: []BufferSource{{Name: "disk", Path: path}},
	}

	sources, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, sources["disk"].Data)
	require.Equal(t, path, sources["disk"].Path)
}

func TestManager_ResolveReusesUnchangedSources(t *testing.T) {
	m := newTestManager(t)

	manifest := &Manifest{
		Buffers: []BufferSource{
			{Name: "inline", URI: "data:application/octet-stream;base64,aGVsbG8="},
		},
	}

	first, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)
	second, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)

	// Unchanged content hash reuses the cached source outright.
	require.Same(t, first["inline"], second["inline"])
}

func TestManager_ResolveProbesEmbeddedImages(t *testing.T) {
	m := newTestManager(t)

	manifest := &Manifest{
		Buffers: []BufferSource{{Name: "tex", URI: pngURI}},
	}

	sources, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)

	img := sources["tex"].Image
	require.NotNil(t, img)
	require.Equal(t, "png", img.Format)
	require.Equal(t, 1, img.Width)
	require.Equal(t, 1, img.Height)
}

func TestManager_ResolveFailsOnMalformedURI(t *testing.T) {
	m := newTestManager(t)

	manifest := &Manifest{
		Buffers: []BufferSource{{Name: "bad", URI: "data:application/octet-stream;base64,@@@@"}},
	}

	_, err := m.Resolve(context.Background(), manifest)
	require.ErrorIs(t, err, datauri.ErrMalformedURI)
}

func TestManager_FileChangeInvalidates(t *testing.T) {
	m := newTestManager(t)

	path := filepath.Join(t.TempDir(), "buffer.bin")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0o644))

	manifest := &Manifest{
		Buffers: []BufferSource{{Name: "disk", Path: path}},
	}

	first, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("after!"), 0o644))

	select {
	case inv := <-m.Invalidations():
		require.Equal(t, "disk", inv.Name)
		require.Equal(t, path, inv.Path)
	case <-time.After(3 * time.Second):
		t.Fatal("no invalidation for changed file")
	}

	second, err := m.Resolve(context.Background(), manifest)
	require.NoError(t, err)
	require.Equal(t, []byte("after!"), second["disk"].Data)
	require.NotEqual(t, first["disk"].Hash, second["disk"].Hash)
}

func TestManager_ResolveAfterClose(t *testing.T) {
	m, err := NewManager(datauri.NewResolver())
	require.NoError(t, err)
	require.NoError(t, m.Close())

	_, err = m.Resolve(context.Background(), &Manifest{})
	require.Error(t, err)
}

func TestProbeImage_RejectsGarbage(t *testing.T) {
	_, ok := ProbeImage([]byte("definitely not an image"))
	require.False(t, ok)
}
