package assets

import (
	"context"
	"encoding/binary"
	m "math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
	"github.com/spaghettifunk/travaso/pipeline/transcode"
)

func planManifest() *Manifest {
	return &Manifest{
		Buffers: []BufferSource{
			{Name: "mesh0", URI: "data:application/octet-stream;base64,AAAAAAAAgD8AAABAAABAQAAAgEAAAKBA"},
			{Name: "indices", URI: "data:application/octet-stream;base64,AAABAAIAAwAEAAUA"},
		},
		Accessors: []Accessor{
			{Name: "pos", Buffer: "mesh0", ComponentType: 5126, Shape: "VEC3", Count: 2},
			{Name: "idx", Buffer: "indices", ComponentType: 5123, Shape: "SCALAR", Count: 6},
		},
		Conversions: []Conversion{
			{Name: "positions", Accessor: "pos", Semantics: "position"},
			{Name: "triangles", Accessor: "idx", Semantics: "index-triangle", BaseVertex: 10},
		},
	}
}

func resolvedSources(t *testing.T, manifest *Manifest) map[string]*Source {
	t.Helper()
	mgr := newTestManager(t)
	sources, err := mgr.Resolve(context.Background(), manifest)
	require.NoError(t, err)
	return sources
}

func TestBuildJob_PositionEndToEnd(t *testing.T) {
	manifest := planManifest()
	require.NoError(t, manifest.Validate())
	sources := resolvedSources(t, manifest)

	job, err := manifest.BuildJob(manifest.Conversions[0], sources)
	require.NoError(t, err)
	require.Equal(t, mesh.Position, job.Semantics)
	require.Equal(t, mesh.Float32, job.Dst.ComponentType)
	require.Equal(t, 2, job.Dst.Count)

	_, err = transcode.New().Run(context.Background(), job)
	require.NoError(t, err)

	// Source floats 0..5 with X negated per vertex.
	want := []float32{0, 1, 2, -3, 4, 5}
	for i, w := range want {
		got := m.Float32frombits(binary.LittleEndian.Uint32(job.Dst.Data[i*4:]))
		require.Equal(t, w, got, "component %d", i)
	}
}

func TestBuildJob_TriangleEndToEnd(t *testing.T) {
	manifest := planManifest()
	sources := resolvedSources(t, manifest)

	job, err := manifest.BuildJob(manifest.Conversions[1], sources)
	require.NoError(t, err)

	_, err = transcode.New().Run(context.Background(), job)
	require.NoError(t, err)

	got := make([]uint16, 6)
	for i := range got {
		got[i] = binary.LittleEndian.Uint16(job.Dst.Data[i*2:])
	}
	require.Equal(t, []uint16{10, 12, 11, 13, 15, 14}, got)
}

func TestBuildJob_QuadDestinationSizing(t *testing.T) {
	manifest := planManifest()
	manifest.Accessors = append(manifest.Accessors, Accessor{
		Name: "quads", Buffer: "indices", ComponentType: 5123, Shape: "SCALAR", Count: 4,
	})
	conv := Conversion{Name: "quads", Accessor: "quads", Semantics: "index-quad"}
	sources := resolvedSources(t, manifest)

	job, err := manifest.BuildJob(conv, sources)
	require.NoError(t, err)

	// 4 input indices emit 6.
	require.Equal(t, 6, job.Dst.Count)
}

func TestBuildJob_SkinIndexDestination(t *testing.T) {
	manifest := &Manifest{
		Buffers: []BufferSource{
			{Name: "joints", URI: "data:application/octet-stream;base64,AAABAAIAAwAEAAUA"},
		},
		Accessors: []Accessor{
			{Name: "j", Buffer: "joints", ComponentType: 5123, Shape: "VEC4", Count: 1},
		},
	}
	sources := resolvedSources(t, manifest)

	job, err := manifest.BuildJob(Conversion{Name: "j", Accessor: "j", Semantics: "skin-index"}, sources)
	require.NoError(t, err)
	require.Equal(t, mesh.UInt16, job.Dst.ComponentType)
	require.Equal(t, mesh.Vec4, job.Dst.Shape)
}

func TestBuildJob_UnknownAccessor(t *testing.T) {
	manifest := planManifest()
	sources := resolvedSources(t, manifest)

	_, err := manifest.BuildJob(Conversion{Name: "x", Accessor: "ghost", Semantics: "position"}, sources)
	require.Error(t, err)
}

func TestBuildJob_UnresolvedBuffer(t *testing.T) {
	manifest := planManifest()

	_, err := manifest.BuildJob(manifest.Conversions[0], map[string]*Source{})
	require.Error(t, err)
}
