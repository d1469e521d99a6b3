package assets

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/travaso/pipeline/mesh"
)

// Manifest is the toml hand-off document from the container-parsing
// collaborator: where the raw buffers live, how to view them as typed
// accessors, and which conversions to run over them.
type Manifest struct {
	Buffers     []BufferSource `toml:"buffers"`
	Accessors   []Accessor     `toml:"accessors"`
	Conversions []Conversion   `toml:"conversions"`
}

// BufferSource names one raw byte buffer, backed by either an inline data
// URI or a local file.
type BufferSource struct {
	Name string `toml:"name"`
	URI  string `toml:"uri,omitempty"`
	Path string `toml:"path,omitempty"`
}

// Accessor mirrors the wire format's accessor metadata bit-exactly: the
// component type code, shape name, element count, stride and offset that
// describe a typed view over one buffer.
type Accessor struct {
	Name          string `toml:"name"`
	Buffer        string `toml:"buffer"`
	ComponentType uint16 `toml:"component_type"`
	Shape         string `toml:"shape"`
	Count         int    `toml:"count"`
	Stride        int    `toml:"stride,omitempty"`
	Offset        int    `toml:"offset,omitempty"`
}

// Conversion binds an accessor to the element semantics that should be
// applied to it.
type Conversion struct {
	Name           string `toml:"name"`
	Accessor       string `toml:"accessor"`
	Semantics      string `toml:"semantics"`
	Normalize      bool   `toml:"normalize,omitempty"`
	BaseVertex     uint32 `toml:"base_vertex,omitempty"`
	TimeCritical   bool   `toml:"time_critical,omitempty"`
	CollectExtents bool   `toml:"collect_extents,omitempty"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Validate checks referential integrity and that every code and name in the
// manifest parses to a known tag.
func (m *Manifest) Validate() error {
	buffers := make(map[string]bool, len(m.Buffers))
	for _, b := range m.Buffers {
		if b.Name == "" {
			return fmt.Errorf("buffer with empty name")
		}
		if buffers[b.Name] {
			return fmt.Errorf("duplicate buffer %q", b.Name)
		}
		if (b.URI == "") == (b.Path == "") {
			return fmt.Errorf("buffer %q must set exactly one of uri and path", b.Name)
		}
		buffers[b.Name] = true
	}

	accessors := make(map[string]bool, len(m.Accessors))
	for _, a := range m.Accessors {
		if a.Name == "" {
			return fmt.Errorf("accessor with empty name")
		}
		if accessors[a.Name] {
			return fmt.Errorf("duplicate accessor %q", a.Name)
		}
		if !buffers[a.Buffer] {
			return fmt.Errorf("accessor %q references unknown buffer %q", a.Name, a.Buffer)
		}
		if _, err := mesh.ParseComponentType(a.ComponentType); err != nil {
			return fmt.Errorf("accessor %q: %w", a.Name, err)
		}
		if _, err := mesh.ParseAttributeShape(a.Shape); err != nil {
			return fmt.Errorf("accessor %q: %w", a.Name, err)
		}
		if a.Count <= 0 {
			return fmt.Errorf("accessor %q has non-positive count %d", a.Name, a.Count)
		}
		accessors[a.Name] = true
	}

	for _, c := range m.Conversions {
		if c.Name == "" {
			return fmt.Errorf("conversion with empty name")
		}
		if !accessors[c.Accessor] {
			return fmt.Errorf("conversion %q references unknown accessor %q", c.Name, c.Accessor)
		}
		if _, err := mesh.ParseElementSemantics(c.Semantics); err != nil {
			return fmt.Errorf("conversion %q: %w", c.Name, err)
		}
	}

	return nil
}

func (m *Manifest) accessor(name string) (Accessor, bool) {
	for _, a := range m.Accessors {
		if a.Name == name {
			return a, true
		}
	}
	return Accessor{}, false
}
