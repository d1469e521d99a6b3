package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spaghettifunk/travaso/pipeline/core"
	"github.com/spaghettifunk/travaso/pipeline/datauri"
)

// Caps how many buffer sources resolve concurrently per session.
const resolveConcurrency = 4

// Source is one resolved raw buffer plus its content identity.
type Source struct {
	Name string
	Path string
	Data []byte
	// Hash is the xxhash64 of Data; unchanged hashes skip re-resolve and
	// let callers skip re-transcoding untouched buffers.
	Hash     uint64
	MimeType string
	// Image is set when the source is an embedded image the probe
	// recognized.
	Image *ImageInfo
}

// Invalidation announces that a watched file-backed source changed on disk.
type Invalidation struct {
	Name string
	Path string
}

// Manager resolves manifest buffer sources, caches them by content hash and
// watches file-backed ones for changes.
type Manager struct {
	resolver *datauri.Resolver

	mutex   sync.RWMutex
	sources map[string]*Source
	watched map[string]string // path -> buffer name

	done          chan struct{}
	fsnotify      *fsnotify.Watcher
	isClosed      bool
	invalidations chan Invalidation
}

func NewManager(resolver *datauri.Resolver) (*Manager, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		resolver:      resolver,
		sources:       make(map[string]*Source),
		watched:       make(map[string]string),
		fsnotify:      fsWatch,
		done:          make(chan struct{}),
		invalidations: make(chan Invalidation, 16),
	}

	go m.start()

	return m, nil
}

// Resolve loads every buffer the manifest names, concurrently up to
// resolveConcurrency, and returns the sources keyed by buffer name. Buffers
// whose content hash matches the cache are reused without re-reading.
func (m *Manager) Resolve(ctx context.Context, manifest *Manifest) (map[string]*Source, error) {
	if m.closed() {
		return nil, errors.New("asset manager already closed")
	}

	session := uuid.New()
	core.LogDebug("resolve session %s: %d buffer(s)", session, len(manifest.Buffers))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)

	for _, b := range manifest.Buffers {
		b := b
		g.Go(func() error {
			src, err := m.resolveOne(ctx, b)
			if err != nil {
				return fmt.Errorf("buffer %q: %w", b.Name, err)
			}

			m.mutex.Lock()
			m.sources[b.Name] = src
			if src.Path != "" {
				m.watched[src.Path] = b.Name
			}
			m.mutex.Unlock()

			core.LogDebug("resolve session %s: %q -> %d bytes (hash %016x)", session, b.Name, len(src.Data), src.Hash)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Source, len(manifest.Buffers))
	m.mutex.RLock()
	for _, b := range manifest.Buffers {
		out[b.Name] = m.sources[b.Name]
	}
	m.mutex.RUnlock()

	return out, nil
}

func (m *Manager) resolveOne(ctx context.Context, b BufferSource) (*Source, error) {
	if b.URI != "" {
		desc, ok := datauri.TryDescriptor(b.URI)
		if !ok {
			return nil, datauri.ErrMalformedURI
		}
		data, err := m.resolver.DecodeDescribed(ctx, b.URI, desc)
		if err != nil {
			return nil, err
		}

		src := &Source{
			Name:     b.Name,
			Data:     data,
			Hash:     xxhash.Sum64(data),
			MimeType: desc.MimeType,
		}
		if cached := m.cached(b.Name, src.Hash); cached != nil {
			return cached, nil
		}
		if strings.HasPrefix(desc.MimeType, "image/") {
			src.Image, _ = ProbeImage(data)
		}

		return src, nil
	}

	data, err := os.ReadFile(b.Path)
	if err != nil {
		return nil, err
	}

	src := &Source{
		Name: b.Name,
		Path: b.Path,
		Data: data,
		Hash: xxhash.Sum64(data),
	}
	if cached := m.cached(b.Name, src.Hash); cached != nil {
		return cached, nil
	}

	if err := m.fsnotify.Add(b.Path); err != nil {
		core.LogWarn("cannot watch %s: %s", b.Path, err.Error())
	}

	return src, nil
}

// cached returns the previously resolved source when its content hash is
// unchanged.
func (m *Manager) cached(name string, hash uint64) *Source {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if s, ok := m.sources[name]; ok && s.Hash == hash {
		return s
	}
	return nil
}

// Invalidations delivers change events for watched file-backed sources. The
// channel closes when the manager does.
func (m *Manager) Invalidations() <-chan Invalidation {
	return m.invalidations
}

func (m *Manager) start() {
	for {
		select {

		case e := <-m.fsnotify.Events:
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				m.handleFileEvent(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				m.dropSource(e.Name)
				m.fsnotify.Remove(e.Name)
			}

		case e := <-m.fsnotify.Errors:
			core.LogError(e.Error())

		case <-m.done:
			m.fsnotify.Close()
			close(m.invalidations)
			return
		}
	}
}

// Drop the stale cached bytes and let interested callers re-resolve.
func (m *Manager) handleFileEvent(path string) {
	m.mutex.Lock()
	name, ok := m.watched[path]
	if ok {
		delete(m.sources, name)
	}
	m.mutex.Unlock()

	if !ok {
		return
	}

	select {
	case m.invalidations <- Invalidation{Name: name, Path: path}:
	default:
		// A slow consumer only misses intermediate events; the cache entry
		// is already gone, so the next Resolve re-reads regardless.
	}
}

func (m *Manager) dropSource(path string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if name, ok := m.watched[path]; ok {
		delete(m.sources, name)
		delete(m.watched, path)
	}
}

func (m *Manager) closed() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.isClosed
}

func (m *Manager) Close() error {
	m.mutex.Lock()
	if m.isClosed {
		m.mutex.Unlock()
		return nil
	}
	m.isClosed = true
	m.mutex.Unlock()

	close(m.done)
	return nil
}
