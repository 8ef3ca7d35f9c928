// Package resolver turns image paths into metadata records, reusing cached
// records while they are fresher than their source files.
package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/image-data/internal/cache"
	"github.com/ironsheep/image-data/internal/imaging"
)

// Resolver resolves batches of image paths against a cache.
//
// A Resolver is safe for concurrent use. Concurrent resolutions of the same
// path may both recompute and both write; the result is identical either way.
type Resolver struct {
	store    cache.Store
	decoder  imaging.Decoder
	analyzer *imaging.Analyzer
	jobs     int
	logger   *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithJobs caps the number of files resolved at once. Zero or less means
// one task per file with no cap.
func WithJobs(n int) Option {
	return func(r *Resolver) { r.jobs = n }
}

// WithLogger sets the logger for cache and decode events.
func WithLogger(l *log.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// New returns a Resolver reading and writing store.
func New(store cache.Store, decoder imaging.Decoder, analyzer *imaging.Analyzer, opts ...Option) *Resolver {
	r := &Resolver{
		store:    store,
		decoder:  decoder,
		analyzer: analyzer,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.decoder == nil {
		r.decoder = imaging.FileDecoder{}
	}
	if r.analyzer == nil {
		r.analyzer = &imaging.Analyzer{}
	}
	if r.logger == nil {
		r.logger = log.Default()
	}
	return r
}

// ID returns the identifier a path is published under in a resolved map:
// forward slashes, no leading "./".
func ID(path string) string {
	return strings.TrimPrefix(filepath.ToSlash(path), "./")
}

// Resolve resolves every path concurrently and returns the records keyed by ID.
//
// The batch is all or nothing: the first failure is returned and no map is
// produced. Tasks already running when a failure occurs are allowed to finish
// and their results are dropped; tasks not yet started are skipped.
func (r *Resolver) Resolve(ctx context.Context, paths []string) (map[string]imaging.Metadata, error) {
	g, gctx := errgroup.WithContext(ctx)
	if r.jobs > 0 {
		g.SetLimit(r.jobs)
	}

	var mu sync.Mutex
	out := make(map[string]imaging.Metadata, len(paths))
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		id := ID(p)
		if seen[id] {
			continue
		}
		seen[id] = true

		p := p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := r.ResolveOne(ctx, p)
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = m
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveOne returns the record for a single path.
//
// A cached record is used only when it was stored strictly after the source's
// modification time and still validates; anything else is recomputed and
// written back. A failed cache write is logged and does not fail the call.
func (r *Resolver) ResolveOne(ctx context.Context, path string) (imaging.Metadata, error) {
	st, err := os.Stat(path)
	if err != nil {
		return imaging.Metadata{}, &imaging.DecodeError{Path: path, Err: err}
	}

	key := cache.Key(path)
	if m, ok := r.cached(ctx, key, path, st.ModTime()); ok {
		return m, nil
	}

	img, err := r.decoder.Decode(path)
	if err != nil {
		var decErr *imaging.DecodeError
		if errors.As(err, &decErr) {
			return imaging.Metadata{}, err
		}
		return imaging.Metadata{}, &imaging.DecodeError{Path: path, Err: err}
	}

	m, err := r.analyzer.Analyze(img)
	if err != nil {
		return imaging.Metadata{}, &imaging.DecodeError{Path: path, Err: err}
	}
	r.logger.Debug("computed image data", "path", path, "width", m.Width2x, "height", m.Height2x, "colour", m.Colour)

	data, err := json.Marshal(m)
	if err != nil {
		return imaging.Metadata{}, fmt.Errorf("failed to encode image data for %s: %w", path, err)
	}
	if err := r.store.Write(ctx, key, data); err != nil {
		r.logger.Warn("failed to cache image data", "path", path, "err", err)
	}

	return m, nil
}

func (r *Resolver) cached(ctx context.Context, key, path string, modTime time.Time) (imaging.Metadata, bool) {
	e, ok, err := r.store.Read(ctx, key)
	if err != nil {
		r.logger.Warn("cache read failed, recomputing", "path", path, "err", err)
		return imaging.Metadata{}, false
	}
	if !ok {
		r.logger.Debug("cache miss", "path", path)
		return imaging.Metadata{}, false
	}
	if !cache.Fresh(e, modTime) {
		r.logger.Debug("cache entry stale", "path", path, "stored", e.StoredAt, "modified", modTime)
		return imaging.Metadata{}, false
	}

	var m imaging.Metadata
	if err := json.Unmarshal(e.Data, &m); err != nil {
		r.logger.Warn("corrupt cache entry, recomputing", "path", path, "err", err)
		return imaging.Metadata{}, false
	}
	if err := m.Validate(); err != nil {
		r.logger.Warn("invalid cache entry, recomputing", "path", path, "err", err)
		return imaging.Metadata{}, false
	}

	r.logger.Debug("cache hit", "path", path)
	return m, true
}
