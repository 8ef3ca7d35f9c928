// Package transform is the document-level entry point: it resolves the
// configured image assets and substitutes their tokens into one document.
package transform

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/image-data/internal/assets"
	"github.com/ironsheep/image-data/internal/cache"
	"github.com/ironsheep/image-data/internal/config"
	"github.com/ironsheep/image-data/internal/imaging"
	"github.com/ironsheep/image-data/internal/resolver"
	"github.com/ironsheep/image-data/internal/tokens"
)

// PluginName annotates every DocumentError.
const PluginName = "image-data"

// DocumentError is the single error a host sees when a rewrite fails.
type DocumentError struct {
	Plugin  string
	Message string
	Err     error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Plugin, e.Message)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

func documentError(err error) error {
	return &DocumentError{Plugin: PluginName, Message: err.Error(), Err: err}
}

// Transformer rewrites documents against the images matched by the configured
// asset pattern.
type Transformer struct {
	cfg        config.Config
	store      cache.Store
	enumerator assets.Enumerator
	classifier assets.Classifier
	decoder    imaging.Decoder
	resolver   *resolver.Resolver
	engine     *tokens.Engine
	logger     *log.Logger
}

// Option overrides a collaborator of a Transformer.
type Option func(*Transformer)

// WithStore uses s instead of opening the configured cache.
func WithStore(s cache.Store) Option {
	return func(t *Transformer) { t.store = s }
}

// WithEnumerator replaces the glob enumerator.
func WithEnumerator(e assets.Enumerator) Option {
	return func(t *Transformer) { t.enumerator = e }
}

// WithClassifier replaces the configured classifier.
func WithClassifier(c assets.Classifier) Option {
	return func(t *Transformer) { t.classifier = c }
}

// WithDecoder replaces the file decoder.
func WithDecoder(d imaging.Decoder) Option {
	return func(t *Transformer) { t.decoder = d }
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *log.Logger) Option {
	return func(t *Transformer) { t.logger = l }
}

// New builds a Transformer from cfg. The caller must Close it.
func New(cfg config.Config, opts ...Option) (*Transformer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	t := &Transformer{cfg: cfg}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = log.Default()
	}
	if t.enumerator == nil {
		t.enumerator = assets.GlobEnumerator{}
	}
	if t.classifier == nil {
		if cfg.Sniff {
			t.classifier = assets.SniffClassifier{}
		} else {
			t.classifier = assets.ExtensionClassifier{}
		}
	}
	if t.decoder == nil {
		t.decoder = imaging.FileDecoder{}
	}
	if t.store == nil {
		store, err := cache.Open(cfg.CacheBackend, cfg.CachePath, t.logger)
		if err != nil {
			return nil, err
		}
		t.store = store
	}

	resampler, err := imaging.ResamplerByName(cfg.Resampler)
	if err != nil {
		t.store.Close()
		return nil, err
	}

	t.resolver = resolver.New(t.store, t.decoder, imaging.NewAnalyzer(resampler),
		resolver.WithJobs(cfg.Jobs),
		resolver.WithLogger(t.logger),
	)
	t.engine = tokens.NewEngine(tokens.Table(), t.logger)

	return t, nil
}

// Config returns the configuration t was built with.
func (t *Transformer) Config() config.Config {
	return t.cfg
}

// Resolver returns the underlying resolver.
func (t *Transformer) Resolver() *resolver.Resolver {
	return t.resolver
}

// Resolve finds every image under the asset pattern and resolves it.
func (t *Transformer) Resolve(ctx context.Context) (map[string]imaging.Metadata, error) {
	paths, err := assets.Find(t.enumerator, t.classifier, t.cfg.AssetPaths)
	if err != nil {
		return nil, documentError(err)
	}
	t.logger.Debug("resolving image assets", "pattern", t.cfg.AssetPaths, "count", len(paths))

	data, err := t.resolver.Resolve(ctx, paths)
	if err != nil {
		return nil, documentError(err)
	}
	return data, nil
}

// Transform rewrites text. Either the whole document is rewritten or a
// *DocumentError is returned; there is no partial output.
func (t *Transformer) Transform(ctx context.Context, text string) (*tokens.Result, error) {
	data, err := t.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	res, err := t.engine.Substitute(text, data)
	if err != nil {
		return nil, documentError(err)
	}
	return res, nil
}

// Close releases the cache.
func (t *Transformer) Close() error {
	return t.store.Close()
}
