package cache

import (
	"github.com/oscarb/barkcache/logger"
)

// DefaultRoot is the cache directory used when no root is configured,
// relative to the working directory.
const DefaultRoot = ".cache"

// config holds the resolved configuration for a wrapped computation.
type config struct {
	store        *Store
	root         string
	namespace    string
	hash         HashFunc
	codec        Codec
	log          logger.Logger
	singleflight bool
}

// Option configures a wrapped computation.
type Option func(*config)

func defaultConfig() config {
	return config{
		root:  DefaultRoot,
		hash:  SHA1Hash,
		codec: MsgpackCodec{},
		log:   logger.NewConsole(logger.LevelWarn),
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithStore sets the backing Store. Takes precedence over WithRoot.
func WithStore(s *Store) Option {
	return func(c *config) { c.store = s }
}

// WithRoot sets the base directory under which namespaces live.
// Defaults to DefaultRoot.
func WithRoot(root string) Option {
	return func(c *config) { c.root = root }
}

// WithNamespace overrides the subdirectory name for entries produced by the
// wrapped computation. Defaults to the computation's own function name.
func WithNamespace(ns string) Option {
	return func(c *config) { c.namespace = ns }
}

// WithHashFunc sets the function that derives a cache key from call
// arguments. Defaults to SHA1Hash.
func WithHashFunc(h HashFunc) Option {
	return func(c *config) { c.hash = h }
}

// WithCodec sets the serializer for stored values. Defaults to MsgpackCodec.
func WithCodec(codec Codec) Option {
	return func(c *config) { c.codec = codec }
}

// WithLogger sets the logger used to report cache events, including
// non-fatal entry write failures. Defaults to a console logger at warn level.
func WithLogger(log logger.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithSingleflight collapses concurrent cache misses for the same key into a
// single invocation of the wrapped computation within this process. Off by
// default: without it, concurrent misses each compute and the last entry
// write wins.
func WithSingleflight() Option {
	return func(c *config) { c.singleflight = true }
}
