package cache

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"golang.org/x/sync/singleflight"
)

// Func is the shape of a computation that can be memoized. Arguments must
// have stable, distinguishing string representations (see the package docs).
type Func[T any] func(ctx context.Context, args ...any) (T, error)

// Wrap returns a memoized version of fn. On each call the arguments are
// hashed into a key; if an entry exists for that key the stored value is
// returned and fn is not invoked. Otherwise fn runs and its result is
// persisted before being returned.
//
// Exactly one of {load entry, compute and store} happens per call. If fn
// fails, nothing is written. If persisting the result fails after fn
// succeeded, a warning is logged and the result is still returned.
func Wrap[T any](fn Func[T], opts ...Option) Func[T] {
	cfg := applyOptions(opts)
	if cfg.namespace == "" {
		cfg.namespace = functionName(fn)
	}
	store := cfg.store
	if store == nil {
		store = NewStore(cfg.root)
	}
	var group singleflight.Group

	return func(ctx context.Context, args ...any) (T, error) {
		var zero T
		positional, kwargs := splitKwargs(args)
		key, err := cfg.hash(positional, kwargs)
		if err != nil {
			return zero, fmt.Errorf("cache: hash arguments for %s: %w", cfg.namespace, err)
		}
		if err := validateName("key", key); err != nil {
			return zero, err
		}
		if !cfg.singleflight {
			return loadOrCompute(ctx, cfg, store, key, fn, args)
		}
		v, err, _ := group.Do(key, func() (any, error) {
			return loadOrCompute(ctx, cfg, store, key, fn, args)
		})
		if err != nil {
			return zero, err
		}
		return v.(T), nil
	}
}

func loadOrCompute[T any](ctx context.Context, cfg config, store *Store, key string, fn Func[T], args []any) (T, error) {
	var zero T
	found, raw, err := store.Load(ctx, cfg.namespace, key)
	if err != nil {
		return zero, err
	}
	if found {
		var out T
		if err := cfg.codec.Unmarshal(raw, &out); err != nil {
			return zero, &CorruptEntryError{
				Namespace: cfg.namespace,
				Key:       key,
				Path:      store.EntryPath(cfg.namespace, key),
				Err:       err,
			}
		}
		cfg.log.Debug("cache hit %s/%s", cfg.namespace, key)
		return out, nil
	}

	cfg.log.Debug("cache miss %s/%s", cfg.namespace, key)
	result, err := fn(ctx, args...)
	if err != nil {
		return zero, err
	}

	raw, err = cfg.codec.Marshal(result)
	if err != nil {
		return zero, fmt.Errorf("cache: %s marshal result for %s/%s: %w", cfg.codec.Name(), cfg.namespace, key, err)
	}

	// The computation already succeeded; a failed write must not lose its
	// result, so it is reported instead of returned.
	if err := store.Put(ctx, cfg.namespace, key, raw); err != nil {
		cfg.log.Warn("cache write failed for %s/%s: %s", cfg.namespace, key, err)
	}
	return result, nil
}

// functionName recovers the bare name of fn for use as the default
// namespace, stripping the package path and method/closure suffixes.
func functionName(fn any) string {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "anonymous"
	}
	name := f.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, "-fm")
	if name == "" {
		return "anonymous"
	}
	return name
}
