// Package cache memoizes expensive deterministic computations by persisting
// their results on disk, keyed by a hash of the call arguments.
//
// # Wrapping a computation
//
// [Wrap] takes a function and returns a memoized version of it:
//
//	square := cache.Wrap(func(ctx context.Context, args ...any) (int, error) {
//	    x := args[0].(int)
//	    return x * x, nil
//	})
//
//	v, err := square(ctx, 4) // computes, stores .cache/square/<sha1>.cache
//	v, err = square(ctx, 4)  // loads the stored entry, does not recompute
//
// On each call the arguments are hashed into a key. If an entry file exists
// at <root>/<namespace>/<key>.cache the stored value is deserialized and
// returned without invoking the function. Otherwise the function runs and its
// result is serialized into the entry file before being returned.
//
// Entries are never expired or invalidated by this package. Once written, an
// entry is trusted unconditionally; deleting the file is the only way to
// force recomputation. Staleness is the caller's responsibility.
//
// # Keys
//
// The default hash ([SHA1Hash]) joins the string form of each positional
// argument, appends the string form of the keyword mapping, and digests the
// result with SHA-1. This is string-based equality: arguments must have
// stable, distinguishing string representations. Values whose default string
// form includes a memory address (bare pointers, channels) make keys
// unstable across processes and must not be used as arguments.
//
// Keyword-style arguments are passed as a trailing [Kwargs] value:
//
//	v, err := fetch(ctx, "dataset-a", cache.Kwargs{"limit": 100})
//
// # Serialization
//
// Values are serialized with msgpack by default ([MsgpackCodec]), which
// handles primitives, slices, maps, and structs with exported fields.
// [TextCodec] stores plain strings. Use [WithCodec] to plug in another
// serializer.
//
// # Errors
//
// An entry file that exists but cannot be deserialized is reported as a
// [CorruptEntryError] satisfying errors.Is(err, [ErrCorruptEntry]). It is
// never silently treated as a miss, so corruption cannot masquerade as
// "never computed". A failed entry write after a successful computation is
// logged at warn level and the computed value is still returned.
//
// # Concurrency
//
// The wrapper performs no locking: two concurrent misses for the same key
// both compute, and the last writer wins. Entry files are published with a
// write-then-rename so readers never observe a truncated entry even while a
// writer is racing. Opt into [WithSingleflight] to collapse concurrent
// misses for the same key into a single computation within the process.
package cache
