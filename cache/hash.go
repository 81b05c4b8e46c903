package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// argSeparator joins positional arguments in the canonical key string. An
// unusual rune keeps ("ab", "c") and ("a", "bc") from colliding for typical
// string arguments.
const argSeparator = "§"

// Kwargs carries keyword-style arguments. When the last argument of a
// wrapped call is a Kwargs value it is split off and hashed as the keyword
// mapping rather than as a positional argument.
type Kwargs map[string]any

// HashFunc derives a cache key from the positional and keyword arguments of
// a call. Implementations must be deterministic: equal argument values must
// produce equal keys across processes.
type HashFunc func(args []any, kwargs Kwargs) (string, error)

// canonicalString renders the arguments of a call into the string that hash
// functions digest. Map rendering via fmt is key-sorted, so the keyword part
// is deterministic.
func canonicalString(args []any, kwargs Kwargs) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = fmt.Sprint(arg)
	}
	return strings.Join(parts, argSeparator) + fmt.Sprint(map[string]any(kwargs))
}

// SHA1Hash is the default HashFunc. It digests the canonical argument string
// with SHA-1 and renders the result as lowercase hex.
func SHA1Hash(args []any, kwargs Kwargs) (string, error) {
	sum := sha1.Sum([]byte(canonicalString(args, kwargs)))
	return hex.EncodeToString(sum[:]), nil
}

// XXHash digests the canonical argument string with xxhash. Much faster than
// SHA1Hash and fine for memoization, where keys only need to distinguish
// argument values, not resist collision attacks.
func XXHash(args []any, kwargs Kwargs) (string, error) {
	return fmt.Sprintf("%016x", xxhash.Sum64String(canonicalString(args, kwargs))), nil
}

func splitKwargs(args []any) ([]any, Kwargs) {
	if n := len(args); n > 0 {
		if kw, ok := args[n-1].(Kwargs); ok {
			return args[:n-1], kw
		}
	}
	return args, nil
}
