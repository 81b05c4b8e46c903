package cache

import (
	"errors"
	"fmt"
)

// ErrCorruptEntry marks an entry file that exists but cannot be
// deserialized. Callers check for it with errors.Is. A corrupt entry is
// never treated as a cache miss: delete the file to force recomputation.
var ErrCorruptEntry = errors.New("cache: corrupt entry")

// CorruptEntryError reports an entry file whose content could not be
// deserialized, typically because it was truncated or written by an
// incompatible codec. It unwraps to both ErrCorruptEntry and the underlying
// decode error.
type CorruptEntryError struct {
	Namespace string
	Key       string
	Path      string
	Err       error
}

func (e *CorruptEntryError) Error() string {
	return fmt.Sprintf("cache: corrupt entry %s/%s at %s: %v", e.Namespace, e.Key, e.Path, e.Err)
}

func (e *CorruptEntryError) Unwrap() []error {
	return []error{ErrCorruptEntry, e.Err}
}
