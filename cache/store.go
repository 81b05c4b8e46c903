package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// entrySuffix is the filename extension of published entry files. Temp files
// carry an extra suffix and are therefore never picked up as entries.
const entrySuffix = ".cache"

// Store is the on-disk entry store. Entries live at
// <root>/<namespace>/<key>.cache, one file per distinct argument hash.
// A Store holds no state beyond its root path and is safe for concurrent use.
type Store struct {
	root string
}

// NewStore returns a Store rooted at the given directory. An empty root
// selects DefaultRoot. The directory is created lazily on the first write.
func NewStore(root string) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{root: root}
}

// Root returns the base directory of the store.
func (s *Store) Root() string { return s.root }

// EntryPath returns the path at which the entry for namespace/key is stored.
func (s *Store) EntryPath(namespace, key string) string {
	return filepath.Join(s.root, namespace, key+entrySuffix)
}

// Load reads the raw entry for namespace/key. A missing entry is reported as
// found=false with a nil error; an entry that exists but cannot be read
// returns an error.
func (s *Store) Load(ctx context.Context, namespace, key string) (bool, []byte, error) {
	if err := ctx.Err(); err != nil {
		return false, nil, err
	}
	if err := validateNames(namespace, key); err != nil {
		return false, nil, err
	}
	path := s.EntryPath(namespace, key)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, fmt.Errorf("cache: stat entry %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return false, nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false, nil, fmt.Errorf("cache: read entry %s: %w", path, err)
	}
	return true, data, nil
}

// Put publishes the raw entry for namespace/key, creating the namespace
// directory and any missing parents. The entry is written to a temp file in
// the same directory and renamed into place, so a concurrent reader either
// sees the complete entry or none at all.
func (s *Store) Put(ctx context.Context, namespace, key string, raw []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateNames(namespace, key); err != nil {
		return err
	}
	dir := filepath.Join(s.root, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cache: create namespace dir %s: %w", dir, err)
	}
	path := s.EntryPath(namespace, key)
	tmp := path + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: write entry %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cache: publish entry %s: %w", path, err)
	}
	return nil
}

// Remove deletes the entry for namespace/key. It reports whether an entry
// existed.
func (s *Store) Remove(ctx context.Context, namespace, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateNames(namespace, key); err != nil {
		return false, err
	}
	err := os.Remove(s.EntryPath(namespace, key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: remove entry %s/%s: %w", namespace, key, err)
	}
	return true, nil
}

// RemoveNamespace deletes a namespace directory and every entry in it. It
// reports whether the namespace existed.
func (s *Store) RemoveNamespace(ctx context.Context, namespace string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := validateName("namespace", namespace); err != nil {
		return false, err
	}
	dir := filepath.Join(s.root, namespace)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("cache: remove namespace %s: %w", namespace, err)
	}
	return true, nil
}

// Namespaces lists the namespace directories under the store root. A missing
// root yields an empty list.
func (s *Store) Namespaces(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read root %s: %w", s.root, err)
	}
	var namespaces []string
	for _, d := range dirents {
		if d.IsDir() {
			namespaces = append(namespaces, d.Name())
		}
	}
	return namespaces, nil
}

// Entry describes a published entry file.
type Entry struct {
	Namespace string
	Key       string
	Size      int64
	ModTime   time.Time
}

// Entries lists the published entries in a namespace. A missing namespace
// yields an empty list. Temp files from in-flight writes are excluded.
func (s *Store) Entries(ctx context.Context, namespace string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateName("namespace", namespace); err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, namespace)
	dirents, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read namespace %s: %w", namespace, err)
	}
	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() || !strings.HasSuffix(d.Name(), entrySuffix) {
			continue
		}
		info, err := d.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Namespace: namespace,
			Key:       strings.TrimSuffix(d.Name(), entrySuffix),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
		})
	}
	return entries, nil
}

// Purge removes entries in a namespace whose modification time is older than
// the given age. An age of zero removes every entry. Returns the number of
// entries removed.
func (s *Store) Purge(ctx context.Context, namespace string, olderThan time.Duration) (int, error) {
	entries, err := s.Entries(ctx, namespace)
	if err != nil {
		return 0, err
	}
	cutoff := time.Now().Add(-olderThan)
	var removed int
	for _, entry := range entries {
		if olderThan > 0 && entry.ModTime.After(cutoff) {
			continue
		}
		ok, err := s.Remove(ctx, namespace, entry.Key)
		if err != nil {
			return removed, err
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

func validateNames(namespace, key string) error {
	if err := validateName("namespace", namespace); err != nil {
		return err
	}
	return validateName("key", key)
}

// validateName rejects names that would escape the store root or produce
// surprising paths.
func validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("cache: empty %s", kind)
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("cache: invalid %s %q", kind, name)
	}
	return nil
}
