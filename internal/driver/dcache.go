package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when CachedUnit changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache хранит результаты компиляции файлов на диске, по ключу CacheKey.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedUnit is what a successful compilation leaves behind.
type CachedUnit struct {
	Schema  uint16   `msgpack:"schema"`
	Path    string   `msgpack:"path"`
	Asm     string   `msgpack:"asm"`
	IR      string   `msgpack:"ir,omitempty"`
	Removed []string `msgpack:"removed,omitempty"`
}

// OpenDiskCache opens (and creates) the cache under $XDG_CACHE_HOME/app or
// ~/.cache/app.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	// подкаталог "units", чтобы чистка не задевала чужое
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put writes unit atomically. A nil cache drops everything.
func (c *DiskCache) Put(key Digest, unit *CachedUnit) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после Rename файла уже нет
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	unit.Schema = diskCacheSchemaVersion
	if err := msgpack.NewEncoder(f).Encode(unit); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads the unit stored under key. Entries written by another schema
// version count as misses.
func (c *DiskCache) Get(key Digest, out *CachedUnit) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	var unit CachedUnit
	if err := msgpack.NewDecoder(f).Decode(&unit); err != nil {
		return false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	if unit.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	*out = unit
	return true, nil
}

// DropAll removes every entry. The cache stays usable afterwards.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименовываем, чтобы параллельный процесс не увидел полуудалённый каталог
	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}
