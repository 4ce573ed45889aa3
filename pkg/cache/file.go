package cache

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// entryExt is the suffix of every file the cache writes.
const entryExt = ".entry"

// FileCache stores artifacts under a directory for CLI use.
//
// An entry file is one JSON header line followed by the raw payload, so a
// cached PNG is stored as-is rather than base64 inside JSON. The header
// carries the full key and a checksum; a file whose key, size or checksum
// does not match is treated as a miss and removed.
type FileCache struct {
	dir string
}

// NewFileCache opens dir as a cache, creating it when needed.
func NewFileCache(dir string) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileCache{dir: dir}, nil
}

// entryHeader describes the payload that follows it.
type entryHeader struct {
	Key     string    `json:"key"`
	Kind    string    `json:"kind"`
	Size    int       `json:"size"`
	SHA256  string    `json:"sha256"`
	Created time.Time `json:"created"`
	Expires time.Time `json:"expires,omitzero"`
}

// keyKind returns the key segment naming what is stored: "artifact",
// "profile" or "fetch" for the keys built in this module.
func keyKind(key string) string {
	parts := strings.Split(key, ":")
	if len(parts) < 2 {
		return "other"
	}
	return parts[len(parts)-2]
}

func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	h, data, err := readEntry(f)
	f.Close()
	if err != nil || h.Key != key || len(data) != h.Size || Hash(data) != h.SHA256 ||
		(!h.Expires.IsZero() && time.Now().After(h.Expires)) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return data, true, nil
}

func readEntry(r io.Reader) (entryHeader, []byte, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadBytes('\n')
	if err != nil {
		return entryHeader{}, nil, err
	}
	var h entryHeader
	if err := json.Unmarshal(line, &h); err != nil {
		return entryHeader{}, nil, err
	}
	data, err := io.ReadAll(br)
	return h, data, err
}

func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	h := entryHeader{
		Key:     key,
		Kind:    keyKind(key),
		Size:    len(data),
		SHA256:  Hash(data),
		Created: time.Now(),
	}
	if ttl > 0 {
		h.Expires = h.Created.Add(ttl)
	}
	header, err := json.Marshal(h)
	if err != nil {
		return err
	}

	path := c.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	// Write then rename, so a concurrent Get never sees half an entry.
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, io.MultiReader(bytes.NewReader(header), strings.NewReader("\n"), bytes.NewReader(data))); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (c *FileCache) Close() error { return nil }

// Clear removes every entry and returns how many were removed.
func (c *FileCache) Clear() (int, error) {
	count := 0
	err := filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(path, entryExt) {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return count, err
	}
	entries, _ := os.ReadDir(c.dir)
	for _, e := range entries {
		if e.IsDir() {
			_ = os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return count, nil
}

// Stats returns the number of entries and their total size in bytes.
func (c *FileCache) Stats() (entries int, size int64, err error) {
	err = c.walkEntries(func(path string, info fs.FileInfo) {
		entries++
		size += info.Size()
	})
	return entries, size, err
}

// StatsByKind counts entries per stored kind, read from their headers.
// Unreadable entries are counted as "corrupt".
func (c *FileCache) StatsByKind() (map[string]int, error) {
	kinds := make(map[string]int)
	err := c.walkEntries(func(path string, _ fs.FileInfo) {
		f, err := os.Open(path)
		if err != nil {
			return
		}
		defer f.Close()
		line, err := bufio.NewReader(f).ReadBytes('\n')
		var h entryHeader
		if err != nil || json.Unmarshal(line, &h) != nil {
			kinds["corrupt"]++
			return
		}
		kinds[h.Kind]++
	})
	return kinds, err
}

func (c *FileCache) walkEntries(fn func(path string, info fs.FileInfo)) error {
	return filepath.WalkDir(c.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, entryExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fn(path, info)
		return nil
	})
}

// path shards entries into 256 subdirectories by key hash.
func (c *FileCache) path(key string) string {
	hash := Hash([]byte(key))
	return filepath.Join(c.dir, hash[:2], hash[2:]+entryExt)
}

var _ Cache = (*FileCache)(nil)
