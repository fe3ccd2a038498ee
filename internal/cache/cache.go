// Package cache stores per-output dependency fingerprints so unchanged
// shaders are not rewritten.
package cache

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"shaderpp/internal/project"
	"shaderpp/internal/source"
)

// Current schema version - increment when Record format changes
const schemaVersion uint16 = 1

// Disk хранит записи по ключу юнита на диске.
// Thread-safe for concurrent access.
type Disk struct {
	mu  sync.RWMutex
	dir string
}

// Record describes the last successful write of one unit.
type Record struct {
	Schema     uint16
	Output     string
	OutputHash project.Digest
	DepPaths   []string
	DepHashes  []project.Digest
	WrittenAt  time.Time
}

// Open returns a cache rooted at dir. Nothing is created until the first Put.
func Open(dir string) (*Disk, error) {
	if dir == "" {
		return nil, errors.New("cache dir is empty")
	}
	return &Disk{dir: filepath.Clean(dir)}, nil
}

// Dir returns the cache directory.
func (c *Disk) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Disk) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "units", key.String()+".mp")
}

// Put serializes and writes a record.
func (c *Disk) Put(key project.Digest, rec *Record) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	rec.Schema = schemaVersion
	if err = msgpack.NewEncoder(f).Encode(rec); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a record. A missing entry is (false, nil).
func (c *Disk) Get(key project.Digest, out *Record) (bool, error) {
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

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every record.
func (c *Disk) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// переименуем каталог и удалим
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// Fresh reports whether key's record still describes the disk: the output
// exists with the recorded hash and every dependency hashes the same.
func (c *Disk) Fresh(key project.Digest, output string) (bool, error) {
	var rec Record
	ok, err := c.Get(key, &rec)
	if err != nil || !ok {
		return false, err
	}
	if rec.Output != output || len(rec.DepPaths) != len(rec.DepHashes) {
		return false, nil
	}
	outHash, err := source.HashFile(output)
	if err != nil || outHash != rec.OutputHash {
		return false, nil
	}
	for i, dep := range rec.DepPaths {
		h, err := source.HashFile(dep)
		if err != nil || h != rec.DepHashes[i] {
			return false, nil
		}
	}
	return true, nil
}

// Current reports whether writing content with digest want to output can
// be skipped: the record matches and the file on disk still has that digest.
func (c *Disk) Current(key project.Digest, output string, want project.Digest) (bool, error) {
	var rec Record
	ok, err := c.Get(key, &rec)
	if err != nil || !ok {
		return false, err
	}
	if rec.Output != output || rec.OutputHash != want {
		return false, nil
	}
	onDisk, err := source.HashFile(output)
	if err != nil {
		return false, nil
	}
	return onDisk == want, nil
}

// NewRecord builds a record from the files loaded while resolving a unit.
// The latest load of each path provides its hash.
func NewRecord(output string, outputHash project.Digest, files *source.FileSet) *Record {
	paths := files.Paths()
	hashes := make([]project.Digest, len(paths))
	for i, p := range paths {
		if id, ok := files.GetLatest(p); ok {
			hashes[i] = files.Get(id).Hash
		}
	}
	return &Record{
		Output:     output,
		OutputHash: outputHash,
		DepPaths:   paths,
		DepHashes:  hashes,
		WrittenAt:  time.Now(),
	}
}
