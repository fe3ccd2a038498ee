package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet records every source load of a single run.
type FileSet struct {
	files []File
	index map[string]FileID // path -> latest id
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// Add stores content under path, splits it into lines and hashes it.
// It always creates a new FileID even if the path was loaded before.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	normalizedPath := NormalizePath(path)

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		flags |= FileNoTrailingNewline
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		Lines:   SplitLines(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk and calls Add. Content is kept byte-exact:
// no BOM stripping and no CRLF normalization, shader bodies pass through
// untouched.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.Add(path, content, 0), nil
}

// Get returns the file for the given ID.
func (fileSet *FileSet) Get(id FileID) *File {
	return &fileSet.files[id]
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fileSet.index[NormalizePath(path)]
	return id, ok
}

// Len returns the number of loads recorded.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Paths returns each distinct loaded path once, in first-load order.
func (fileSet *FileSet) Paths() []string {
	seen := make(map[string]struct{}, len(fileSet.index))
	out := make([]string, 0, len(fileSet.index))
	for i := range fileSet.files {
		p := fileSet.files[i].Path
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Exists reports whether path can be stat'ed. Any stat failure, including
// a non-directory path component or a permission error, counts as missing.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// HashFile returns the SHA-256 of a file on disk.
func HashFile(path string) (Digest, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(content), nil
}
