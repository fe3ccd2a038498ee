package source

type (
	// FileID uniquely identifies a loaded source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileNoTrailingNewline marks content whose last line has no terminator.
	FileNoTrailingNewline FileFlags = 1 << iota
)

// File captures one load of a shader source.
// Lines keep their original terminators, so joining them reproduces Content.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	Lines   []string
	Hash    Digest
	Flags   FileFlags
}

// Digest is a SHA-256 of file content.
type Digest [32]byte
