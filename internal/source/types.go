package source

import "strconv"

type (
	// FileID indexes a file within one FileSet in load order.
	FileID uint32
	// FileFlags records how the loaded bytes differ from the bytes on disk.
	FileFlags uint8
)

const (
	// FileVirtual marks content added from memory (tests, stdin, fuzzing).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	FileNormalizedNFC
)

// Has reports whether every bit of flag is set.
func (f FileFlags) Has(flag FileFlags) bool {
	return f&flag == flag
}

// File is one SafeC translation unit after normalization. Spans index
// into Content; Hash is taken over Content and keys the output cache.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position as shown to users.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string {
	return strconv.FormatUint(uint64(lc.Line), 10) + ":" + strconv.FormatUint(uint64(lc.Col), 10)
}
