package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet owns the files of one compilation and resolves spans against them.
type FileSet struct {
	files   []File
	byPath  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{byPath: make(map[string]FileID)}
}

// SetBaseDir sets the directory relative paths are reported against.
func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir falls back to the working directory when unset.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add registers already normalized content under path. Adding the same
// path twice yields two ids; Lookup returns the newer one.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: too many files: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.byPath[path] = id
	return id
}

// AddVirtual adds in-memory content (tests, stdin, fuzzing).
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

var loadSteps = [...]struct {
	flag FileFlags
	fn   func([]byte) ([]byte, bool)
}{
	{FileHadBOM, removeBOM},
	{FileNormalizedCRLF, normalizeCRLF},
	{FileNormalizedNFC, normalizeNFC},
}

// Load reads path from disk and normalizes it before Add: the UTF-8 BOM
// is stripped, CRLF becomes LF and text is NFC-composed.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- caller-provided source path
	if err != nil {
		return 0, err
	}
	var flags FileFlags
	for _, step := range loadSteps {
		var changed bool
		if content, changed = step.fn(content); changed {
			flags |= step.flag
		}
	}
	return fs.Add(path, content, flags), nil
}

func (fs *FileSet) Get(id FileID) *File { return &fs.files[id] }

func (fs *FileSet) Len() int { return len(fs.files) }

// Lookup returns the most recent id added under path.
func (fs *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fs.byPath[normalizePath(path)]
	return id, ok
}

// Resolve converts both ends of span into 1-based line and column.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	idx := fs.files[span.File].LineIdx
	return toLineCol(idx, span.Start), toLineCol(idx, span.End)
}

// Line returns the 1-based line n without its newline; "" when n is out of range.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.LineIdx)+1 {
		return ""
	}
	start, end := 0, len(f.Content)
	if n > 1 {
		start = int(f.LineIdx[n-2]) + 1
	}
	if int(n) <= len(f.LineIdx) {
		end = int(f.LineIdx[n-1])
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders Path for output. mode is one of absolute, relative,
// basename or auto; anything else prints Path unchanged.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		return filepath.ToSlash(abs)
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		rel, err := RelativePath(f.Path, baseDir)
		if err != nil {
			return f.Path
		}
		return rel
	case "basename":
		return BaseName(f.Path)
	case "auto":
		// длинные абсолютные пути сокращаем до имени файла
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return BaseName(f.Path)
		}
	}
	return f.Path
}
