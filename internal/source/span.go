package source

import "strconv"

// Span is a half-open byte range [Start, End) inside one file.
// Diagnostics, AST nodes and instantiation use sites all point through spans.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.Start == s.End }

func (s Span) Len() uint32 { return s.End - s.Start }

// Contains reports whether other lies within s in the same file.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	if s.File != other.File {
		return s
	}
	s.Start = min(s.Start, other.Start)
	s.End = max(s.End, other.End)
	return s
}

// String formats s as "file:start-end" with byte offsets.
func (s Span) String() string {
	return strconv.FormatUint(uint64(s.File), 10) + ":" +
		strconv.FormatUint(uint64(s.Start), 10) + "-" +
		strconv.FormatUint(uint64(s.End), 10)
}
