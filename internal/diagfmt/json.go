package diagfmt

import (
	"encoding/json"
	"io"

	"safec/internal/diag"
	"safec/internal/source"
)

// LocationJSON is a span in output form; line and column are 1-based and
// present only with IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON carries the replaced text as OldText so tools can verify the edit.
type FixEditJSON struct {
	Location LocationJSON `json:"location"`
	NewText  string       `json:"new_text"`
	OldText  string       `json:"old_text,omitempty"`
}

type FixJSON struct {
	Title string        `json:"title"`
	Edits []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the document written by JSON.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

// formatPath renders the path of file id, or "<unknown>" when fs does not know it.
func formatPath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	if fs == nil || int(id) >= fs.Len() {
		return "<unknown>"
	}
	base := ""
	if mode == PathModeRelative {
		base = fs.BaseDir()
	}
	return fs.Get(id).FormatPath(mode.String(), base)
}

// spanText returns the source text covered by span, or "" when it is out of range.
func spanText(fs *source.FileSet, span source.Span) string {
	if fs == nil || int(span.File) >= fs.Len() {
		return ""
	}
	content := fs.Get(span.File).Content
	if span.Start > span.End || int(span.End) > len(content) {
		return ""
	}
	return string(content[span.Start:span.End])
}

// locator turns spans into LocationJSON under fixed output options.
type locator struct {
	fs        *source.FileSet
	mode      PathMode
	positions bool
}

func (l locator) at(span source.Span) LocationJSON {
	loc := LocationJSON{
		File:      formatPath(l.fs, span.File, l.mode),
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if l.positions && l.fs != nil && int(span.File) < l.fs.Len() {
		start, end := l.fs.Resolve(span)
		loc.StartLine, loc.StartCol = start.Line, start.Col
		loc.EndLine, loc.EndCol = end.Line, end.Col
	}
	return loc
}

func (l locator) notes(notes []diag.Note) []NoteJSON {
	if len(notes) == 0 {
		return nil
	}
	out := make([]NoteJSON, len(notes))
	for i, n := range notes {
		out[i] = NoteJSON{Message: n.Msg, Location: l.at(n.Span)}
	}
	return out
}

func (l locator) fixes(fixes []diag.Fix) []FixJSON {
	if len(fixes) == 0 {
		return nil
	}
	out := make([]FixJSON, len(fixes))
	for i, fix := range fixes {
		out[i].Title = fix.Title
		for _, e := range fix.Edits {
			out[i].Edits = append(out[i].Edits, FixEditJSON{
				Location: l.at(e.Span),
				NewText:  e.NewText,
				OldText:  spanText(l.fs, e.Span),
			})
		}
	}
	return out
}

// BuildDiagnosticsOutput собирает JSON-модель без сериализации.
// Notes of ObsTimings entries are always kept: they carry the payload.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	if opts.Max > 0 && opts.Max < len(items) {
		items = items[:opts.Max]
	}
	l := locator{fs: fs, mode: opts.PathMode, positions: opts.IncludePositions}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, len(items)),
		Count:       len(items),
		Dropped:     bag.Dropped(),
	}
	for i, d := range items {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: l.at(d.Primary),
		}
		if opts.IncludeNotes || d.Code == diag.ObsTimings {
			dj.Notes = l.notes(d.Notes)
		}
		if opts.IncludeFixes {
			dj.Fixes = l.fixes(d.Fixes)
		}
		out.Diagnostics[i] = dj
	}
	return out
}

// JSON writes BuildDiagnosticsOutput as indented JSON.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
