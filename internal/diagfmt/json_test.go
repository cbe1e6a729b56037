package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"safec/internal/diag"
	"safec/internal/source"
)

func decodeJSON(t *testing.T, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	t.Helper()
	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	return out
}

func TestJSONLocation(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sc", []byte("int main(void) {\n\tchar *s = \"unterminated\n}"))
	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.LexUnterminatedString, source.Span{File: id, Start: 28, End: 41}, "unterminated string literal"))

	tests := []struct {
		name      string
		positions bool
		want      LocationJSON
	}{
		{"bytes only", false, LocationJSON{File: "test.sc", StartByte: 28, EndByte: 41}},
		{"with positions", true, LocationJSON{File: "test.sc", StartByte: 28, EndByte: 41, StartLine: 2, StartCol: 12, EndLine: 2, EndCol: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := decodeJSON(t, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludePositions: tt.positions})
			if out.Count != 1 || len(out.Diagnostics) != 1 {
				t.Fatalf("count = %d, items = %d", out.Count, len(out.Diagnostics))
			}
			d := out.Diagnostics[0]
			if d.Severity != "ERROR" || d.Code != "LEX1002" || d.Message != "unterminated string literal" {
				t.Errorf("unexpected header: %+v", d)
			}
			if d.Location != tt.want {
				t.Errorf("location = %+v, want %+v", d.Location, tt.want)
			}
		})
	}
}

func TestJSONNotesAndFixes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("box.sc", []byte("Box<int, char> b"))
	args := source.Span{File: id, Start: 3, End: 14}
	d := diag.NewError(diag.MonoArityMismatch, args, "Box expects 1 type argument").
		WithNote(source.Span{File: id, Start: 0, End: 3}, "declared here").
		WithFix("drop extra argument", diag.FixEdit{Span: source.Span{File: id, Start: 7, End: 13}, NewText: ""})
	bag := diag.NewBag(4)
	bag.Add(d)

	t.Run("included", func(t *testing.T) {
		out := decodeJSON(t, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludeNotes: true, IncludeFixes: true})
		got := out.Diagnostics[0]
		if len(got.Notes) != 1 || got.Notes[0].Message != "declared here" || got.Notes[0].Location.EndByte != 3 {
			t.Fatalf("notes = %+v", got.Notes)
		}
		if len(got.Fixes) != 1 || len(got.Fixes[0].Edits) != 1 {
			t.Fatalf("fixes = %+v", got.Fixes)
		}
		if e := got.Fixes[0].Edits[0]; e.OldText != ", char" || e.NewText != "" {
			t.Errorf("edit = %+v", e)
		}
	})
	t.Run("omitted by default", func(t *testing.T) {
		out := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
		if got := out.Diagnostics[0]; got.Notes != nil || got.Fixes != nil {
			t.Errorf("notes and fixes must be opt-in: %+v", got)
		}
	})
}

func TestJSONInsertFix(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("example.sc", []byte("int a = 42 // missing semicolon"))
	at := source.Span{File: id, Start: 10, End: 10}
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.SynExpectSemicolon, at, "expected ';'").WithFix("insert ';'", diag.FixEdit{Span: at, NewText: ";"}))

	out := decodeJSON(t, bag, fs, JSONOpts{PathMode: PathModeBasename, IncludePositions: true, IncludeFixes: true})
	if out.Diagnostics[0].Code != "SYN2006" {
		t.Errorf("code = %s", out.Diagnostics[0].Code)
	}
	e := out.Diagnostics[0].Fixes[0].Edits[0]
	if e.NewText != ";" || e.OldText != "" || e.Location.StartCol != 11 {
		t.Errorf("edit = %+v", e)
	}
}

func TestJSONTimingNotesAlwaysKept(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, "timings").WithNote(source.Span{}, `{"kind":"compile"}`))
	out := BuildDiagnosticsOutput(bag, nil, JSONOpts{})
	if n := out.Diagnostics[0].Notes; len(n) != 1 || n[0].Location.File != "<unknown>" {
		t.Fatalf("timing payload lost: %+v", n)
	}
}

func TestJSONLimits(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("example.sc", []byte("test content"))
	bag := diag.NewBag(5)
	for i := range uint32(7) {
		bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: id, Start: i, End: i + 1}, "bad"))
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if out.Count != 3 || len(out.Diagnostics) != 3 {
		t.Errorf("Max must trim output: count=%d items=%d", out.Count, len(out.Diagnostics))
	}
	if out.Dropped != 2 {
		t.Errorf("Dropped = %d, want 2", out.Dropped)
	}
}

func TestJSONPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/home/user/project")
	id := fs.AddVirtual("/home/user/project/src/main.sc", []byte("test"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.LexUnknownChar, source.Span{File: id, Start: 0, End: 1}, "bad"))

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/main.sc"},
		{PathModeRelative, "src/main.sc"},
		{PathModeBasename, "main.sc"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			out := decodeJSON(t, bag, fs, JSONOpts{PathMode: tt.mode})
			if got := out.Diagnostics[0].Location.File; got != tt.want {
				t.Errorf("file = %q, want %q", got, tt.want)
			}
		})
	}
}
