package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"safec/internal/diag"
	"safec/internal/source"
)

type palette struct {
	err    *color.Color
	warn   *color.Color
	info   *color.Color
	path   *color.Color
	gutter *color.Color
	caret  *color.Color
	note   *color.Color
	fix    *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		path:   color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
		fix:    color.New(color.FgGreen),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.path, p.gutter, p.caret, p.note, p.fix} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty печатает диагностики в человекочитаемом виде:
//
//	main.sc:3:12: ERROR MONO4002: generic struct Pair expects 2 type arguments, got 1
//	   3 |     struct Pair<int> p;
//	     |            ^~~~~~~~~
//	  = note: main.sc:1:8: Pair declared here
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	if bag == nil {
		return
	}
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, pal)
	}
	if n := bag.Dropped(); n > 0 {
		fmt.Fprintf(w, "\n... %d more diagnostic(s) not shown (limit %d)\n", n, bag.Cap())
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	sev := pal.severity(d.Severity)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprint(position(fs, d.Primary, opts.PathMode)),
		sev.Sprint(d.Severity.String()),
		sev.Sprint(d.Code.ID()),
		d.Message)

	snippet(w, fs, d.Primary, opts, pal)

	if opts.ShowNotes || d.Code == diag.ObsTimings {
		for _, n := range d.Notes {
			if n.Span == (source.Span{}) && d.Code == diag.ObsTimings {
				fmt.Fprintf(w, "  = %s %s\n", pal.note.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  = %s %s: %s\n", pal.note.Sprint("note:"), position(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if opts.ShowFixes {
		for _, f := range d.Fixes {
			fmt.Fprintf(w, "  = %s %s\n", pal.fix.Sprint("fix:"), f.Title)
			for _, e := range f.Edits {
				fmt.Fprintf(w, "      %s: replace %q with %q\n", position(fs, e.Span, opts.PathMode), spanText(fs, e.Span), e.NewText)
			}
		}
	}
}

// position renders "path:line:col" for the start of span.
func position(fs *source.FileSet, span source.Span, mode PathMode) string {
	path := formatPath(fs, span.File, mode)
	if fs == nil || int(span.File) >= fs.Len() {
		return path
	}
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

// snippet prints the primary line with opts.Context lines around it and a caret under the span.
func snippet(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts, pal palette) {
	if fs == nil || int(span.File) >= fs.Len() {
		return
	}
	f := fs.Get(span.File)
	if len(f.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	lineCount := uint32(len(f.LineIdx)) + 1 //nolint:gosec // line index is bounded by file size
	ctx := uint32(max(opts.Context, 0))    //nolint:gosec // non-negative

	first := uint32(1)
	if start.Line > ctx {
		first = start.Line - ctx
	}
	last := min(start.Line+ctx, lineCount)

	gutterWidth := len(fmt.Sprint(last))
	blank := strings.Repeat(" ", gutterWidth+2)
	for ln := first; ln <= last; ln++ {
		text := f.Line(ln)
		if ln != start.Line && ln == lineCount && text == "" {
			break
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth+2, ln), clip(text, opts.Width))
		if ln != start.Line {
			continue
		}
		pad, caretWidth := caretGeometry(text, start, end)
		if opts.Width > 0 {
			avail := int(opts.Width) - runewidth.StringWidth(pad)
			if avail <= 0 {
				continue
			}
			caretWidth = min(caretWidth, avail)
		}
		marker := "^" + strings.Repeat("~", max(caretWidth-1, 0))
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprint(blank+"|"), pad, pal.caret.Sprint(marker))
	}
}

// caretGeometry returns the whitespace that aligns a caret under column start.Col
// of line and the display width of the underlined text. Tabs are kept so the
// caret lines up in any terminal.
func caretGeometry(line string, start, end source.LineCol) (string, int) {
	col := min(int(start.Col)-1, len(line))
	col = max(col, 0)

	var pad strings.Builder
	for _, r := range line[:col] {
		if r == '\t' {
			pad.WriteByte('\t')
			continue
		}
		pad.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}

	stop := len(line)
	if end.Line == start.Line {
		stop = min(int(end.Col)-1, len(line))
	}
	width := 1
	if stop > col {
		width = max(runewidth.StringWidth(line[col:stop]), 1)
	}
	return pad.String(), width
}

func clip(line string, width uint8) string {
	if width == 0 || runewidth.StringWidth(line) <= int(width) {
		return line
	}
	return runewidth.Truncate(line, int(width), "...")
}
