package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"safec/internal/ast"
	"safec/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed program:
// 1) every top-level declaration span is non-empty, points into sf and stays within its content
// 2) top-level declarations appear in source order
// 3) every nested node with a non-empty span points into sf and stays within its content
func CheckSpanInvariants(prog *ast.Program, sf *source.File) error {
	if prog == nil || sf == nil {
		return fmt.Errorf("nil program or file")
	}
	if prog.File != sf.ID {
		return fmt.Errorf("program file id mismatch: got=%d want=%d", prog.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}

	var prev source.Span
	for i, decl := range prog.Decls {
		if decl == nil {
			return fmt.Errorf("nil declaration at index %d", i)
		}
		sp := decl.Span()
		if sp.End <= sp.Start {
			return fmt.Errorf("empty declaration span: %v", sp)
		}
		if err := checkBounds(sp, sf.ID, lenContent); err != nil {
			return fmt.Errorf("declaration %d: %w", i, err)
		}
		if i > 0 && sp.Start < prev.Start {
			return fmt.Errorf("declaration %d at %v precedes declaration %d at %v", i, sp, i-1, prev)
		}
		prev = sp

		var nested error
		ast.Inspect(decl, func(n ast.Node) bool {
			if nested != nil {
				return false
			}
			inner := n.Span()
			if inner.Empty() {
				return true
			}
			if err := checkBounds(inner, sf.ID, lenContent); err != nil {
				nested = fmt.Errorf("node %T inside declaration %d: %w", n, i, err)
				return false
			}
			return true
		})
		if nested != nil {
			return nested
		}
	}
	return nil
}

func checkBounds(sp source.Span, file source.FileID, limit uint32) error {
	if sp.End < sp.Start {
		return fmt.Errorf("inverted span %v", sp)
	}
	whole := source.Span{File: file, Start: 0, End: limit}
	if !whole.Contains(sp) {
		return fmt.Errorf("span %v outside file %v", sp, whole)
	}
	return nil
}
