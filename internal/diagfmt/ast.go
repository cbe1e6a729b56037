package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"safec/internal/ast"
	"safec/internal/source"
	"safec/internal/types"
)

// ASTNodeOutput is the JSON form of one tree node.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Label    string          `json:"label,omitempty"`
	Span     source.Span     `json:"span"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type treeNode struct {
	kind     string
	label    string
	span     source.Span
	children []*treeNode
}

func (n *treeNode) add(children ...*treeNode) *treeNode {
	for _, c := range children {
		if c != nil {
			n.children = append(n.children, c)
		}
	}
	return n
}

func leaf(kind, label string) *treeNode {
	return &treeNode{kind: kind, label: label}
}

// FormatASTPretty печатает дерево программы с псевдографикой:
//
//	main.sc (span: 1:1-9:2)
//	├─ Struct Box<T> (span: 1:1-1:25)
//	│  └─ Field T value
//	└─ Func int main() (span: 3:1-9:2)
func FormatASTPretty(w io.Writer, prog *ast.Program, fs *source.FileSet) error {
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	root := buildProgramNode(prog, fs)
	if _, err := fmt.Fprintf(w, "%s\n", root.label); err != nil {
		return err
	}
	return writeChildren(w, root.children, "", fs)
}

func writeChildren(w io.Writer, nodes []*treeNode, prefix string, fs *source.FileSet) error {
	for i, n := range nodes {
		branch, next := "├─ ", "│  "
		if i == len(nodes)-1 {
			branch, next = "└─ ", "   "
		}
		label := n.kind
		if n.label != "" {
			label += " " + n.label
		}
		if n.span != (source.Span{}) {
			label += fmt.Sprintf(" (span: %s)", formatSpan(n.span, fs))
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, branch, label); err != nil {
			return err
		}
		if err := writeChildren(w, n.children, prefix+next, fs); err != nil {
			return err
		}
	}
	return nil
}

// FormatASTJSON выводит дерево программы в JSON.
func FormatASTJSON(w io.Writer, prog *ast.Program) error {
	if prog == nil {
		return fmt.Errorf("program is nil")
	}
	root := buildProgramNode(prog, nil)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toJSON(root))
}

func toJSON(n *treeNode) ASTNodeOutput {
	out := ASTNodeOutput{Type: n.kind, Label: n.label, Span: n.span}
	for _, c := range n.children {
		out.Children = append(out.Children, toJSON(c))
	}
	return out
}

// formatSpan formats a source.Span as "startLine:startCol-endLine:endCol",
// or "span(start-end)" when fs cannot resolve it.
func formatSpan(span source.Span, fs *source.FileSet) string {
	if fs != nil && int(span.File) < fs.Len() {
		start, end := fs.Resolve(span)
		return fmt.Sprintf("%d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
	}
	return fmt.Sprintf("span(%d-%d)", span.Start, span.End)
}

func buildProgramNode(prog *ast.Program, fs *source.FileSet) *treeNode {
	header := "Program"
	if fs != nil && int(prog.File) < fs.Len() {
		header = fs.Get(prog.File).FormatPath("auto", fs.BaseDir())
	}
	root := &treeNode{kind: "Program", label: fmt.Sprintf("%s (decls: %d)", header, len(prog.Decls))}
	for _, d := range prog.Decls {
		root.add(declNode(d))
	}
	return root
}

func typeParams(ps []ast.TypeParam) string {
	if len(ps) == 0 {
		return ""
	}
	return "<" + strings.Join(ast.ParamNames(ps), ", ") + ">"
}

func declNode(d ast.Decl) *treeNode {
	switch d := d.(type) {
	case *ast.StructDecl:
		return structNode(d)
	case *ast.FuncDecl:
		params := make([]string, 0, len(d.Params))
		for _, p := range d.Params {
			params = append(params, strings.TrimSpace(types.String(p.Type)+" "+p.Name))
		}
		if d.Variadic {
			params = append(params, "...")
		}
		kind := "Func"
		if d.Body == nil {
			kind = "Prototype"
		}
		n := &treeNode{
			kind:  kind,
			label: fmt.Sprintf("%s%s %s%s(%s)", d.Storage, types.String(d.Result), d.Name, typeParams(d.TypeParams), strings.Join(params, ", ")),
			span:  d.Loc,
		}
		if d.Body != nil {
			n.add(stmtNode(d.Body))
		}
		return n
	case *ast.VarDecl:
		return varNode(d)
	case *ast.TypedefDecl:
		n := &treeNode{kind: "Typedef", label: fmt.Sprintf("%s = %s", d.Name, types.String(d.Type)), span: d.Loc}
		if d.Struct != nil {
			n.add(structNode(d.Struct))
		}
		return n
	case *ast.EnumDecl:
		n := &treeNode{kind: "Enum", label: d.Name, span: d.Loc}
		for _, it := range d.Items {
			item := leaf("Enumerator", it.Name)
			if it.Value != nil {
				item.add(exprNode(it.Value))
			}
			n.add(item)
		}
		return n
	case *ast.IncludeDecl:
		path := fmt.Sprintf("%q", d.Path)
		if d.System {
			path = "<" + d.Path + ">"
		}
		return &treeNode{kind: "Include", label: path, span: d.Loc}
	case *ast.DirectiveDecl:
		return &treeNode{kind: "Directive", label: strings.TrimSpace(d.Text), span: d.Loc}
	}
	return leaf("Decl", fmt.Sprintf("%T", d))
}

func structNode(d *ast.StructDecl) *treeNode {
	kind := "Struct"
	if d.Union {
		kind = "Union"
	}
	label := d.Name + typeParams(d.TypeParams)
	if d.Fields == nil {
		label += " (forward)"
	}
	n := &treeNode{kind: kind, label: label, span: d.Loc}
	for _, f := range d.Fields {
		n.add(leaf("Field", fmt.Sprintf("%s %s%s", types.String(f.Type), f.Name, dimsLabel(len(f.Dims)))))
	}
	return n
}

func dimsLabel(n int) string {
	return strings.Repeat("[]", n)
}

func varNode(d *ast.VarDecl) *treeNode {
	n := &treeNode{kind: "Var", label: strings.TrimSpace(d.Storage.String()), span: d.Loc}
	for _, v := range d.Vars {
		decl := leaf("Declarator", fmt.Sprintf("%s %s%s", types.String(v.Type), v.Name, dimsLabel(len(v.Dims))))
		if v.Init != nil {
			decl.add(exprNode(v.Init))
		}
		n.add(decl)
	}
	return n
}

func stmtNode(s ast.Stmt) *treeNode {
	switch s := s.(type) {
	case nil:
		return nil
	case *ast.BlockStmt:
		n := &treeNode{kind: "Block", label: fmt.Sprintf("(stmts: %d)", len(s.Stmts)), span: s.Loc}
		for _, st := range s.Stmts {
			n.add(stmtNode(st))
		}
		return n
	case *ast.ReturnStmt:
		n := &treeNode{kind: "Return", span: s.Loc}
		if s.Value != nil {
			n.add(exprNode(s.Value))
		}
		return n
	case *ast.IfStmt:
		n := &treeNode{kind: "If", span: s.Loc}
		n.add(exprNode(s.Cond), stmtNode(s.Then))
		if s.Else != nil {
			n.add(leaf("Else", "").add(stmtNode(s.Else)))
		}
		return n
	case *ast.WhileStmt:
		return (&treeNode{kind: "While", span: s.Loc}).add(exprNode(s.Cond), stmtNode(s.Body))
	case *ast.DoWhileStmt:
		return (&treeNode{kind: "DoWhile", span: s.Loc}).add(stmtNode(s.Body), exprNode(s.Cond))
	case *ast.ForStmt:
		n := &treeNode{kind: "For", span: s.Loc}
		if s.Init != nil {
			n.add(leaf("Init", "").add(stmtNode(s.Init)))
		}
		if s.Cond != nil {
			n.add(leaf("Cond", "").add(exprNode(s.Cond)))
		}
		if s.Post != nil {
			n.add(leaf("Post", "").add(exprNode(s.Post)))
		}
		return n.add(stmtNode(s.Body))
	case *ast.BreakStmt:
		return &treeNode{kind: "Break", span: s.Loc}
	case *ast.ContinueStmt:
		return &treeNode{kind: "Continue", span: s.Loc}
	case *ast.EmptyStmt:
		return &treeNode{kind: "Empty", span: s.Loc}
	case *ast.ExprStmt:
		return (&treeNode{kind: "ExprStmt", span: s.Loc}).add(exprNode(s.X))
	case *ast.VarDecl:
		return varNode(s)
	}
	return leaf("Stmt", fmt.Sprintf("%T", s))
}

func exprNode(e ast.Expr) *treeNode {
	switch e := e.(type) {
	case nil:
		return nil
	case *ast.Ident:
		return leaf("Ident", e.Name)
	case *ast.BasicLit:
		return leaf("Lit", e.Value)
	case *ast.BinaryExpr:
		return leaf("Binary", e.Op.Text()).add(exprNode(e.X), exprNode(e.Y))
	case *ast.UnaryExpr:
		kind := "Unary"
		if e.Postfix {
			kind = "Postfix"
		}
		return leaf(kind, e.Op.Text()).add(exprNode(e.X))
	case *ast.ConditionalExpr:
		return leaf("Cond", "").add(exprNode(e.Cond), exprNode(e.Then), exprNode(e.Else))
	case *ast.CallExpr:
		label := ""
		if len(e.TypeArgs) > 0 {
			args := make([]string, len(e.TypeArgs))
			for i, t := range e.TypeArgs {
				args[i] = types.String(t)
			}
			label = "<" + strings.Join(args, ", ") + ">"
		}
		n := leaf("Call", label).add(exprNode(e.Fun))
		for _, a := range e.Args {
			n.add(exprNode(a))
		}
		return n
	case *ast.MemberExpr:
		op := "."
		if e.Arrow {
			op = "->"
		}
		return leaf("Member", op+e.Name).add(exprNode(e.X))
	case *ast.IndexExpr:
		return leaf("Index", "").add(exprNode(e.X), exprNode(e.Index))
	case *ast.SizeofExpr:
		if e.Type != nil {
			return leaf("Sizeof", types.String(e.Type))
		}
		return leaf("Sizeof", "").add(exprNode(e.X))
	case *ast.CastExpr:
		return leaf("Cast", types.String(e.Type)).add(exprNode(e.X))
	case *ast.ParenExpr:
		return leaf("Paren", "").add(exprNode(e.X))
	case *ast.InitList:
		n := leaf("InitList", fmt.Sprintf("(elems: %d)", len(e.Elems)))
		for _, el := range e.Elems {
			n.add(exprNode(el))
		}
		return n
	}
	return leaf("Expr", fmt.Sprintf("%T", e))
}
