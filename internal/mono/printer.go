package mono

import (
	"bytes"
	"fmt"
	"strings"

	"safec/internal/ast"
	"safec/internal/diag"
	"safec/internal/token"
	"safec/internal/types"
)

const indentUnit = "    "

// printer renders declarations as C text under a substitution. The same
// printer type serves specialized and pass-through code; the latter uses a
// nil Subst.
type printer struct {
	buf   *bytes.Buffer
	idx   *index
	rep   diag.Reporter
	subst *Subst
	// tagged holds struct instantiations whose mangled name is also a
	// function instantiation; they get no typedef and are always written
	// with their keyword.
	tagged map[string]bool
}

func (p *printer) with(s *Subst) *printer {
	cp := *p
	cp.subst = s
	return &cp
}

func (p *printer) write(parts ...string) {
	for _, s := range parts {
		p.buf.WriteString(s)
	}
}

func (p *printer) indent(n int) {
	for range n {
		p.buf.WriteString(indentUnit)
	}
}

// typeName renders t after substitution.
func (p *printer) typeName(t types.Type) string {
	return p.render(p.subst.Type(t))
}

func (p *printer) render(t types.Type) string {
	switch x := t.(type) {
	case nil:
		return "void"
	case *types.Named:
		return x.Name
	case *types.Pointer:
		return p.render(x.Elem) + "*"
	case *types.Applied:
		if d := p.idx.genericStruct(x.Name); d != nil {
			m := Mangle(x.Name, x.Args)
			if p.tagged[m] {
				return d.Keyword() + " " + m
			}
			return m
		}
		msg := fmt.Sprintf("unknown generic type %s; emitted as %s", types.String(x), x.Name)
		if p.idx.plain[x.Name] {
			msg = fmt.Sprintf("%s is not generic; type arguments in %s are ignored", x.Name, types.String(x))
		}
		diag.ReportWarning(p.rep, diag.MonoNotGeneric, x.Loc, msg).Emit()
		return x.Name
	default:
		return "?"
	}
}

// declarator renders `Type name[dims]`; an empty name yields just the type.
func (p *printer) declarator(t types.Type, name string, dims []ast.Expr) string {
	s := p.typeName(t)
	if name != "" {
		s += " " + name
	}
	return s + p.dims(dims)
}

func (p *printer) dims(dims []ast.Expr) string {
	var sb strings.Builder
	for _, d := range dims {
		sb.WriteByte('[')
		if d != nil {
			sb.WriteString(p.expr(d))
		}
		sb.WriteByte(']')
	}
	return sb.String()
}

// varDecl renders a declaration without the trailing ';'. A single
// declarator keeps the `int* p` form; several share one base type and
// carry their own stars: `int *a, b`.
func (p *printer) varDecl(v *ast.VarDecl) string {
	var sb strings.Builder
	sb.WriteString(v.Storage.String())
	if len(v.Vars) == 1 {
		d := v.Vars[0]
		sb.WriteString(p.declarator(d.Type, d.Name, d.Dims))
		if d.Init != nil {
			sb.WriteString(" = ")
			sb.WriteString(p.expr(d.Init))
		}
		return sb.String()
	}
	for i, d := range v.Vars {
		t := p.subst.Type(d.Type)
		if i == 0 {
			sb.WriteString(p.render(types.Base(t)))
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(strings.Repeat("*", types.PointerDepth(t)))
		sb.WriteString(d.Name)
		sb.WriteString(p.dims(d.Dims))
		if d.Init != nil {
			sb.WriteString(" = ")
			sb.WriteString(p.expr(d.Init))
		}
	}
	return sb.String()
}

// signature renders a function head under name, without body or ';'.
func (p *printer) signature(fn *ast.FuncDecl, name string) string {
	var sb strings.Builder
	sb.WriteString(fn.Storage.String())
	sb.WriteString(p.typeName(fn.Result))
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteByte('(')
	for i, prm := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.declarator(prm.Type, prm.Name, prm.Dims))
	}
	switch {
	case fn.Variadic && len(fn.Params) > 0:
		sb.WriteString(", ...")
	case fn.Variadic:
		sb.WriteString("...")
	case len(fn.Params) == 0:
		sb.WriteString("void")
	}
	sb.WriteByte(')')
	return sb.String()
}

// fields writes a `{ ... }` member block; the caller writes what follows '}'.
func (p *printer) fields(list []*ast.Field, ind int) {
	p.write("{\n")
	for _, f := range list {
		p.indent(ind + 1)
		p.write(p.declarator(f.Type, f.Name, f.Dims), ";\n")
	}
	p.indent(ind)
	p.write("}")
}

func (p *printer) enum(d *ast.EnumDecl) {
	p.write("enum ")
	if d.Name != "" {
		p.write(d.Name, " ")
	}
	p.write("{\n")
	for i, it := range d.Items {
		p.indent(1)
		p.write(it.Name)
		if it.Value != nil {
			p.write(" = ", p.expr(it.Value))
		}
		if i < len(d.Items)-1 {
			p.write(",")
		}
		p.write("\n")
	}
	p.write("};\n\n")
}

func (p *printer) typedef(d *ast.TypedefDecl) {
	p.write("typedef ")
	if d.Struct != nil {
		p.write(d.Struct.Keyword(), " ")
		if d.Struct.Name != "" {
			p.write(d.Struct.Name, " ")
		}
		p.fields(d.Struct.Fields, 0)
		p.write(" ", d.Name, p.dims(d.Dims), ";\n\n")
		return
	}
	p.write(p.declarator(d.Type, d.Name, d.Dims), ";\n")
}

// stmt writes s on its own line(s) at indentation ind.
func (p *printer) stmt(s ast.Stmt, ind int) {
	switch x := s.(type) {
	case *ast.BlockStmt:
		p.indent(ind)
		p.block(x, ind)
		p.write("\n")
	case *ast.ReturnStmt:
		p.indent(ind)
		if x.Value == nil {
			p.write("return;\n")
			return
		}
		p.write("return ", p.expr(x.Value), ";\n")
	case *ast.IfStmt:
		p.indent(ind)
		p.ifStmt(x, ind)
	case *ast.WhileStmt:
		p.indent(ind)
		p.write("while (", p.expr(x.Cond), ")")
		if p.clause(x.Body, ind) {
			p.write("\n")
		}
	case *ast.DoWhileStmt:
		p.indent(ind)
		p.write("do")
		if p.clause(x.Body, ind) {
			p.write(" ")
		} else {
			p.indent(ind)
		}
		p.write("while (", p.expr(x.Cond), ");\n")
	case *ast.ForStmt:
		p.indent(ind)
		p.write("for (", p.forInit(x.Init), ";")
		if x.Cond != nil {
			p.write(" ", p.expr(x.Cond))
		}
		p.write(";")
		if x.Post != nil {
			p.write(" ", p.expr(x.Post))
		}
		p.write(")")
		if p.clause(x.Body, ind) {
			p.write("\n")
		}
	case *ast.BreakStmt:
		p.indent(ind)
		p.write("break;\n")
	case *ast.ContinueStmt:
		p.indent(ind)
		p.write("continue;\n")
	case *ast.EmptyStmt:
		p.indent(ind)
		p.write(";\n")
	case *ast.ExprStmt:
		p.indent(ind)
		p.write(p.expr(x.X), ";\n")
	case *ast.VarDecl:
		p.indent(ind)
		p.write(p.varDecl(x), ";\n")
	}
}

// block writes `{ ... }` starting at the current column.
func (p *printer) block(b *ast.BlockStmt, ind int) {
	p.write("{\n")
	for _, s := range b.Stmts {
		p.stmt(s, ind+1)
	}
	p.indent(ind)
	p.write("}")
}

// clause writes the body of a control statement. It reports whether the
// body was a block, in which case the line is still open after '}'.
func (p *printer) clause(s ast.Stmt, ind int) bool {
	if b, ok := s.(*ast.BlockStmt); ok {
		p.write(" ")
		p.block(b, ind)
		return true
	}
	p.write("\n")
	p.stmt(s, ind+1)
	return false
}

func (p *printer) ifStmt(x *ast.IfStmt, ind int) {
	p.write("if (", p.expr(x.Cond), ")")
	open := p.clause(x.Then, ind)
	if x.Else == nil {
		if open {
			p.write("\n")
		}
		return
	}
	if open {
		p.write(" else")
	} else {
		p.indent(ind)
		p.write("else")
	}
	if elif, ok := x.Else.(*ast.IfStmt); ok {
		p.write(" ")
		p.ifStmt(elif, ind)
		return
	}
	if p.clause(x.Else, ind) {
		p.write("\n")
	}
}

func (p *printer) forInit(s ast.Stmt) string {
	switch x := s.(type) {
	case *ast.VarDecl:
		return p.varDecl(x)
	case *ast.ExprStmt:
		return p.expr(x.X)
	default:
		return ""
	}
}

func (p *printer) expr(e ast.Expr) string {
	switch x := e.(type) {
	case nil:
		return ""
	case *ast.Ident:
		return x.Name
	case *ast.BasicLit:
		return x.Value
	case *ast.BinaryExpr:
		if x.Op == token.Comma {
			return p.expr(x.X) + ", " + p.expr(x.Y)
		}
		return p.expr(x.X) + " " + x.Op.Text() + " " + p.expr(x.Y)
	case *ast.UnaryExpr:
		operand := p.expr(x.X)
		op := x.Op.Text()
		if x.Postfix {
			return operand + op
		}
		if operand != "" && op != "" && operand[0] == op[len(op)-1] && strings.ContainsRune("+-&", rune(operand[0])) {
			return op + " " + operand
		}
		return op + operand
	case *ast.ConditionalExpr:
		return p.expr(x.Cond) + " ? " + p.expr(x.Then) + " : " + p.expr(x.Else)
	case *ast.CallExpr:
		return p.callee(x) + "(" + p.exprList(x.Args) + ")"
	case *ast.MemberExpr:
		sep := "."
		if x.Arrow {
			sep = "->"
		}
		return p.expr(x.X) + sep + x.Name
	case *ast.IndexExpr:
		return p.expr(x.X) + "[" + p.expr(x.Index) + "]"
	case *ast.SizeofExpr:
		if x.Type != nil {
			return "sizeof(" + p.typeName(x.Type) + ")"
		}
		if _, paren := x.X.(*ast.ParenExpr); paren {
			return "sizeof" + p.expr(x.X)
		}
		return "sizeof " + p.expr(x.X)
	case *ast.CastExpr:
		return "(" + p.typeName(x.Type) + ")" + p.expr(x.X)
	case *ast.ParenExpr:
		return "(" + p.expr(x.X) + ")"
	case *ast.InitList:
		return "{" + p.exprList(x.Elems) + "}"
	default:
		return ""
	}
}

func (p *printer) exprList(list []ast.Expr) string {
	parts := make([]string, len(list))
	for i, e := range list {
		parts[i] = p.expr(e)
	}
	return strings.Join(parts, ", ")
}

// callee renders the called expression. Calls with type arguments to a
// known generic function use the mangled name; to anything else, the bare
// name.
func (p *printer) callee(c *ast.CallExpr) string {
	name := c.CalleeName()
	if len(c.TypeArgs) == 0 || name == "" {
		return p.expr(c.Fun)
	}
	if p.idx.genericFunc(name) != nil {
		return Mangle(name, p.subst.Types(c.TypeArgs))
	}
	return name
}
