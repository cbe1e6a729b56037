// Package ast defines the syntax tree of a SafeC translation unit.
//
// Nodes are plain structs behind the Decl, Stmt and Expr interfaces.
// Type expressions are types.Type trees. The monomorphizer reads the tree
// and never mutates it; specialized code is produced by printing with a
// substitution rather than by rewriting nodes.
package ast
