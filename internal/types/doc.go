// Package types models SafeC type expressions.
//
// A Type is an immutable tree built from three variants:
//
//	*Named    plain name: int, T, unsigned int, struct Point
//	*Applied  parametric application: Box<int>, Pair<K, V>
//	*Pointer  one level of indirection around Elem
//
// Trees are never mutated after construction. Subtrees may be shared freely
// between owners (instantiation keys, substitution bindings, AST nodes).
// Equality is structural and ignores source spans; Key returns a canonical
// string with the same equivalence.
package types
