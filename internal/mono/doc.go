// Package mono lowers generic SafeC declarations into plain C.
//
// A compilation runs in three passes over one *ast.Program:
//
//	Collect:  registers every concrete generic use (struct types and
//	           explicit generic calls) in an Instantiations pair;
//	Expand:   computes the closure: each instantiation's substituted
//	           fields, signature and body may request further ones;
//	Generate: emits specialized structs, specialized functions, then the
//	           non-generic declarations in source order.
//
// Instantiations are keyed structurally (types.Key), so Box<Pair<int, char>>
// and Box<Pair<int, double>> are distinct entries. Mangled names are derived
// recursively by Mangle; two keys that still mangle identically are reported
// as MonoMangleCollision.
//
// Semantic problems never abort the run: they are reported to the configured
// diag.Reporter and the affected instantiation is skipped. Go errors are
// returned only for write failures and context cancellation.
package mono
