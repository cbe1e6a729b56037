// Package token defines lexical token kinds and trivia for the SafeC compiler.
// Invariants:
//   - Token.Text is the exact source slice covered by Token.Span.
//   - C type keywords (int, char, unsigned, ...) are keywords, not identifiers;
//     the parser folds sequences of them into one type name.
//   - Preprocessor lines (#include, #define, ...) are lexed as a single
//     Directive token and are passed through to the output untouched.
package token
