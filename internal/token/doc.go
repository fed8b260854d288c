// Package token defines the lexical token kinds of the source language.
// Invariants:
//   - Token.Text is the exact source spelling, except for string and char
//     literals where it holds the unescaped contents.
//   - Builtin calls are lexed as '@' (Kind: At) + Ident.
//   - Type names (int, str, char, bool, void) are identifiers and are
//     recognized by the parser.
package token
