//go:build gofuzz
// +build gofuzz

// This file exists to export internal implementation details for fuzz testing.

package schema

// FuzzParseExpression exercises the type-expression tokenizer and parser
// directly against fuzzer-supplied input. It never panics on malformed
// input — tokenizeExpr and parseExpression report errors through their
// return value — so a crash here means the grammar's own invariants
// (bracket balance, transition table) were violated internally.
func FuzzParseExpression(exp string) {
	if _, err := parseExpression("Fuzz", exp); err != nil {
		return
	}
}
