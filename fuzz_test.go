// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "testing"

// FuzzRemoveComments checks the two invariants the comment pre-pass must
// hold for any input: it never grows the buffer, and running it twice is
// the same as running it once (spec.md §4.1).
func FuzzRemoveComments(f *testing.F) {
	f.Add("")
	f.Add("// comment\nA RCDATA {1}")
	f.Add("/* block */ A RCDATA {1}")
	f.Add(`"a string // not a comment"`)
	f.Add("a/")
	f.Add("/* unterminated")

	f.Fuzz(func(t *testing.T, src string) {
		out := RemoveComments([]byte(src))
		if len(out) > len(src) {
			t.Fatalf("RemoveComments grew the input: %d > %d", len(out), len(src))
		}
		again := RemoveComments(out)
		if string(again) != string(out) {
			t.Fatalf("RemoveComments is not idempotent: %q -> %q -> %q", src, out, again)
		}
	})
}

// FuzzLexerNeverPanics checks that the lexer always terminates by
// reaching TokEOF without panicking, for any byte sequence (spec.md §4.3
// "total function over any byte sequence").
func FuzzLexerNeverPanics(f *testing.F) {
	f.Add([]byte("A RCDATA { 1, \"hi\" }"))
	f.Add([]byte{0x00, 0x01, 0x7f})
	f.Add([]byte(`"unterminated`))
	f.Add([]byte("-0x10"))

	f.Fuzz(func(t *testing.T, src []byte) {
		diags := NewDiagnostics()
		lx := NewLexer(src, 1252, DefaultMaxStringLiteralCodepoints, diags)
		for i := 0; i < len(src)+2; i++ {
			tok := lx.Next(false)
			if tok.ID == TokEOF {
				return
			}
		}
		t.Fatalf("lexer did not reach EOF within len(src)+2 tokens")
	})
}

// FuzzParseFileNeverPanics checks that the parser recovers from any
// malformed input without panicking (spec.md §4.4 "Error recovery").
func FuzzParseFileNeverPanics(f *testing.F) {
	f.Add("A RCDATA { 1 }")
	f.Add("A DIALOG 0,0,0,0 BEGIN END")
	f.Add("} { } BEGIN END")
	f.Add("1 6 {}")

	f.Fuzz(func(t *testing.T, src string) {
		diags := NewDiagnostics()
		stripped := RemoveComments([]byte(src))
		ParseFile(stripped, 1252, DefaultMaxStringLiteralCodepoints, diags)
	})
}
