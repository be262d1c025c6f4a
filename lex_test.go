// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "testing"

func lexAll(t *testing.T, source string) ([]Token, *Diagnostics) {
	t.Helper()
	diags := NewDiagnostics()
	lx := NewLexer([]byte(source), 1252, DefaultMaxStringLiteralCodepoints, diags)
	var toks []Token
	for {
		tok := lx.Next(false)
		toks = append(toks, tok)
		if tok.ID == TokEOF {
			break
		}
	}
	return toks, diags
}

func TestLexerBasicTokens(t *testing.T) {
	toks, diags := lexAll(t, `A RCDATA { 1, "hi" }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Records())
	}
	want := []TokenID{TokIdentifier, TokIdentifier, TokOpenBrace, TokLiteralNumber, TokComma, TokQuotedASCIIString, TokCloseBrace, TokEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, id := range want {
		if toks[i].ID != id {
			t.Errorf("token %d: got %s, want %s", i, toks[i].ID, id)
		}
	}
}

func TestLexerBeginEndKeywords(t *testing.T) {
	toks, _ := lexAll(t, "begin END BeGiN")
	want := []TokenID{TokBegin, TokEnd, TokBegin, TokEOF}
	for i, id := range want {
		if toks[i].ID != id {
			t.Fatalf("token %d: got %s, want %s", i, toks[i].ID, id)
		}
	}
}

func TestLexerWideString(t *testing.T) {
	toks, _ := lexAll(t, `L"wide" "narrow"`)
	if toks[0].ID != TokQuotedWideString {
		t.Fatalf("expected wide string token, got %s", toks[0].ID)
	}
	if toks[1].ID != TokQuotedASCIIString {
		t.Fatalf("expected narrow string token, got %s", toks[1].ID)
	}
}

func TestLexerEscapedQuotePair(t *testing.T) {
	toks, diags := lexAll(t, `"a""b"`)
	if diags.HasErrors() {
		t.Fatalf("unexpected diagnostics: %+v", diags.Records())
	}
	if toks[0].ID != TokQuotedASCIIString {
		t.Fatalf("got %s", toks[0].ID)
	}
}

func TestLexerCStyleEscapedQuoteIsError(t *testing.T) {
	_, diags := lexAll(t, `"a\"b"`)
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrFoundCStyleEscapedQuote {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected found_c_style_escaped_quote diagnostic, got %+v", diags.Records())
	}
}

func TestLexerUnfinishedStringLiteral(t *testing.T) {
	_, diags := lexAll(t, "\"abc\ndef")
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrUnfinishedStringLiteral {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected unfinished_string_literal diagnostic, got %+v", diags.Records())
	}
}

func TestLexerNumericLiteralWrap(t *testing.T) {
	toks, _ := lexAll(t, "4294967297")
	if toks[0].ID != TokLiteralNumber {
		t.Fatalf("got %s", toks[0].ID)
	}
	got := ParseRCNumber(toks[0].Text([]byte("4294967297")))
	if got != 1 {
		t.Fatalf("ParseRCNumber(4294967297) = %d, want 1", got)
	}
}

func TestParseRCNumberRadixes(t *testing.T) {
	cases := map[string]uint32{
		"10":     10,
		"0x10":   16,
		"010":    8,
		"0":      0,
		"0xFF":   255,
		"1L":     1,
		"2u":     2,
	}
	for text, want := range cases {
		got := ParseRCNumber([]byte(text))
		if got != want {
			t.Errorf("ParseRCNumber(%q) = %d, want %d", text, got, want)
		}
	}
}

func TestLexerLineNumbers(t *testing.T) {
	toks, _ := lexAll(t, "A\nB\n\nC")
	if toks[0].Line != 1 {
		t.Errorf("A: got line %d, want 1", toks[0].Line)
	}
	if toks[1].Line != 2 {
		t.Errorf("B: got line %d, want 2", toks[1].Line)
	}
	if toks[2].Line != 4 {
		t.Errorf("C: got line %d, want 4", toks[2].Line)
	}
}

func TestLexerIllegalByteOutsideString(t *testing.T) {
	_, diags := lexAll(t, "A \x01 B")
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrIllegalByteOutsideStringLiterals {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected illegal_byte_outside_string_literals, got %+v", diags.Records())
	}
}

func TestLexerNumericContextFusesUnaryMinus(t *testing.T) {
	diags := NewDiagnostics()
	lx := NewLexer([]byte("-5"), 1252, DefaultMaxStringLiteralCodepoints, diags)
	tok := lx.Next(true)
	if tok.ID != TokLiteralNumber {
		t.Fatalf("got %s", tok.ID)
	}
	if string(tok.Text([]byte("-5"))) != "-5" {
		t.Fatalf("got %q", tok.Text([]byte("-5")))
	}
}

func TestLexerNonNumericContextSplitsMinus(t *testing.T) {
	diags := NewDiagnostics()
	lx := NewLexer([]byte("-5"), 1252, DefaultMaxStringLiteralCodepoints, diags)
	tok := lx.Next(false)
	if tok.ID != TokMinus {
		t.Fatalf("got %s", tok.ID)
	}
}
