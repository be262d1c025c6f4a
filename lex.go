// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"sort"
)

// Lexer produces tokens on demand from a source buffer it does not own
// (spec.md §4.3: "Lexer owns no source; callers retain the buffer").
type Lexer struct {
	source                     []byte
	codePage                   uint32
	maxStringLiteralCodepoints int
	diags                      *Diagnostics

	pos        int
	lineStarts []int // lineStarts[i] = byte offset where line i+1 begins
}

// NewLexer constructs a Lexer over source, which must already be the
// post-comment-pre-pass text. codePage is recorded on the Lexer but not
// read by it: narrow string literals are decoded by the Parser with its
// own code page. Diagnostics encountered while lexing are appended to
// diags.
func NewLexer(source []byte, codePage uint32, maxStringLiteralCodepoints int, diags *Diagnostics) *Lexer {
	return &Lexer{
		source:                     source,
		codePage:                   codePage,
		maxStringLiteralCodepoints: maxStringLiteralCodepoints,
		diags:                      diags,
		lineStarts:                 precomputeLineStarts(source),
	}
}

// precomputeLineStarts pre-scans newlines once so every subsequent token's
// line number is a binary search rather than a re-scan (spec.md §4.3).
func precomputeLineStarts(source []byte) []int {
	starts := []int{0}
	for i, b := range source {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (l *Lexer) lineNumber(offset int) uint32 {
	// lineStarts[i] <= offset for the line containing offset; find the
	// largest such i via binary search over the sorted starts.
	i := sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	})
	return uint32(i) // i is 1-based line number already: starts[0]=0 is line 1
}

// SetCodePage replaces the code page recorded on the Lexer. Nothing in
// this package calls it, and the recorded value does not change how string
// literals are decoded; `#pragma code_page(N)` is not recognized.
func (l *Lexer) SetCodePage(codePage uint32) {
	l.codePage = codePage
}

func (l *Lexer) eof() bool { return l.pos >= len(l.source) }

func (l *Lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) peekByteAt(off int) byte {
	p := l.pos + off
	if p >= len(l.source) {
		return 0
	}
	return l.source[p]
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isIllegalEverywhere(b byte) bool {
	return b == 0x00
}

func isIllegalOutsideString(b byte) bool {
	if b >= 0x00 && b <= 0x08 {
		return true
	}
	if b >= 0x0E && b <= 0x1F {
		return true
	}
	return b == 0x7F
}

// skipIgnorable skips whitespace (other than newlines, which are
// meaningful only for line counting and never produce tokens) between
// tokens, reporting illegal bytes along the way.
func (l *Lexer) skipIgnorable() {
	for !l.eof() {
		b := l.peekByte()
		switch {
		case b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
			l.pos++
		case isIllegalEverywhere(b):
			l.emitIllegal(ErrIllegalByte)
			l.pos++
		case isIllegalOutsideString(b):
			l.emitIllegal(ErrIllegalByteOutsideStringLiterals)
			l.pos++
		default:
			return
		}
	}
}

func (l *Lexer) emitIllegal(code ErrorCode) {
	start := uint32(l.pos)
	tok := Token{ID: TokInvalid, Start: start, End: start + 1, Line: l.lineNumber(l.pos)}
	l.diags.AppendToken(KindError, code, tok, true)
}

// Next returns the next token. numericContext tells the lexer whether a
// leading unary '-' should be fused into a following numeric literal, a
// parser-driven decision per spec.md §4.3 ("An optional unary `-` is
// lexed as part of the number only in numeric expression contexts").
func (l *Lexer) Next(numericContext bool) Token {
	l.skipIgnorable()

	if l.eof() {
		return Token{ID: TokEOF, Start: uint32(l.pos), End: uint32(l.pos), Line: l.lineNumber(l.pos)}
	}

	start := l.pos
	line := l.lineNumber(l.pos)
	b := l.peekByte()

	switch {
	case numericContext && b == '-' && isDigit(l.peekByteAt(1)):
		return l.lexNumber(start, line)
	case isDigit(b):
		return l.lexNumber(start, line)
	case b == '"':
		return l.lexString(start, line, false)
	case (b == 'L' || b == 'l') && l.peekByteAt(1) == '"':
		return l.lexString(start, line, true)
	case isIdentStart(b):
		return l.lexIdentifier(start, line)
	case b == '{':
		l.pos++
		return Token{ID: TokOpenBrace, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '}':
		l.pos++
		return Token{ID: TokCloseBrace, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == ',':
		l.pos++
		return Token{ID: TokComma, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '+':
		l.pos++
		return Token{ID: TokPlus, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '-':
		l.pos++
		return Token{ID: TokMinus, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '&':
		l.pos++
		return Token{ID: TokAmpersand, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '|':
		l.pos++
		return Token{ID: TokPipe, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '~':
		l.pos++
		return Token{ID: TokTilde, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == '(':
		l.pos++
		return Token{ID: TokLeftParen, Start: uint32(start), End: uint32(l.pos), Line: line}
	case b == ')':
		l.pos++
		return Token{ID: TokRightParen, Start: uint32(start), End: uint32(l.pos), Line: line}
	default:
		// Not one of the illegal-byte ranges (those are filtered out by
		// skipIgnorable) but still not a recognized token starter; consume
		// it as an invalid single-byte token so the lexer always makes
		// progress (total function, spec.md §4.1 precedent).
		l.pos++
		return Token{ID: TokInvalid, Start: uint32(start), End: uint32(l.pos), Line: line}
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isOctalDigit(b byte) bool { return b >= '0' && b <= '7' }

// lexNumber consumes decimal, 0x-hex, or 0-prefixed octal digits, per
// spec.md §4.3: "consume digits of the chosen radix, stop at first
// invalid digit" — it never fails, it just stops.
func (l *Lexer) lexNumber(start int, line uint32) Token {
	if l.peekByte() == '-' {
		l.pos++
	}

	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.pos += 2
		for !l.eof() && isHexDigit(l.peekByte()) {
			l.pos++
		}
	} else if l.peekByte() == '0' && isOctalDigit(l.peekByteAt(1)) {
		l.pos++
		for !l.eof() && isOctalDigit(l.peekByte()) {
			l.pos++
		}
	} else {
		for !l.eof() && isDigit(l.peekByte()) {
			l.pos++
		}
	}

	// A trailing type suffix (L, l, U, u and combinations) is accepted and
	// discarded the way rc.exe accepts C-style integer suffixes.
	for !l.eof() {
		b := l.peekByte()
		if b == 'L' || b == 'l' || b == 'U' || b == 'u' {
			l.pos++
			continue
		}
		break
	}

	return Token{ID: TokLiteralNumber, Start: uint32(start), End: uint32(l.pos), Line: line}
}

// ParseRCNumber evaluates a literal_number token's text into its u32
// value, wrapping modulo 2^32 on overflow (spec.md §4.3, §8: "Numeric
// literal 4294967297 lexes as 1").
func ParseRCNumber(text []byte) uint32 {
	s := text
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	for len(s) > 0 {
		c := s[len(s)-1]
		if c == 'L' || c == 'l' || c == 'U' || c == 'u' {
			s = s[:len(s)-1]
			continue
		}
		break
	}

	var base uint64 = 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	} else if len(s) >= 2 && s[0] == '0' {
		base = 8
	}

	var value uint64
	for _, c := range s {
		var digit uint64
		switch {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			continue
		}
		if digit >= base {
			continue
		}
		value = value*base + digit
	}

	result := uint32(value)
	if neg {
		result = -result
	}
	return result
}

// lexString consumes a "..." or L"..." literal. "" inside is an escaped
// quote; \" is never valid RC syntax and produces
// found_c_style_escaped_quote rather than being treated as an escape
// (spec.md §4.3).
func (l *Lexer) lexString(start int, line uint32, wide bool) Token {
	if wide {
		l.pos++ // the leading L
	}
	l.pos++ // the opening quote

	codepoints := 0
	for !l.eof() {
		b := l.peekByte()
		switch {
		case b == '"':
			if l.peekByteAt(1) == '"' {
				l.pos += 2 // escaped quote ""
				codepoints++
				continue
			}
			l.pos++
			id := TokQuotedASCIIString
			if wide {
				id = TokQuotedWideString
			}
			tok := Token{ID: id, Start: uint32(start), End: uint32(l.pos), Line: line}
			if codepoints > l.maxStringLiteralCodepoints {
				l.diags.AppendToken(KindError, ErrStringLiteralTooLong, tok, true)
			}
			return tok
		case b == '\\' && l.peekByteAt(1) == '"':
			tok := Token{ID: TokInvalid, Start: uint32(l.pos), End: uint32(l.pos + 2), Line: l.lineNumber(l.pos)}
			l.diags.AppendToken(KindError, ErrFoundCStyleEscapedQuote, tok, true)
			l.pos += 2
			codepoints++
		case b == '\\':
			l.pos += l.consumeEscape()
			codepoints++
		case b == '\n':
			// A bare newline terminates the literal at the lexical layer,
			// matching the reference compiler (spec.md §4.3, §4.1).
			id := TokQuotedASCIIString
			if wide {
				id = TokQuotedWideString
			}
			tok := Token{ID: id, Start: uint32(start), End: uint32(l.pos), Line: line}
			l.diags.AppendToken(KindError, ErrUnfinishedStringLiteral, tok, true)
			return tok
		default:
			l.pos++
			codepoints++
		}
	}

	id := TokQuotedASCIIString
	if wide {
		id = TokQuotedWideString
	}
	tok := Token{ID: id, Start: uint32(start), End: uint32(l.pos), Line: line}
	l.diags.AppendToken(KindError, ErrUnfinishedStringLiteral, tok, true)
	return tok
}

// consumeEscape advances past a backslash escape (\t \n \a \r \\ \xHH \0OO)
// and returns the number of bytes it consumed, starting from the
// backslash itself. Unrecognized escapes consume just the backslash and
// the following byte, matching the lexer's "never fails" contract.
func (l *Lexer) consumeEscape() int {
	n := 1 // the backslash
	next := l.peekByteAt(1)
	switch next {
	case 't', 'n', 'a', 'r', '\\':
		return n + 1
	case 'x', 'X':
		n++ // backslash + x
		for isHexDigit(l.peekByteAt(n)) {
			n++
		}
		return n
	case '0', '1', '2', '3', '4', '5', '6', '7':
		n++ // backslash + first octal digit
		for isOctalDigit(l.peekByteAt(n)) {
			n++
		}
		return n
	default:
		return n + 1
	}
}

// lexIdentifier consumes an identifier, resolving it to the BEGIN/END
// keyword tokens when its ASCII-lowercased spelling matches (spec.md
// §4.3: "Identifiers carry their source slice; comparison is ASCII
// case-insensitive").
func (l *Lexer) lexIdentifier(start int, line uint32) Token {
	for !l.eof() && isIdentCont(l.peekByte()) {
		l.pos++
	}
	text := l.source[start:l.pos]
	id := TokIdentifier
	if kw, ok := keywords[lowerASCII(string(text))]; ok {
		id = kw
	}
	return Token{ID: id, Start: uint32(start), End: uint32(l.pos), Line: line}
}

// lowerASCII ASCII-lowercases s without allocating for the already-lower
// common case.
func lowerASCII(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			b := []byte(s)
			for j := i; j < len(b); j++ {
				if b[j] >= 'A' && b[j] <= 'Z' {
					b[j] += 'a' - 'A'
				}
			}
			return string(b)
		}
	}
	return s
}

// EqualsKeyword reports whether token text equals keyword, ASCII
// case-insensitively (spec.md §4.3 "Keywords ... Identifiers carry their
// source slice; comparison is ASCII case-insensitive").
func EqualsKeyword(text []byte, keyword string) bool {
	if len(text) != len(keyword) {
		return false
	}
	for i := range text {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != keyword[i] {
			return false
		}
	}
	return true
}
