// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// CodePageError classifies why a code page identifier could not be
// resolved (spec.md §4.2).
type CodePageError int

const (
	// CodePageInvalid means the identifier is not a registered Windows
	// code page at all.
	CodePageInvalid CodePageError = iota
	// CodePageUnsupported means the identifier is a real Windows code page
	// this compiler does not implement a decoder for.
	CodePageUnsupported
)

func (e CodePageError) Error() string {
	switch e {
	case CodePageInvalid:
		return "invalid code page"
	case CodePageUnsupported:
		return "unsupported code page"
	default:
		return "unknown code page error"
	}
}

// codePages is the registry of decoders this compiler supports, following
// the teacher's own use of golang.org/x/text/encoding/unicode in
// helper.go's DecodeUTF16String; the set is widened here to the rest of
// the registry spec.md §4.2 requires.
var codePages = map[uint32]encoding.Encoding{
	1252:  charmap.Windows1252,
	65001: unicode.UTF8,
}

// knownWindowsCodePages lists identifiers that are real Windows code pages
// even though this compiler has no decoder for them yet, so that
// LookupCodePage can distinguish "invalid" from merely "unsupported".
var knownWindowsCodePages = map[uint32]bool{
	37: true, 437: true, 500: true, 708: true, 709: true, 710: true,
	720: true, 737: true, 775: true, 850: true, 852: true, 855: true,
	857: true, 858: true, 860: true, 861: true, 862: true, 863: true,
	864: true, 865: true, 866: true, 869: true, 870: true, 874: true,
	875: true, 932: true, 936: true, 949: true, 950: true, 1026: true,
	1140: true, 1200: true, 1201: true, 1250: true, 1251: true, 1252: true,
	1253: true, 1254: true, 1255: true, 1256: true, 1257: true, 1258: true,
	1361: true, 10000: true, 12000: true, 12001: true, 20127: true,
	28591: true, 28592: true, 28605: true, 65000: true, 65001: true,
}

// LookupCodePage resolves a Windows code page identifier to a decoder, or
// reports why it could not: CodePageInvalid for an identifier that is not
// a Windows code page at all, CodePageUnsupported for one this compiler
// simply has not implemented.
func LookupCodePage(id uint32) (encoding.Encoding, error) {
	if enc, ok := codePages[id]; ok {
		return enc, nil
	}
	if knownWindowsCodePages[id] {
		return nil, CodePageUnsupported
	}
	return nil, CodePageInvalid
}

// DecodeNarrowString decodes bytes from the given code page into a Go
// string of Unicode scalar values, applying that code page's replacement
// policy for invalid sequences (UTF-8: U+FFFD substitution; 1252: every
// byte value is defined, so decoding cannot fail).
func DecodeNarrowString(b []byte, codePage uint32) (string, error) {
	enc, err := LookupCodePage(codePage)
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeRuneWithLength decodes a single scalar value from b using
// codePage, returning the scalar and the number of input bytes it
// consumed, matching spec.md §4.2's "byte-length of the consumed input for
// position tracking" requirement. Windows-1252 is always one byte per
// scalar; UTF-8 is variable width and falls back to the Unicode
// replacement character U+FFFD on an invalid leading byte, consuming
// exactly one byte so the lexer always makes forward progress.
func DecodeRuneWithLength(b []byte, codePage uint32) (rune, int, error) {
	if len(b) == 0 {
		return 0, 0, errors.New("rc: empty buffer")
	}
	switch codePage {
	case 65001:
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			return utf8.RuneError, 1, nil
		}
		return r, size, nil
	case 1252:
		enc, err := LookupCodePage(codePage)
		if err != nil {
			return 0, 0, err
		}
		s, err := enc.NewDecoder().Bytes(b[:1])
		if err != nil {
			return 0, 0, err
		}
		r, _ := utf8.DecodeRuneInString(string(s))
		return r, 1, nil
	default:
		return 0, 0, CodePageInvalid
	}
}
