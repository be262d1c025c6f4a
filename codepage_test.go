// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "testing"

func TestLookupCodePage(t *testing.T) {
	if _, err := LookupCodePage(65001); err != nil {
		t.Fatalf("LookupCodePage(65001) unexpected error: %v", err)
	}
	if _, err := LookupCodePage(1252); err != nil {
		t.Fatalf("LookupCodePage(1252) unexpected error: %v", err)
	}
	if _, err := LookupCodePage(932); err != CodePageUnsupported {
		t.Fatalf("LookupCodePage(932) = %v, want CodePageUnsupported", err)
	}
	if _, err := LookupCodePage(999999); err != CodePageInvalid {
		t.Fatalf("LookupCodePage(999999) = %v, want CodePageInvalid", err)
	}
}

func TestDecodeNarrowStringUTF8(t *testing.T) {
	got, err := DecodeNarrowString([]byte("abc"), 65001)
	if err != nil {
		t.Fatal(err)
	}
	if got != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeRuneWithLength(t *testing.T) {
	r, n, err := DecodeRuneWithLength([]byte("A"), 1252)
	if err != nil || r != 'A' || n != 1 {
		t.Fatalf("got %q %d %v", r, n, err)
	}

	// multi-byte UTF-8 rune
	r, n, err = DecodeRuneWithLength([]byte("\xe2\x82\xac"), 65001) // €
	if err != nil || r != '€' || n != 3 {
		t.Fatalf("got %q %d %v", r, n, err)
	}

	// invalid UTF-8 leading byte always advances by 1
	r, n, err = DecodeRuneWithLength([]byte{0xff}, 65001)
	if err != nil || n != 1 {
		t.Fatalf("got %q %d %v", r, n, err)
	}
}
