// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "testing"

func TestRemoveComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		out  string
	}{
		{"line comment dropped, newline kept", "//c\nA RCDATA {1}", "\nA RCDATA {1}"},
		{"same line block comment vanishes", "blah/**/blah", "blahblah"},
		{"multi line block collapses to space", "blah/*\n*/blah", "blah blah"},
		{"string literal inert to markers", `"a // b /* c */"`, `"a // b /* c */"`},
		{"char literal inert to markers", `'//'`, `'//'`},
		{"escaped quote stays in literal", `"a\"b"//c`, `"a\"b"`},
		{"newline ends literal early", "\"a\nb\"", "\"a\nb\""},
		{"crlf line comment preserves crlf", "//c\r\nA", "\r\nA"},
		{"nested-looking stars stay in block", "/*** hi **/x", "x"},
		{"trailing slash at eof", "a/", "a/"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RemoveComments([]byte(tt.in)))
			if got != tt.out {
				t.Errorf("RemoveComments(%q) = %q, want %q", tt.in, got, tt.out)
			}
		})
	}
}

func TestRemoveCommentsNeverGrows(t *testing.T) {
	inputs := []string{
		"//\n", "/**/", "/*\n\n\n*/", `"\\\\"`, "plain text", "/*/",
	}
	for _, in := range inputs {
		out := RemoveComments([]byte(in))
		if len(out) > len(in) {
			t.Errorf("RemoveComments(%q) grew: len(out)=%d > len(in)=%d", in, len(out), len(in))
		}
	}
}

func TestRemoveCommentsIdempotent(t *testing.T) {
	in := "foo // bar\nbaz /* qux\nquux */ end"
	once := RemoveComments([]byte(in))
	twice := RemoveComments(once)
	if string(once) != string(twice) {
		t.Errorf("RemoveComments not idempotent: once=%q twice=%q", once, twice)
	}
}

func TestRemoveCommentsPreservesNewlinesOutsideBlockComments(t *testing.T) {
	in := "a\nb // c\nd /* e\nf */ g\nh"
	out := RemoveComments([]byte(in))
	count := func(b []byte) int {
		n := 0
		for _, c := range b {
			if c == '\n' {
				n++
			}
		}
		return n
	}
	// Every newline survives except the one inside the multi-line block
	// comment, which collapses to a single space.
	if want := count([]byte(in)) - 1; count(out) != want {
		t.Errorf("newline count: in=%d out=%d, want out=%d", count([]byte(in)), count(out), want)
	}
}
