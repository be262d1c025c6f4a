// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

// commentState is the FSM state driving RemoveComments (spec.md §4.1).
type commentState int

const (
	csStart commentState = iota
	csSawSlash
	csLineComment
	csBlockComment
	csBlockCommentStar
	csInSQ
	csInSQEsc
	csInDQ
	csInDQEsc
)

// RemoveComments strips `//` and `/* */` comments from source the way the
// reference RC compiler's comment pass does: string/char literal aware,
// byte-oriented (safe under every supported code page because every
// state-driving byte is ASCII and stays ASCII across code pages), total
// (never fails), and never grows its input.
//
// Semantics (spec.md §4.1):
//   - `//` drops bytes up to but not including the terminating newline;
//     a `\r` directly before that newline is kept as well.
//   - `/* ... */` drops the whole run; collapses to a single space if it
//     spanned at least one newline, otherwise disappears entirely.
//   - Comment markers are inert inside `"..."`/`'...'` literals; `\` escapes
//     the following byte; a bare newline inside a literal resets to csStart,
//     matching the reference compiler's lexical-layer literal termination.
//   - A lone `\r` is never treated as a newline.
func RemoveComments(source []byte) []byte {
	out := make([]byte, 0, len(source))
	state := csStart
	blockHadNewline := false

	for i := 0; i < len(source); i++ {
		b := source[i]

		switch state {
		case csStart:
			switch b {
			case '/':
				state = csSawSlash
			case '"':
				out = append(out, b)
				state = csInDQ
			case '\'':
				out = append(out, b)
				state = csInSQ
			default:
				out = append(out, b)
			}

		case csSawSlash:
			switch b {
			case '/':
				state = csLineComment
			case '*':
				blockHadNewline = false
				state = csBlockComment
			case '"':
				out = append(out, '/', b)
				state = csInDQ
			case '\'':
				out = append(out, '/', b)
				state = csInSQ
			default:
				out = append(out, '/', b)
				state = csStart
			}

		case csLineComment:
			switch {
			case b == '\n':
				out = append(out, b)
				state = csStart
			case b == '\r' && i+1 < len(source) && source[i+1] == '\n':
				// a \r directly before the terminating newline is kept
				out = append(out, b)
			}
			// everything else, including a lone \r, is dropped

		case csBlockComment:
			if b == '\n' {
				blockHadNewline = true
			}
			if b == '*' {
				state = csBlockCommentStar
			}

		case csBlockCommentStar:
			switch b {
			case '/':
				if blockHadNewline {
					out = append(out, ' ')
				}
				state = csStart
			case '*':
				// stay in csBlockCommentStar; the run of '*' keeps looking
				// for a following '/'
			case '\n':
				blockHadNewline = true
				state = csBlockComment
			default:
				state = csBlockComment
			}

		case csInSQ:
			switch b {
			case '\\':
				out = append(out, b)
				state = csInSQEsc
			case '\'', '\n':
				out = append(out, b)
				state = csStart
			default:
				out = append(out, b)
			}

		case csInSQEsc:
			out = append(out, b)
			state = csInSQ

		case csInDQ:
			switch b {
			case '\\':
				out = append(out, b)
				state = csInDQEsc
			case '"', '\n':
				out = append(out, b)
				state = csStart
			default:
				out = append(out, b)
			}

		case csInDQEsc:
			out = append(out, b)
			state = csInDQ
		}
	}

	// A lone '/' at EOF never resolved into a comment opener or anything
	// else; it is ordinary source text and must be flushed.
	if state == csSawSlash {
		out = append(out, '/')
	}

	return out
}
