// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

// SourceSpan names the inclusive original-file line range a single
// post-preprocessor output line was produced from (spec.md §3 "Source
// mapping").
type SourceSpan struct {
	FilenameIndex int
	StartLine     int
	EndLine       int
}

// SourceMapping translates a post-preprocessor, post-pre-pass line number
// (1-based) back to the file and line range it came from. It is produced
// once, alongside the preprocessed source, and is read-only thereafter
// (spec.md §3 lifecycle; §9 design notes).
//
// Precomputing line boundaries up front, rather than re-scanning the
// source on every diagnostic, follows the same shape as the pack's
// sourcemap.SourceMap (wharflab-tally): an immutable value built once from
// the raw bytes and indexed by line number from then on.
type SourceMapping struct {
	filenames []string
	spans     []SourceSpan // spans[i] describes output line i+1
}

// NewSourceMapping builds an empty mapping; callers append spans as the
// preprocessor driver walks its own line-directive output.
func NewSourceMapping() *SourceMapping {
	return &SourceMapping{}
}

// filenameIndex returns the deduplicated index for name, registering it if
// this is the first time it is seen.
func (m *SourceMapping) filenameIndex(name string) int {
	for i, f := range m.filenames {
		if f == name {
			return i
		}
	}
	m.filenames = append(m.filenames, name)
	return len(m.filenames) - 1
}

// AddLine records that the next post-preprocessor output line originated
// from [startLine, endLine] (inclusive) of file.
func (m *SourceMapping) AddLine(file string, startLine, endLine int) {
	m.spans = append(m.spans, SourceSpan{
		FilenameIndex: m.filenameIndex(file),
		StartLine:     startLine,
		EndLine:       endLine,
	})
}

// Lookup returns the span for a 1-based output line number and whether it
// exists.
func (m *SourceMapping) Lookup(line int) (SourceSpan, bool) {
	if line < 1 || line > len(m.spans) {
		return SourceSpan{}, false
	}
	return m.spans[line-1], true
}

// Filename resolves a filename index recorded in a SourceSpan.
func (m *SourceMapping) Filename(index int) string {
	if index < 0 || index >= len(m.filenames) {
		return ""
	}
	return m.filenames[index]
}

// LineCount reports how many output lines this mapping covers.
func (m *SourceMapping) LineCount() int {
	return len(m.spans)
}
