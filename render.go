// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
	"github.com/stephens2424/writerset"
)

// Renderer formats Diagnostics to one or more writers, abstracting over
// whether the destination can take ANSI color (spec.md §4.6, §9 design
// notes: "abstract over writer with ANSI capability rather than
// special-casing os.Stderr"). Multiple sinks (stderr plus, say, a log
// file) are broadcast to together via writerset, the same fan-out
// primitive the teacher's own indirect dependency graph already carries.
type Renderer struct {
	sinks  *writerset.WriterSet
	source []byte
	mapping *SourceMapping
	profile termenv.Profile
}

// NewRenderer constructs a Renderer over the post-comment-pre-pass
// source buffer (for caret/tilde underlines) and its SourceMapping (for
// `<after preprocessor>:L:C:`-to-original-file translation).
func NewRenderer(source []byte, mapping *SourceMapping, profile termenv.Profile) *Renderer {
	return &Renderer{
		sinks:   writerset.New(),
		source:  source,
		mapping: mapping,
		profile: profile,
	}
}

// AddSink registers an additional destination writer.
func (r *Renderer) AddSink(w io.Writer) { r.sinks.Add(w) }

// Render writes every diagnostic in diags, in append order, prefixed per
// spec.md §4.6: `<filename>:line:col: error: message` for token
// diagnostics (or `<cli>:` for CLI diagnostics), followed by an optional
// source line and a caret/tilde underline.
func (r *Renderer) Render(diags *Diagnostics) {
	bw := bufio.NewWriter(r.sinks)
	defer bw.Flush()

	for i, rec := range diags.Records() {
		r.renderOne(bw, rec, i > 0)
	}
}

func (r *Renderer) renderOne(w io.Writer, rec Diagnostic, precededByAnother bool) {
	kindStyle := r.styleFor(rec.Kind)

	switch {
	case rec.Token != nil:
		td := rec.Token
		filename, line, col := "<after preprocessor>", int(td.Token.Line), r.columnOf(td.Token)
		if r.mapping != nil {
			if span, ok := r.mapping.Lookup(int(td.Token.Line)); ok {
				filename = r.mapping.Filename(span.FilenameIndex)
				line = span.StartLine
			}
		}
		fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", filename, line, col, kindStyle, td.Code.String())
		if td.PrintSourceLine {
			r.printSourceLine(w, td.Token)
		}

	case rec.CLI != nil:
		cd := rec.CLI
		fmt.Fprintf(w, "<cli>: %s: %s\n", kindStyle, cd.Message)
	}
}

func (r *Renderer) styleFor(kind DiagnosticKind) string {
	s := r.profile.String(kind.String())
	switch kind {
	case KindError:
		return s.Foreground(r.profile.Color("9")).String()
	case KindWarning:
		return s.Foreground(r.profile.Color("11")).String()
	default:
		return s.Foreground(r.profile.Color("14")).String()
	}
}

// columnOf computes a token's 1-based column within its own source line.
func (r *Renderer) columnOf(tok Token) int {
	start := tok.Start
	for start > 0 && r.source[start-1] != '\n' {
		start--
	}
	return int(tok.Start-start) + 1
}

// printSourceLine emits the offending source line plus a caret/tilde
// underline spanning the token (spec.md §4.6 "source line + underline").
func (r *Renderer) printSourceLine(w io.Writer, tok Token) {
	start := tok.Start
	for start > 0 && r.source[start-1] != '\n' {
		start--
	}
	end := tok.End
	for end < uint32(len(r.source)) && r.source[end] != '\n' {
		end++
	}
	line := string(r.source[start:end])
	fmt.Fprintf(w, "  %s\n", line)

	pad := strings.Repeat(" ", int(tok.Start-start))
	width := int(tok.End - tok.Start)
	if width <= 0 {
		width = 1
	}
	underline := "^" + strings.Repeat("~", width-1)
	fmt.Fprintf(w, "  %s%s\n", pad, underline)
}
