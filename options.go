// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"github.com/go-kratos/kratos/v2/log"
)

// SymbolState records whether a preprocessor symbol was defined or
// undefined on the command line. Undefine is sticky (spec.md §3, §4.7):
// once a symbol is undefined, later /D of the same symbol is ignored.
type SymbolState int

const (
	// SymbolDefined marks a symbol registered through /D.
	SymbolDefined SymbolState = iota
	// SymbolUndefined marks a symbol registered through /U. Sticky.
	SymbolUndefined
)

// DefaultMaxStringLiteralCodepoints is the /SL 100 boundary: 100% of 8192.
const DefaultMaxStringLiteralCodepoints = 8192

// Options holds the compiled-down CLI configuration that drives the
// pipeline (spec.md §3 "CLI options", §4.7). It plays the role the
// teacher's pe.Options plays for the PE parser: a plain value built once by
// the front-end and threaded, read-only, through every stage.
type Options struct {
	// InputFilename is the single required positional argument.
	InputFilename string

	// OutputFilename defaults to InputFilename's directory+stem+".res".
	OutputFilename string

	// ExtraIncludePaths are appended search paths from repeated /I.
	ExtraIncludePaths []string

	// IgnoreIncludeEnv corresponds to /x: do not consult INCLUDE.
	IgnoreIncludeEnv bool

	// Preprocess is false under /no-preprocess (the preprocessing pass
	// itself is out of scope, spec.md §1; this only gates whether the
	// front-end attempts to invoke one).
	Preprocess bool

	// DefaultLanguage is the LANGID applied to resources that do not
	// specify their own LANGUAGE statement.
	DefaultLanguage uint16

	// DefaultCodePage is the code page identifier used to decode narrow
	// string literals absent a #pragma code_page override.
	DefaultCodePage uint32

	// Verbose corresponds to /v.
	Verbose bool

	// Symbols maps preprocessor symbol name to define/undefine state.
	Symbols map[string]SymbolState

	// MaxStringLiteralCodepoints is computed from /SL's percent argument.
	MaxStringLiteralCodepoints int

	// NullTerminateStringTableStrings corresponds to /n.
	NullTerminateStringTableStrings bool

	// SilenceDuplicateControlIDWarnings corresponds to /y.
	SilenceDuplicateControlIDWarnings bool

	// WarnOnInvalidCodePage corresponds to /w: demote invalid code page to
	// a warning instead of an error.
	WarnOnInvalidCodePage bool

	// NoLogo suppresses the banner (compatibility toggle, no behavioral
	// effect on compilation).
	NoLogo bool

	// Logger receives progress/diagnostic-adjacent trace messages; it is
	// never the channel for user-facing diagnostics (see Diagnostics).
	Logger log.Logger
}

// NewOptions returns an Options populated with rc.exe-compatible defaults:
// preprocessing on, code page 1252, /SL 100. DefaultLanguage is left 0,
// which Compile replaces with DefaultLANGID (en-US).
func NewOptions() *Options {
	return &Options{
		Preprocess:                 true,
		DefaultCodePage:            1252,
		Symbols:                    make(map[string]SymbolState),
		MaxStringLiteralCodepoints: DefaultMaxStringLiteralCodepoints,
	}
}

// Define registers symbol as defined unless it was previously undefined
// (sticky undefine, spec.md §3 invariants, §8 boundary behavior).
func (o *Options) Define(symbol string) {
	if state, ok := o.Symbols[symbol]; ok && state == SymbolUndefined {
		return
	}
	o.Symbols[symbol] = SymbolDefined
}

// Undefine registers symbol as undefined, overriding any prior or future
// /D of the same symbol.
func (o *Options) Undefine(symbol string) {
	o.Symbols[symbol] = SymbolUndefined
}

// helper returns a *log.Helper bound to Options.Logger, defaulting to a
// filtered std logger the way file.go's New does for pe.Options.
func (o *Options) helper() *log.Helper {
	if o.Logger == nil {
		return newLogger(o.Verbose)
	}
	return log.NewHelper(o.Logger)
}
