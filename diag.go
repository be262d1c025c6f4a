// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

// DiagnosticKind distinguishes the three severities a Diagnostic can carry
// (spec.md §3).
type DiagnosticKind int

const (
	KindError DiagnosticKind = iota
	KindWarning
	KindNote
)

func (k DiagnosticKind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindWarning:
		return "warning"
	case KindNote:
		return "note"
	default:
		return "unknown"
	}
}

// ErrorCode is the closed taxonomy of lexical/parse/compile error
// conditions from spec.md §7.
type ErrorCode int

const (
	ErrUnfinishedStringLiteral ErrorCode = iota
	ErrStringLiteralTooLong
	ErrIllegalByte
	ErrIllegalByteOutsideStringLiterals
	ErrFoundCStyleEscapedQuote

	ErrUnfinishedRawDataBlock
	ErrUnfinishedStringTableBlock
	ErrExpectedToken
	ErrExpectedSomethingElse
	ErrResourceTypeCantUseRawData
	ErrIDMustBeOrdinal

	ErrStringResourceAsNumericType
	ErrStringAlreadyDefined
)

var errorCodeNames = map[ErrorCode]string{
	ErrUnfinishedStringLiteral:          "unfinished_string_literal",
	ErrStringLiteralTooLong:             "string_literal_too_long",
	ErrIllegalByte:                      "illegal_byte",
	ErrIllegalByteOutsideStringLiterals: "illegal_byte_outside_string_literals",
	ErrFoundCStyleEscapedQuote:          "found_c_style_escaped_quote",
	ErrUnfinishedRawDataBlock:           "unfinished_raw_data_block",
	ErrUnfinishedStringTableBlock:       "unfinished_string_table_block",
	ErrExpectedToken:                    "expected_token",
	ErrExpectedSomethingElse:            "expected_something_else",
	ErrResourceTypeCantUseRawData:       "resource_type_cant_use_raw_data",
	ErrIDMustBeOrdinal:                  "id_must_be_ordinal",
	ErrStringResourceAsNumericType:      "string_resource_as_numeric_type",
	ErrStringAlreadyDefined:             "string_already_defined",
}

func (c ErrorCode) String() string {
	if s, ok := errorCodeNames[c]; ok {
		return s
	}
	return "unknown_error"
}

// ExtraKind tags the discriminated union a token-based diagnostic's Extra
// payload carries (spec.md §3, §9 design notes: "implement as a sum type,
// not a struct with many optional fields").
type ExtraKind int

const (
	ExtraNone ExtraKind = iota
	ExtraExpectedTokenID
	ExtraInteger
	ExtraExpectedTypeSet
	ExtraResourceTypeTag
)

// Extra is the tagged union attached to a TokenDiagnostic. Only the field
// matching Kind is meaningful.
type Extra struct {
	Kind            ExtraKind
	ExpectedTokenID TokenID
	Integer         int64
	ExpectedTypeSet []TokenID
	ResourceTypeTag string
}

// TokenDiagnostic is the token-anchored diagnostic payload (spec.md §3).
type TokenDiagnostic struct {
	Code            ErrorCode
	Token           Token
	Extra           Extra
	PrintSourceLine bool
}

// ArgSpan names a sub-range of a single argv element for CLI diagnostics:
// the option prefix (`/`, `-`, `--`) length, the option-name length, and
// the byte offset within the argument where the value starts (0 if the
// diagnostic has no value part). PointAtNextArg is set when the thing
// being complained about is actually the *next* argv entry (spec.md §3).
type ArgSpan struct {
	PrefixLen      int
	NameLen        int
	ValueOffset    int
	PointAtNextArg bool
}

// CLIDiagnostic is the argv-anchored diagnostic payload (spec.md §3, §4.7).
type CLIDiagnostic struct {
	ArgIndex  int
	ArgSpan   ArgSpan
	Message   string
	PrintArgs bool
}

// Diagnostic is a single structured diagnostic record. Exactly one of
// Token or CLI is non-nil.
type Diagnostic struct {
	Kind  DiagnosticKind
	Token *TokenDiagnostic
	CLI   *CLIDiagnostic
}

// Diagnostics is an append-only collection shared by mutable reference
// across every pipeline stage (spec.md §4.6, §5). Rendering is a separate,
// deferred pass (see render.go).
type Diagnostics struct {
	records []Diagnostic
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Append records d in detection order.
func (d *Diagnostics) Append(diag Diagnostic) {
	d.records = append(d.records, diag)
}

// AppendToken is a convenience wrapper for the common token-diagnostic
// case with no Extra payload.
func (d *Diagnostics) AppendToken(kind DiagnosticKind, code ErrorCode, tok Token, printSourceLine bool) {
	d.Append(Diagnostic{
		Kind: kind,
		Token: &TokenDiagnostic{
			Code:            code,
			Token:           tok,
			PrintSourceLine: printSourceLine,
		},
	})
}

// AppendNote attaches a note to the diagnostic immediately preceding it in
// append order, matching spec.md §7: "Notes never stand alone".
func (d *Diagnostics) AppendNote(tok Token, printSourceLine bool, code ErrorCode) {
	d.AppendToken(KindNote, code, tok, printSourceLine)
}

// AppendCLI records a CLI-anchored diagnostic.
func (d *Diagnostics) AppendCLI(kind DiagnosticKind, argIndex int, span ArgSpan, message string, printArgs bool) {
	d.Append(Diagnostic{
		Kind: kind,
		CLI: &CLIDiagnostic{
			ArgIndex:  argIndex,
			ArgSpan:   span,
			Message:   message,
			PrintArgs: printArgs,
		},
	})
}

// Records returns every diagnostic appended so far, in append order.
func (d *Diagnostics) Records() []Diagnostic {
	return d.records
}

// HasErrors reports whether any KindError diagnostic was recorded
// (spec.md §4.7 exit codes, §7 "any error-kind diagnostic causes a
// non-zero exit and suppresses writing the output file").
func (d *Diagnostics) HasErrors() bool {
	for _, r := range d.records {
		if r.Kind == KindError {
			return true
		}
	}
	return false
}
