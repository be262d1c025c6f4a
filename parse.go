// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"strconv"
	"strings"
)

// Parser builds an AST of resource definitions from a token stream
// (spec.md §4.4). It is not a uniform grammar: after reading a
// ResourceDef's name and type it dispatches to a per-resource-type body
// parser.
type Parser struct {
	source   []byte
	lexer    *Lexer
	diags    *Diagnostics
	codePage uint32

	tok     Token // current lookahead
	numeric bool  // whether the next lex should fuse unary '-' into a number

	lastNumericToken Token // token the most recent numeric leaf was lexed from
}

// NewParser constructs a Parser over a post-comment-pre-pass source
// buffer and the code page active at the start of the file.
func NewParser(source []byte, codePage uint32, maxStringLiteralCodepoints int, diags *Diagnostics) *Parser {
	p := &Parser{
		source:   source,
		lexer:    NewLexer(source, codePage, maxStringLiteralCodepoints, diags),
		diags:    diags,
		codePage: codePage,
	}
	p.advance()
	return p
}

func (p *Parser) advance() {
	p.tok = p.lexer.Next(p.numeric)
}

// advanceNumeric advances lookahead in numeric-expression context, so a
// leading '-' fuses into the following literal (spec.md §4.3).
func (p *Parser) advanceNumeric() {
	p.numeric = true
	p.tok = p.lexer.Next(true)
	p.numeric = false
}

func (p *Parser) text(tok Token) []byte { return tok.Text(p.source) }

func (p *Parser) expectedToken(want TokenID) {
	extra := Extra{Kind: ExtraExpectedTokenID, ExpectedTokenID: want}
	p.diags.Append(Diagnostic{
		Kind: KindError,
		Token: &TokenDiagnostic{
			Code:            ErrExpectedToken,
			Token:           p.tok,
			Extra:           extra,
			PrintSourceLine: true,
		},
	})
}

func (p *Parser) expectedSomethingElse(message string) {
	p.diags.AppendToken(KindError, ErrExpectedSomethingElse, p.tok, true)
	_ = message
}

// eat consumes the current token if it matches id, reporting
// expected_token and leaving the cursor in place otherwise.
func (p *Parser) eat(id TokenID) (Token, bool) {
	if p.tok.ID == id {
		t := p.tok
		p.advance()
		return t, true
	}
	p.expectedToken(id)
	return p.tok, false
}

// resync skips tokens until a statement boundary is reached: the next
// CloseBrace/End at the current nesting depth, or EOF (spec.md §4.4
// "Error recovery").
func (p *Parser) resync() {
	depth := 0
	for {
		switch p.tok.ID {
		case TokEOF:
			return
		case TokOpenBrace, TokBegin:
			depth++
		case TokCloseBrace, TokEnd:
			if depth == 0 {
				return
			}
			depth--
		}
		p.advance()
	}
}

func lowerKeyword(text []byte) string {
	return strings.ToLower(string(text))
}

// ParseFile parses an entire post-comment-pre-pass source buffer into an
// RCFile AST (spec.md §4.4 "File = { ResourceDef | Preamble } EOF").
func ParseFile(source []byte, codePage uint32, maxStringLiteralCodepoints int, diags *Diagnostics) *RCFile {
	p := NewParser(source, codePage, maxStringLiteralCodepoints, diags)
	file := &RCFile{}

	for p.tok.ID != TokEOF {
		item, ok := p.parseFileItem()
		if !ok {
			p.resync()
			if p.tok.ID != TokEOF {
				p.advance()
			}
			continue
		}
		file.Items = append(file.Items, item)
	}

	return file
}

// parseFileItem parses one top-level preamble statement or resource
// definition.
func (p *Parser) parseFileItem() (FileItem, bool) {
	if p.tok.ID != TokIdentifier {
		// A bare preamble keyword standing in "name position" is the only
		// other legal production; anything else at the top level is a
		// parse error.
		p.expectedSomethingElse("resource name or preamble statement")
		return FileItem{}, false
	}

	kw := lowerKeyword(p.text(p.tok))
	if preambleKeywords[kw] {
		stmt, ok := p.parsePreamble(kw)
		if !ok {
			return FileItem{}, false
		}
		return FileItem{Preamble: stmt}, true
	}

	def, ok := p.parseResourceDef()
	if !ok {
		return FileItem{}, false
	}
	return FileItem{Resource: def}, true
}

func (p *Parser) parsePreamble(kw string) (*PreambleStmt, bool) {
	p.advance() // consume keyword
	switch kw {
	case "language":
		lang, ok := p.parseLanguageArgs()
		if !ok {
			return nil, false
		}
		return &PreambleStmt{Language: &lang}, true
	case "version":
		v, ok := p.parseNumericExpr()
		if !ok {
			return nil, false
		}
		val := v.Eval()
		return &PreambleStmt{Version: &val}, true
	case "characteristics":
		v, ok := p.parseNumericExpr()
		if !ok {
			return nil, false
		}
		val := v.Eval()
		return &PreambleStmt{Characteristics: &val}, true
	default:
		return nil, false
	}
}

// parseLanguageArgs parses the `primary, sub` pair after a LANGUAGE
// keyword (spec.md §4.5).
func (p *Parser) parseLanguageArgs() (LanguageStmt, bool) {
	primary, ok := p.parseNumericExpr()
	if !ok {
		return LanguageStmt{}, false
	}
	if _, ok := p.eat(TokComma); !ok {
		return LanguageStmt{}, false
	}
	sub, ok := p.parseNumericExpr()
	if !ok {
		return LanguageStmt{}, false
	}
	return LanguageStmt{Primary: uint16(primary.Eval()), Sub: uint16(sub.Eval())}, true
}

// parseNameOrOrdinal parses a resource NameId: either a quoted/bare
// identifier string or a numeric ordinal.
func (p *Parser) parseNameOrOrdinal() (NameOrOrdinal, bool) {
	switch p.tok.ID {
	case TokLiteralNumber:
		n := ParseRCNumber(p.text(p.tok))
		p.advance()
		return NameOrOrdinal{IsOrdinal: true, Ordinal: uint16(n)}, true
	case TokIdentifier:
		name := string(p.text(p.tok))
		p.advance()
		return NameOrOrdinal{Name: name}, true
	case TokQuotedASCIIString, TokQuotedWideString:
		name := p.decodeCurrentString()
		p.advance()
		return NameOrOrdinal{Name: name}, true
	default:
		p.expectedSomethingElse("resource name")
		return NameOrOrdinal{}, false
	}
}

// parseResourceDef parses `NameId TypeId CommonOpts Body`
// (spec.md §4.4).
func (p *Parser) parseResourceDef() (*ResourceDef, bool) {
	nameTok := p.tok
	if p.tok.ID == TokIdentifier && lowerKeyword(p.text(p.tok)) == "stringtable" {
		// A leading STRINGTABLE keyword starts a nameless string table:
		// its entries carry their own ids.
		p.advance()
		typeRef := ResourceTypeRef{Keyword: "stringtable"}
		common := p.parseCommonOpts(typeRef)
		body, ok := p.parseBody(typeRef)
		if !ok {
			return nil, false
		}
		return &ResourceDef{Type: typeRef, Common: common, Body: body, NameToken: nameTok, TypeToken: nameTok}, true
	}
	name, ok := p.parseNameOrOrdinal()
	if !ok {
		return nil, false
	}

	typeTok := p.tok
	typeRef, ok := p.parseResourceType()
	if !ok {
		return nil, false
	}

	common := p.parseCommonOpts(typeRef)

	body, ok := p.parseBody(typeRef)
	if !ok {
		return nil, false
	}

	if requiresOrdinalID(typeRef) && !name.IsOrdinal {
		p.diags.AppendToken(KindError, ErrIDMustBeOrdinal, nameTok, true)
	}

	return &ResourceDef{
		Name:      name,
		Type:      typeRef,
		Common:    common,
		Body:      body,
		NameToken: nameTok,
		TypeToken: typeTok,
	}, true
}

// requiresOrdinalID reports the fixed set of resource types that must be
// identified by numeric ordinal (spec.md §4.4 "Some types require their
// id be an ordinal u16").
func requiresOrdinalID(t ResourceTypeRef) bool {
	switch t.Keyword {
	case "stringtable":
		return true
	default:
		return false
	}
}

// resourceTypesForbidRawData is the fixed set naming
// resource_type_cant_use_raw_data (spec.md §4.4). Each of these keywords
// has its own case in parseBody; of them, only DIALOG/DIALOGEX reports the
// error, when a block opens where the dialog's coordinates belong.
var resourceTypesForbidRawData = map[string]bool{
	"dialog": true, "dialogex": true,
	"menu": true, "menuex": true,
	"stringtable":  true,
	"accelerators": true,
	"versioninfo":  true,
}

func (p *Parser) parseResourceType() (ResourceTypeRef, bool) {
	switch p.tok.ID {
	case TokLiteralNumber:
		// RT_STRING (6) may never be used as an explicit numeric type tag
		// (spec.md §4.5 "Numeric special case").
		n := ParseRCNumber(p.text(p.tok))
		tok := p.tok
		p.advance()
		if n == 6 {
			p.diags.AppendToken(KindError, ErrStringResourceAsNumericType, tok, true)
		}
		return ResourceTypeRef{IsOrdinal: true, Ordinal: uint16(n)}, true
	case TokIdentifier:
		text := p.text(p.tok)
		kw := lowerKeyword(text)
		p.advance()
		if resourceTypeKeywords[kw] {
			return ResourceTypeRef{Keyword: kw}, true
		}
		return ResourceTypeRef{CustomName: string(text)}, true
	default:
		p.expectedSomethingElse("resource type")
		return ResourceTypeRef{}, false
	}
}

// memoryFlagKeywords map an uppercase RC keyword to the bit it sets
// (PRELOAD/LOADONCALL and FIXED/MOVEABLE/DISCARDABLE/PURE/IMPURE/SHARED
// are mutually exclusive pairs in rc.exe but we simply accumulate bits the
// way the reference compiler's tokenizer does, leaving validation of
// mutual exclusivity out of scope).
var memoryFlagKeywords = map[string]uint16{
	"preload":    0x0040,
	"loadoncall": 0x0000,
	"fixed":      0x0000,
	"moveable":   0x0010,
	"pure":       0x0020,
	"impure":     0x0000,
	"discardable": 0x1000,
	"shared":     0x0020,
}

// parseCommonOpts parses the optional clauses between a resource's type
// and its body: LANGUAGE/CHARACTERISTICS/VERSION overrides and Win32
// memory-flag keywords.
func (p *Parser) parseCommonOpts(t ResourceTypeRef) CommonOpts {
	var common CommonOpts
	for {
		if p.tok.ID != TokIdentifier {
			break
		}
		kw := lowerKeyword(p.text(p.tok))
		switch {
		case kw == "language":
			p.advance()
			lang, ok := p.parseLanguageArgs()
			if !ok {
				return common
			}
			common.Language = &lang
		case kw == "characteristics":
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return common
			}
			val := v.Eval()
			common.Characteristics = &val
		case kw == "version":
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return common
			}
			val := v.Eval()
			common.Version = &val
		case memoryFlagKeywordKnown(kw):
			common.MemoryFlags |= memoryFlagKeywords[kw]
			common.MemoryFlagsSet = true
			p.advance()
		default:
			return common
		}
	}
	return common
}

func memoryFlagKeywordKnown(kw string) bool {
	_, ok := memoryFlagKeywords[kw]
	return ok
}

// parseBody dispatches to the per-resource-type body grammar
// (spec.md §4.4 "Dispatch by resource type").
func (p *Parser) parseBody(t ResourceTypeRef) (Body, bool) {
	if t.IsOrdinal {
		return p.parseRawDataBody()
	}

	switch t.Keyword {
	case "dialog", "dialogex":
		if p.atBlockOpen() {
			// A dialog body starts with its coordinates; a block here is raw data.
			p.diags.AppendToken(KindError, ErrResourceTypeCantUseRawData, p.tok, true)
			return nil, false
		}
		return p.parseDialogBody(t.Keyword == "dialogex")
	case "menu", "menuex":
		return p.parseMenuBody(t.Keyword == "menuex")
	case "stringtable":
		return p.parseStringTableBody()
	case "accelerators":
		return p.parseAcceleratorsBody()
	case "versioninfo":
		return p.parseVersionInfoBody()
	case "icon", "cursor", "bitmap", "font", "messagetable", "html", "manifest":
		return p.parseFileBody()
	default:
		if resourceTypesForbidRawData[t.Keyword] {
			p.diags.AppendToken(KindError, ErrResourceTypeCantUseRawData, p.tok, true)
			return nil, false
		}
		return p.parseRawDataBody()
	}
}

func (p *Parser) parseFileBody() (Body, bool) {
	if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
		p.expectedSomethingElse("quoted filename")
		return nil, false
	}
	path := p.decodeCurrentString()
	p.advance()
	return &FileBody{Path: path}, true
}

// atBlockOpen/atBlockClose report whether the current token opens/closes a block;
// BEGIN/{ and END/} are interchangeable (spec.md §4.4 "Blocks").
func (p *Parser) atBlockOpen() bool  { return p.tok.ID == TokOpenBrace || p.tok.ID == TokBegin }
func (p *Parser) atBlockClose() bool { return p.tok.ID == TokCloseBrace || p.tok.ID == TokEnd }

// atKeyword reports whether the current token is the identifier kw,
// compared case-insensitively. Restricted to blockKeywords since that's
// the only keyword set callers currently test this way (VERSIONINFO's
// BLOCK/VALUE statements, spec.md §4.5).
func (p *Parser) atKeyword(kw string) bool {
	return blockKeywords[kw] && p.tok.ID == TokIdentifier && lowerKeyword(p.text(p.tok)) == kw
}

// parseRawDataBody parses a BEGIN/{ ... END/} block of comma-or-whitespace
// separated numbers and strings (spec.md §4.4, §4.5).
func (p *Parser) parseRawDataBody() (Body, bool) {
	openTok := p.tok
	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return nil, false
	}
	p.advance()

	body := &RawDataBody{}
	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			p.diags.AppendToken(KindError, ErrUnfinishedRawDataBlock, openTok, true)
			return body, true
		}
		item, ok := p.parseRawDataItem()
		if !ok {
			p.resync()
			break
		}
		body.Items = append(body.Items, item)
		if p.tok.ID == TokComma {
			p.advance()
		}
	}
	if p.atBlockClose() {
		p.advance()
	}
	return body, true
}

func (p *Parser) parseRawDataItem() (RawDataItem, bool) {
	switch p.tok.ID {
	case TokQuotedASCIIString, TokQuotedWideString:
		wide := p.tok.ID == TokQuotedWideString
		text := p.decodeCurrentString()
		p.advance()
		return RawDataItem{IsString: true, Wide: wide, Text: text}, true
	default:
		expr, ok := p.parseNumericExpr()
		if !ok {
			return RawDataItem{}, false
		}
		raw := string(p.text(p.lastNumericToken))
		isLong := strings.ContainsAny(raw, "Ll")
		return RawDataItem{Number: expr.Eval(), IsLong: isLong}, true
	}
}

// --- Expression grammar (spec.md §4.4) ---

// parseNumericExpr parses a u32 expression: binary + & | , unary - ~,
// parentheses, and integer literals (spec.md §4.4).
func (p *Parser) parseNumericExpr() (*Expr, bool) {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (*Expr, bool) {
	left, ok := p.parseAndExpr()
	if !ok {
		return nil, false
	}
	children := []*Expr{left}
	for p.tok.ID == TokPipe {
		p.advance()
		right, ok := p.parseAndExpr()
		if !ok {
			return nil, false
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, true
	}
	return &Expr{Op: OpOr, Children: children}, true
}

func (p *Parser) parseAndExpr() (*Expr, bool) {
	left, ok := p.parseAddExpr()
	if !ok {
		return nil, false
	}
	children := []*Expr{left}
	for p.tok.ID == TokAmpersand {
		p.advance()
		right, ok := p.parseAddExpr()
		if !ok {
			return nil, false
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, true
	}
	return &Expr{Op: OpAnd, Children: children}, true
}

func (p *Parser) parseAddExpr() (*Expr, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return nil, false
	}
	children := []*Expr{left}
	for p.tok.ID == TokPlus {
		p.advance()
		right, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}
		children = append(children, right)
	}
	if len(children) == 1 {
		return left, true
	}
	return &Expr{Op: OpAdd, Children: children}, true
}

func (p *Parser) parseUnaryExpr() (*Expr, bool) {
	switch p.tok.ID {
	case TokTilde:
		p.advance()
		inner, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}
		return &Expr{Op: OpNot, Children: []*Expr{inner}}, true
	case TokMinus:
		p.advance()
		inner, ok := p.parseUnaryExpr()
		if !ok {
			return nil, false
		}
		return &Expr{Op: OpNeg, Children: []*Expr{inner}}, true
	default:
		return p.parsePrimaryExpr()
	}
}

func (p *Parser) parsePrimaryExpr() (*Expr, bool) {
	switch p.tok.ID {
	case TokLeftParen:
		p.advance()
		inner, ok := p.parseOrExpr()
		if !ok {
			return nil, false
		}
		if _, ok := p.eat(TokRightParen); !ok {
			return nil, false
		}
		return inner, true
	case TokLiteralNumber:
		p.lastNumericToken = p.tok
		v := ParseRCNumber(p.text(p.tok))
		p.advanceNumeric()
		return &Expr{Value: v}, true
	default:
		p.expectedSomethingElse("numeric expression")
		return nil, false
	}
}

// decodeCurrentString decodes p.tok (a quoted string token) per spec.md
// §4.3 RC escapes and §4.2 code page rules.
func (p *Parser) decodeCurrentString() string {
	return decodeRCString(p.text(p.tok), p.tok.ID == TokQuotedWideString, p.codePage)
}

// decodeRCString turns a raw `"..."`/`L"..."` token slice into its decoded
// string value: `""` collapses to a literal quote, backslash escapes
// resolve, `\"` (already diagnosed at lex time) is treated as a literal
// quote for recovery purposes, and narrow literals run through the active
// code page.
func decodeRCString(raw []byte, wide bool, codePage uint32) string {
	s := raw
	if wide {
		s = s[1:] // drop leading L
	}
	if len(s) >= 2 {
		s = s[1 : len(s)-1] // drop surrounding quotes
	}

	var out []byte
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '"' && i+1 < len(s) && s[i+1] == '"':
			out = append(out, '"')
			i++
		case b == '\\' && i+1 < len(s):
			n, consumed := decodeEscape(s[i:])
			out = append(out, n...)
			i += consumed - 1
		default:
			out = append(out, b)
		}
	}

	if wide {
		return string(out) // already raw bytes of the literal; no code page for L-strings
	}
	decoded, err := DecodeNarrowString(out, codePage)
	if err != nil {
		return string(out)
	}
	return decoded
}

// decodeEscape decodes a single backslash escape starting at s[0]=='\\',
// returning its replacement bytes and how many input bytes it consumed.
func decodeEscape(s []byte) ([]byte, int) {
	if len(s) < 2 {
		return []byte{'\\'}, 1
	}
	switch s[1] {
	case 't':
		return []byte{'\t'}, 2
	case 'n':
		return []byte{'\n'}, 2
	case 'a':
		return []byte{'\a'}, 2
	case 'r':
		return []byte{'\r'}, 2
	case '\\':
		return []byte{'\\'}, 2
	case '"':
		// Never valid RC syntax (already flagged found_c_style_escaped_quote
		// at lex time); decode as a literal quote for error recovery.
		return []byte{'"'}, 2
	case 'x', 'X':
		j := 2
		for j < len(s) && isHexDigit(s[j]) {
			j++
		}
		if j == 2 {
			return []byte{s[1]}, 2
		}
		v, _ := strconv.ParseUint(string(s[2:j]), 16, 32)
		return []byte(string(rune(v))), j
	case '0', '1', '2', '3', '4', '5', '6', '7':
		j := 1
		for j < len(s) && j < 4 && isOctalDigit(s[j]) {
			j++
		}
		v, _ := strconv.ParseUint(string(s[1:j]), 8, 32)
		return []byte(string(rune(v))), j
	default:
		return []byte{s[1]}, 2
	}
}
