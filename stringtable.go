// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
	"sort"
	"unicode/utf16"
)

// parseStringTableBody parses a STRINGTABLE body: a sequence of
// `id "value"` pairs inside one BEGIN/END block (spec.md §4.5 "String
// tables").
func (p *Parser) parseStringTableBody() (Body, bool) {
	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return nil, false
	}
	openTok := p.tok
	p.advance()

	body := &StringTableBody{}
	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			p.diags.AppendToken(KindError, ErrUnfinishedStringTableBlock, openTok, true)
			return body, true
		}
		idTok := p.tok
		id, ok := p.parseNumericExpr()
		if !ok {
			p.resync()
			break
		}
		if p.tok.ID == TokComma {
			p.advance()
		}
		textTok := p.tok
		if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
			p.expectedSomethingElse("string table value")
			p.resync()
			break
		}
		text := p.decodeCurrentString()
		p.advance()

		body.Entries = append(body.Entries, StringTableEntry{
			ID:        id.Eval(),
			Text:      text,
			IDToken:   idTok,
			TextToken: textTok,
		})
	}
	if p.atBlockClose() {
		p.advance()
	}
	return body, true
}

// stringTableBundle is the compiled form of one (language, id>>4) group:
// 16 consecutive u16-length-prefixed UTF-16LE strings, empty slots
// zero-length (spec.md §4.5 "String tables bundle by id>>4").
type stringTableBundle struct {
	lang  uint16
	block uint16 // id >> 4
	slots [16]string
	set   [16]bool
}

// bundleStringTables merges every STRINGTABLE block sharing a language
// into (language, id>>4) bundles, detecting string_already_defined
// duplicates scoped to (language, id) (spec.md §4.5, §9 design notes on
// STRINGTABLE dedup scope). Trailing NULs are added later, by
// compileStringTableBundle.
func bundleStringTables(bodies map[uint16][]*StringTableBody, diags *Diagnostics) []*stringTableBundle {
	type key struct {
		lang  uint16
		block uint16
	}
	index := map[key]*stringTableBundle{}
	seen := map[uint16]map[uint32]Token{} // lang -> id -> first-seen token

	var order []key
	for lang, bodiesForLang := range bodies {
		if seen[lang] == nil {
			seen[lang] = map[uint32]Token{}
		}
		for _, b := range bodiesForLang {
			for _, e := range b.Entries {
				if prior, dup := seen[lang][e.ID]; dup {
					diags.AppendToken(KindError, ErrStringAlreadyDefined, e.IDToken, true)
					diags.AppendNote(prior, true, ErrStringAlreadyDefined)
					continue
				}
				seen[lang][e.ID] = e.IDToken

				k := key{lang: lang, block: uint16(e.ID >> 4)}
				bundle, ok := index[k]
				if !ok {
					bundle = &stringTableBundle{lang: lang, block: k.block}
					index[k] = bundle
					order = append(order, k)
				}
				bundle.slots[e.ID&0xF] = e.Text
				bundle.set[e.ID&0xF] = true
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].lang != order[j].lang {
			return order[i].lang < order[j].lang
		}
		return order[i].block < order[j].block
	})

	out := make([]*stringTableBundle, 0, len(order))
	for _, k := range order {
		out = append(out, index[k])
	}
	return out
}

// compileStringTableBundle emits the binary layout for one bundle: 16
// back-to-back `u16 length, UTF-16LE chars` slots, unset slots encoded as
// length 0.
func compileStringTableBundle(b *stringTableBundle, nullTerminate bool) []byte {
	var buf bytes.Buffer
	for i := 0; i < 16; i++ {
		if !b.set[i] {
			binary.Write(&buf, binary.LittleEndian, uint16(0))
			continue
		}
		units := utf16.Encode([]rune(b.slots[i]))
		if nullTerminate {
			units = append(units, 0)
		}
		binary.Write(&buf, binary.LittleEndian, uint16(len(units)))
		for _, u := range units {
			binary.Write(&buf, binary.LittleEndian, u)
		}
	}
	return buf.Bytes()
}
