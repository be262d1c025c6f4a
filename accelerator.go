// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
)

// ACCELERATOR record fType bits (spec.md §4.5 "ACCELERATORS").
const (
	fVirtKey = 0x01
	fNoInvert = 0x02
	fShift   = 0x04
	fControl = 0x08
	fAlt     = 0x10
	fLast    = 0x80
)

// parseAcceleratorsBody parses an ACCELERATORS body: a sequence of
// `event, id [, flags...]` entries inside one BEGIN/END block
// (spec.md §4.5).
func (p *Parser) parseAcceleratorsBody() (Body, bool) {
	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return nil, false
	}
	openTok := p.tok
	p.advance()

	body := &AcceleratorsBody{}
	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			p.diags.AppendToken(KindError, ErrUnfinishedRawDataBlock, openTok, true)
			return body, true
		}
		entry, ok := p.parseAcceleratorEntry()
		if !ok {
			p.resync()
			break
		}
		body.Entries = append(body.Entries, entry)
		if p.tok.ID == TokComma {
			p.advance()
		}
	}
	if p.atBlockClose() {
		p.advance()
	}
	return body, true
}

func (p *Parser) parseAcceleratorEntry() (AcceleratorEntry, bool) {
	var entry AcceleratorEntry

	if p.tok.ID == TokQuotedASCIIString {
		text := p.decodeCurrentString()
		p.advance()
		if len(text) > 0 {
			entry.IsASCIIChar = true
			entry.Char = text[0]
		}
	} else {
		v, ok := p.parseNumericExpr()
		if !ok {
			return AcceleratorEntry{}, false
		}
		entry.Event = v.Eval()
	}

	if _, ok := p.eat(TokComma); !ok {
		return AcceleratorEntry{}, false
	}
	id, ok := p.parseNumericExpr()
	if !ok {
		return AcceleratorEntry{}, false
	}
	entry.ID = id.Eval()

	for p.tok.ID == TokComma {
		p.advance()
		if p.tok.ID != TokIdentifier {
			return AcceleratorEntry{}, false
		}
		switch lowerKeyword(p.text(p.tok)) {
		case "virtkey":
			entry.VirtKey = true
		case "ascii":
			entry.ASCIIFlag = true
		case "noinvert":
			entry.NoInvert = true
		case "alt":
			entry.Alt = true
		case "shift":
			entry.Shift = true
		case "control", "ctrl":
			entry.Control = true
		}
		p.advance()
	}

	return entry, true
}

// compileAccelerators emits a sequence of fixed-size ACCEL records
// (spec.md §4.5 "ACCELERATORS binary layout").
func compileAccelerators(body *AcceleratorsBody) []byte {
	var buf bytes.Buffer
	for i, e := range body.Entries {
		var flags uint16
		if e.VirtKey {
			flags |= fVirtKey
		}
		if e.NoInvert {
			flags |= fNoInvert
		}
		if e.Shift {
			flags |= fShift
		}
		if e.Control {
			flags |= fControl
		}
		if e.Alt {
			flags |= fAlt
		}
		if i == len(body.Entries)-1 {
			flags |= fLast
		}

		var event uint16
		if e.IsASCIIChar {
			event = uint16(e.Char)
		} else {
			event = uint16(e.Event)
		}

		binary.Write(&buf, binary.LittleEndian, flags)
		binary.Write(&buf, binary.LittleEndian, event)
		binary.Write(&buf, binary.LittleEndian, uint16(e.ID))
		binary.Write(&buf, binary.LittleEndian, uint16(0)) // padding
	}
	return buf.Bytes()
}
