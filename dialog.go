// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
)

// dialogControlClasses maps a bare control statement keyword to its
// predefined window class atom (WC_DIALOG control classes: BUTTON=0x80,
// EDIT=0x81, STATIC=0x82, LISTBOX=0x83, SCROLLBAR=0x84, COMBOBOX=0x85).
var dialogControlClasses = map[string]uint16{
	"pushbutton": 0x80, "defpushbutton": 0x80, "checkbox": 0x80,
	"radiobutton": 0x80, "groupbox": 0x80, "pushbox": 0x80,
	"autocheckbox": 0x80, "autoradiobutton": 0x80, "auto3state": 0x80,
	"state3": 0x80,
	"edittext":  0x81,
	"ltext":     0x82, "rtext": 0x82, "ctext": 0x82, "icon": 0x82,
	"listbox": 0x83,
	"scrollbar": 0x84,
	"combobox":  0x85,
}

// parseDialogBody parses a DIALOG or DIALOGEX body (spec.md §4.4, §4.5
// "Dialog controls are serialized with the DLGITEMTEMPLATE[EX] binary
// layout").
func (p *Parser) parseDialogBody(isEx bool) (Body, bool) {
	body := &DialogBody{IsEx: isEx}

	x, ok := p.parseNumericExpr()
	if !ok {
		return nil, false
	}
	body.X = int32(x.Eval())
	if _, ok := p.eat(TokComma); !ok {
		return nil, false
	}
	y, ok := p.parseNumericExpr()
	if !ok {
		return nil, false
	}
	body.Y = int32(y.Eval())
	if _, ok := p.eat(TokComma); !ok {
		return nil, false
	}
	w, ok := p.parseNumericExpr()
	if !ok {
		return nil, false
	}
	body.W = int32(w.Eval())
	if _, ok := p.eat(TokComma); !ok {
		return nil, false
	}
	h, ok := p.parseNumericExpr()
	if !ok {
		return nil, false
	}
	body.H = int32(h.Eval())

	if isEx && p.tok.ID == TokComma {
		p.advance()
		help, ok := p.parseNumericExpr()
		if !ok {
			return nil, false
		}
		body.HelpID = help.Eval()
	}

	for p.tok.ID == TokIdentifier {
		kw := lowerKeyword(p.text(p.tok))
		switch kw {
		case "caption":
			p.advance()
			body.Caption = p.decodeCurrentString()
			body.HasCaption = true
			p.advance()
		case "style":
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.Style = v.Eval()
			body.StyleSet = true
		case "exstyle":
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.ExStyle = v.Eval()
		case "font":
			p.advance()
			f, ok := p.parseFontStmt(isEx)
			if !ok {
				return nil, false
			}
			body.Font = f
		case "menu":
			p.advance()
			m, ok := p.parseNameOrOrdinal()
			if !ok {
				return nil, false
			}
			body.MenuRef = &m
		case "class":
			p.advance()
			c, ok := p.parseNameOrOrdinal()
			if !ok {
				return nil, false
			}
			body.ClassRef = &c
		case "characteristics", "language":
			// Legal here per rc.exe grammar but modeled at the
			// ResourceDef/CommonOpts level already; consume and discard the
			// trailing argument(s) so the body parser does not choke on it
			// if authors put it after FONT instead of before BEGIN.
			p.advance()
			if kw == "language" {
				if _, ok := p.parseLanguageArgs(); !ok {
					return nil, false
				}
			} else if _, ok := p.parseNumericExpr(); !ok {
				return nil, false
			}
		default:
			goto doneOpts
		}
	}
doneOpts:

	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return nil, false
	}
	openTok := p.tok
	p.advance()

	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			p.diags.AppendToken(KindError, ErrUnfinishedRawDataBlock, openTok, true)
			return body, true
		}
		ctrl, ok := p.parseDialogControl(isEx)
		if !ok {
			p.resync()
			break
		}
		body.Controls = append(body.Controls, ctrl)
	}
	if p.atBlockClose() {
		p.advance()
	}

	return body, true
}

func (p *Parser) parseFontStmt(isEx bool) (*FontStmt, bool) {
	size, ok := p.parseNumericExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.eat(TokComma); !ok {
		return nil, false
	}
	if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
		p.expectedSomethingElse("typeface string")
		return nil, false
	}
	typeface := p.decodeCurrentString()
	p.advance()

	font := &FontStmt{PointSize: uint16(size.Eval()), Typeface: typeface, Weight: 400}
	if !isEx {
		return font, true
	}
	for i := 0; p.tok.ID == TokComma; i++ {
		p.advance()
		v, ok := p.parseNumericExpr()
		if !ok {
			return nil, false
		}
		// weight, italic, charset, by position
		switch i {
		case 0:
			font.Weight = uint16(v.Eval())
		case 1:
			font.Italic = v.Eval() != 0
		case 2:
			font.CharSet = uint8(v.Eval())
		}
	}
	return font, true
}

// parseDialogControl parses one control statement: either a bare keyword
// form (LTEXT "text", id, x, y, w, h[, style]) or the generic
// `CONTROL "text", id, class, style, x, y, w, h[, exstyle][, helpid]`
// form.
func (p *Parser) parseDialogControl(isEx bool) (DialogControl, bool) {
	if p.tok.ID != TokIdentifier {
		p.expectedSomethingElse("control statement")
		return DialogControl{}, false
	}
	kw := lowerKeyword(p.text(p.tok))
	p.advance()

	ctrl := DialogControl{ControlKeyword: kw}

	if kw == "control" {
		return p.parseGenericControl(ctrl, isEx)
	}

	classAtom, known := dialogControlClasses[kw]
	if !known {
		p.expectedSomethingElse("control keyword")
		return DialogControl{}, false
	}
	ctrl.ClassAtom = classAtom

	if kw != "scrollbar" && kw != "listbox" && kw != "combobox" && kw != "edittext" {
		if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
			p.expectedSomethingElse("control text")
			return DialogControl{}, false
		}
		ctrl.Text = p.decodeCurrentString()
		ctrl.HasText = true
		p.advance()
		if _, ok := p.eat(TokComma); !ok {
			return DialogControl{}, false
		}
	}

	id, ok := p.parseNameOrOrdinal()
	if !ok {
		return DialogControl{}, false
	}
	ctrl.ID = id

	coords := []*int32{&ctrl.X, &ctrl.Y, &ctrl.W, &ctrl.H}
	for _, dst := range coords {
		if _, ok := p.eat(TokComma); !ok {
			return DialogControl{}, false
		}
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		*dst = int32(v.Eval())
	}

	if p.tok.ID == TokComma {
		p.advance()
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		ctrl.Style = v.Eval()
		ctrl.StyleSet = true
	}
	if isEx && p.tok.ID == TokComma {
		p.advance()
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		ctrl.ExStyle = v.Eval()
		if p.tok.ID == TokComma {
			p.advance()
			v2, ok := p.parseNumericExpr()
			if !ok {
				return DialogControl{}, false
			}
			ctrl.HelpID = v2.Eval()
		}
	}

	return ctrl, true
}

func (p *Parser) parseGenericControl(ctrl DialogControl, isEx bool) (DialogControl, bool) {
	if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
		p.expectedSomethingElse("control text")
		return DialogControl{}, false
	}
	ctrl.Text = p.decodeCurrentString()
	ctrl.HasText = true
	p.advance()
	if _, ok := p.eat(TokComma); !ok {
		return DialogControl{}, false
	}

	id, ok := p.parseNameOrOrdinal()
	if !ok {
		return DialogControl{}, false
	}
	ctrl.ID = id
	if _, ok := p.eat(TokComma); !ok {
		return DialogControl{}, false
	}

	switch p.tok.ID {
	case TokQuotedASCIIString, TokQuotedWideString:
		ctrl.ClassName = p.decodeCurrentString()
		p.advance()
	case TokIdentifier:
		ctrl.ClassName = string(p.text(p.tok))
		if atom, ok := dialogControlClasses[lowerKeyword(p.text(p.tok))]; ok {
			ctrl.ClassAtom = atom
			ctrl.ClassName = ""
		}
		p.advance()
	default:
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		ctrl.ClassAtom = uint16(v.Eval())
	}
	if _, ok := p.eat(TokComma); !ok {
		return DialogControl{}, false
	}

	style, ok := p.parseNumericExpr()
	if !ok {
		return DialogControl{}, false
	}
	ctrl.Style = style.Eval()
	ctrl.StyleSet = true

	coords := []*int32{&ctrl.X, &ctrl.Y, &ctrl.W, &ctrl.H}
	for _, dst := range coords {
		if _, ok := p.eat(TokComma); !ok {
			return DialogControl{}, false
		}
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		*dst = int32(v.Eval())
	}

	if p.tok.ID == TokComma {
		p.advance()
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		ctrl.ExStyle = v.Eval()
	}
	if isEx && p.tok.ID == TokComma {
		p.advance()
		v, ok := p.parseNumericExpr()
		if !ok {
			return DialogControl{}, false
		}
		ctrl.HelpID = v.Eval()
	}

	return ctrl, true
}

// --- Compilation ---

// compileDialog emits the DLGTEMPLATE/DLGTEMPLATEEX + DLGITEMTEMPLATE[EX]
// binary layout for one DIALOG/DIALOGEX resource (spec.md §4.5).
func compileDialog(body *DialogBody, codePage uint32) []byte {
	var buf bytes.Buffer

	style := body.Style
	if !body.StyleSet {
		style = 0x80000000 | 0x00C00000 // DS_SETFONT-less default + WS_CAPTION, conservative default
	}
	if body.Font != nil {
		style |= 0x40 // DS_SETFONT
	}

	if body.IsEx {
		binary.Write(&buf, binary.LittleEndian, uint16(1))       // dlgVer
		binary.Write(&buf, binary.LittleEndian, uint16(0xFFFF))  // signature
		binary.Write(&buf, binary.LittleEndian, body.HelpID)     // helpID
		binary.Write(&buf, binary.LittleEndian, body.ExStyle)    // exStyle
		binary.Write(&buf, binary.LittleEndian, style)           // style
	} else {
		binary.Write(&buf, binary.LittleEndian, style)
		binary.Write(&buf, binary.LittleEndian, body.ExStyle)
	}

	binary.Write(&buf, binary.LittleEndian, uint16(len(body.Controls)))
	binary.Write(&buf, binary.LittleEndian, int16(body.X))
	binary.Write(&buf, binary.LittleEndian, int16(body.Y))
	binary.Write(&buf, binary.LittleEndian, int16(body.W))
	binary.Write(&buf, binary.LittleEndian, int16(body.H))

	// menu (sz_Or_Ord), class (sz_Or_Ord), title
	writeSzOrOrdinal(&buf, body.MenuRef)
	writeSzOrOrdinal(&buf, body.ClassRef)
	writeUTF16LEString(&buf, body.Caption)

	if body.Font != nil {
		binary.Write(&buf, binary.LittleEndian, body.Font.PointSize)
		if body.IsEx {
			binary.Write(&buf, binary.LittleEndian, body.Font.Weight)
			binary.Write(&buf, binary.LittleEndian, boolToByte(body.Font.Italic))
			binary.Write(&buf, binary.LittleEndian, body.Font.CharSet)
		}
		writeUTF16LEString(&buf, body.Font.Typeface)
	}

	for _, ctrl := range body.Controls {
		alignTo4(&buf)
		compileDialogControl(&buf, ctrl, body.IsEx)
	}

	return buf.Bytes()
}

func compileDialogControl(buf *bytes.Buffer, ctrl DialogControl, isEx bool) {
	if isEx {
		binary.Write(buf, binary.LittleEndian, ctrl.HelpID)
		binary.Write(buf, binary.LittleEndian, ctrl.ExStyle)
		binary.Write(buf, binary.LittleEndian, ctrl.Style)
	} else {
		binary.Write(buf, binary.LittleEndian, ctrl.Style)
		binary.Write(buf, binary.LittleEndian, ctrl.ExStyle)
	}
	binary.Write(buf, binary.LittleEndian, int16(ctrl.X))
	binary.Write(buf, binary.LittleEndian, int16(ctrl.Y))
	binary.Write(buf, binary.LittleEndian, int16(ctrl.W))
	binary.Write(buf, binary.LittleEndian, int16(ctrl.H))

	if isEx {
		id := ctrl.ID
		if id.IsOrdinal {
			binary.Write(buf, binary.LittleEndian, uint32(id.Ordinal))
		} else {
			binary.Write(buf, binary.LittleEndian, uint32(0))
		}
	} else {
		if ctrl.ID.IsOrdinal {
			binary.Write(buf, binary.LittleEndian, ctrl.ID.Ordinal)
		} else {
			binary.Write(buf, binary.LittleEndian, uint16(0))
		}
	}

	if ctrl.ClassName != "" {
		writeNameOrOrdinalString(buf, ctrl.ClassName)
	} else {
		buf.WriteByte(0xFF)
		buf.WriteByte(0xFF)
		binary.Write(buf, binary.LittleEndian, ctrl.ClassAtom)
	}

	writeSzOrOrdinal(buf, titleRef(ctrl))

	binary.Write(buf, binary.LittleEndian, uint16(0)) // no creation data
}

func titleRef(ctrl DialogControl) *NameOrOrdinal {
	if ctrl.HasText {
		return &NameOrOrdinal{Name: ctrl.Text}
	}
	if ctrl.ID.IsOrdinal {
		return nil
	}
	return &NameOrOrdinal{Name: ""}
}

func boolToByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func alignTo4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}
