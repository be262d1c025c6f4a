// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
)

// menuItemFlags, set on a leaf MENUITEM (spec.md §4.5 "menus").
const (
	mfGrayed    = 0x0001
	mfDisabled  = 0x0002
	mfChecked   = 0x0008
	mfPopup     = 0x0010
	mfMenuBarBreak = 0x0020
	mfMenuBreak = 0x0040
	mfEnd       = 0x0080
	mfSeparator = 0x0800
)

// parseMenuBody parses a MENU or MENUEX body: a sequence of top-level
// MENUITEM/POPUP statements inside one BEGIN/END block (spec.md §4.5).
func (p *Parser) parseMenuBody(isEx bool) (Body, bool) {
	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return nil, false
	}
	openTok := p.tok
	p.advance()

	body := &MenuBody{IsEx: isEx}
	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			p.diags.AppendToken(KindError, ErrUnfinishedRawDataBlock, openTok, true)
			return body, true
		}
		item, ok := p.parseMenuItem(isEx)
		if !ok {
			p.resync()
			break
		}
		body.Items = append(body.Items, item)
	}
	if p.atBlockClose() {
		p.advance()
	}
	return body, true
}

func (p *Parser) parseMenuItem(isEx bool) (MenuItemNode, bool) {
	if p.tok.ID != TokIdentifier {
		p.expectedSomethingElse("MENUITEM or POPUP")
		return MenuItemNode{}, false
	}
	kw := lowerKeyword(p.text(p.tok))
	p.advance()

	switch kw {
	case "menuitem":
		return p.parseMenuItemLeaf(isEx)
	case "popup":
		return p.parsePopup(isEx)
	default:
		p.expectedSomethingElse("MENUITEM or POPUP")
		return MenuItemNode{}, false
	}
}

func (p *Parser) parseMenuItemLeaf(isEx bool) (MenuItemNode, bool) {
	if p.tok.ID == TokIdentifier && lowerKeyword(p.text(p.tok)) == "separator" {
		p.advance()
		return MenuItemNode{IsSeparator: true}, true
	}

	if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
		p.expectedSomethingElse("menu item text")
		return MenuItemNode{}, false
	}
	node := MenuItemNode{Text: p.decodeCurrentString()}
	p.advance()

	if p.tok.ID != TokComma {
		// Text-only MENUITEM with no id is legal and means a grayed
		// separator-like entry in classic rc.exe; treat id 0.
		return node, true
	}
	p.advance()

	id, ok := p.parseNumericExpr()
	if !ok {
		return MenuItemNode{}, false
	}
	node.ID = id.Eval()

	if isEx {
		for p.tok.ID == TokComma {
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return MenuItemNode{}, false
			}
			_ = v // type/state consumed positionally, not separately modeled
		}
		return node, true
	}

	for p.tok.ID == TokComma {
		p.advance()
		if p.tok.ID != TokIdentifier {
			return MenuItemNode{}, false
		}
		switch lowerKeyword(p.text(p.tok)) {
		case "checked":
			node.Checked = true
		case "grayed":
			node.Grayed = true
		case "inactive":
			node.Disabled = true
		case "menubreak":
			node.MenuBreak = true
		case "menubarbreak":
			node.MenuBarBreak = true
		case "help":
			// HELP flag, no dedicated AST field; ignored downstream
		}
		p.advance()
	}
	return node, true
}

func (p *Parser) parsePopup(isEx bool) (MenuItemNode, bool) {
	if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
		p.expectedSomethingElse("popup text")
		return MenuItemNode{}, false
	}
	node := MenuItemNode{Text: p.decodeCurrentString(), IsPopup: true}
	p.advance()

	for p.tok.ID == TokComma {
		p.advance()
		if isEx {
			v, ok := p.parseNumericExpr()
			if !ok {
				return MenuItemNode{}, false
			}
			_ = v
			continue
		}
		if p.tok.ID != TokIdentifier {
			return MenuItemNode{}, false
		}
		switch lowerKeyword(p.text(p.tok)) {
		case "checked":
			node.Checked = true
		case "grayed":
			node.Grayed = true
		case "inactive":
			node.Disabled = true
		case "menubreak":
			node.MenuBreak = true
		case "menubarbreak":
			node.MenuBarBreak = true
		}
		p.advance()
	}

	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return MenuItemNode{}, false
	}
	p.advance()
	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			return node, true
		}
		child, ok := p.parseMenuItem(isEx)
		if !ok {
			p.resync()
			break
		}
		node.Children = append(node.Children, child)
	}
	if p.atBlockClose() {
		p.advance()
	}
	return node, true
}

// --- Compilation (spec.md §4.5 "MENU/MENUEX binary layout") ---

// compileMenu emits the MENUHEADER + recursive MENUITEM/POPUP item tree
// for a classic (non-EX) MENU resource.
func compileMenu(body *MenuBody) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // wVersion
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // cbHeaderSize
	for i, item := range body.Items {
		compileMenuItem(&buf, item, i == len(body.Items)-1)
	}
	return buf.Bytes()
}

func compileMenuItem(buf *bytes.Buffer, item MenuItemNode, isLast bool) {
	var flags uint16
	if item.IsSeparator {
		flags |= mfSeparator
	}
	if item.Checked {
		flags |= mfChecked
	}
	if item.Grayed {
		flags |= mfGrayed
	}
	if item.Disabled {
		flags |= mfDisabled
	}
	if item.MenuBreak {
		flags |= mfMenuBreak
	}
	if item.MenuBarBreak {
		flags |= mfMenuBarBreak
	}
	if item.IsPopup {
		flags |= mfPopup
	}
	if isLast {
		flags |= mfEnd
	}

	binary.Write(buf, binary.LittleEndian, flags)
	if !item.IsPopup {
		binary.Write(buf, binary.LittleEndian, uint16(item.ID))
	}
	writeUTF16LEString(buf, item.Text)

	if item.IsPopup {
		for i, child := range item.Children {
			compileMenuItem(buf, child, i == len(item.Children)-1)
		}
	}
}

// compileMenuEx emits the MENUEX_TEMPLATE_HEADER + MENUEX_TEMPLATE_ITEM
// tree for a MENUEX resource (spec.md §4.5).
func compileMenuEx(body *MenuBody) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // wVersion
	binary.Write(&buf, binary.LittleEndian, uint16(4)) // wOffset
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // dwHelpId
	for i, item := range body.Items {
		compileMenuExItem(&buf, item, i == len(body.Items)-1)
	}
	return buf.Bytes()
}

func compileMenuExItem(buf *bytes.Buffer, item MenuItemNode, isLast bool) {
	writeUTF16LEString(buf, item.Text)
	alignTo4(buf)

	binary.Write(buf, binary.LittleEndian, item.ID)

	var itemType uint32
	if item.IsSeparator {
		itemType |= mfSeparator
	}
	binary.Write(buf, binary.LittleEndian, itemType)

	var state uint8
	var flags uint8
	if item.IsPopup {
		flags = 1
	}
	if isLast {
		state = 0x80
	}
	binary.Write(buf, binary.LittleEndian, state)
	binary.Write(buf, binary.LittleEndian, flags)
	binary.Write(buf, binary.LittleEndian, uint16(0)) // padding

	if item.IsPopup {
		binary.Write(buf, binary.LittleEndian, item.HelpTopID)
		for i, child := range item.Children {
			compileMenuExItem(buf, child, i == len(item.Children)-1)
		}
	}
}
