// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// versionInfoFixedKeywords are the FILEVERSION/PRODUCTVERSION-style
// statements legal before a VERSIONINFO's BEGIN/END block (spec.md §4.5,
// grounded on the teacher's version.go VsFixedFileInfo field set, which
// names the exact binary fields we must now produce).
var versionInfoFixedKeywords = map[string]bool{
	"fileversion": true, "productversion": true,
	"fileflagsmask": true, "fileflags": true,
	"fileos": true, "filetype": true, "filesubtype": true,
}

// parseVersionInfoBody parses a VERSIONINFO body (spec.md §4.5, §4.6).
func (p *Parser) parseVersionInfoBody() (Body, bool) {
	body := &VersionInfoBody{}

	for p.tok.ID == TokIdentifier && versionInfoFixedKeywords[lowerKeyword(p.text(p.tok))] {
		kw := lowerKeyword(p.text(p.tok))
		p.advance()
		switch kw {
		case "fileversion":
			v, ok := p.parseVersionQuad()
			if !ok {
				return nil, false
			}
			body.FileVersion = v
		case "productversion":
			v, ok := p.parseVersionQuad()
			if !ok {
				return nil, false
			}
			body.ProductVersion = v
		case "fileflagsmask":
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.FileFlagsMask = v.Eval()
		case "fileflags":
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.FileFlags = v.Eval()
		case "fileos":
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.FileOS = v.Eval()
		case "filetype":
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.FileType = v.Eval()
		case "filesubtype":
			v, ok := p.parseNumericExpr()
			if !ok {
				return nil, false
			}
			body.FileSubtype = v.Eval()
		}
	}

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
		if !p.atKeyword("block") {
			p.expectedSomethingElse("BLOCK")
			p.resync()
			break
		}
		p.advance()
		if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
			p.expectedSomethingElse("block name string")
			p.resync()
			break
		}
		blockName := p.decodeCurrentString()
		p.advance()

		switch blockName {
		case "StringFileInfo":
			if !p.parseStringFileInfo(body) {
				p.resync()
			}
		case "VarFileInfo":
			if !p.parseVarFileInfo(body) {
				p.resync()
			}
		default:
			p.expectedSomethingElse("StringFileInfo or VarFileInfo")
			p.resync()
		}
	}
	if p.atBlockClose() {
		p.advance()
	}
	return body, true
}

func (p *Parser) parseVersionQuad() ([4]uint16, bool) {
	var quad [4]uint16
	for i := 0; i < 4; i++ {
		if i > 0 {
			if _, ok := p.eat(TokComma); !ok {
				return quad, false
			}
		}
		v, ok := p.parseNumericExpr()
		if !ok {
			return quad, false
		}
		quad[i] = uint16(v.Eval())
	}
	return quad, true
}

func (p *Parser) parseStringFileInfo(body *VersionInfoBody) bool {
	if !p.atBlockOpen() {
		p.expectedSomethingElse("{ or BEGIN")
		return false
	}
	p.advance()

	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			return true
		}
		if !p.atKeyword("block") {
			return false
		}
		p.advance()
		if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
			return false
		}
		langCP := p.decodeCurrentString()
		p.advance()

		table := VersionStringTable{LangAndCodePage: langCP}
		if !p.atBlockOpen() {
			return false
		}
		p.advance()
		for !p.atBlockClose() {
			if p.tok.ID == TokEOF {
				return true
			}
			if !p.atKeyword("value") {
				return false
			}
			p.advance()
			if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
				return false
			}
			k := p.decodeCurrentString()
			p.advance()
			if _, ok := p.eat(TokComma); !ok {
				return false
			}
			if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
				return false
			}
			v := p.decodeCurrentString()
			p.advance()
			table.Values = append(table.Values, VersionStringValue{Key: k, Value: v})
		}
		p.advance() // closing brace of the langCP block
		body.StringTables = append(body.StringTables, table)
	}
	p.advance() // closing brace of StringFileInfo
	return true
}

func (p *Parser) parseVarFileInfo(body *VersionInfoBody) bool {
	if !p.atBlockOpen() {
		return false
	}
	p.advance()

	for !p.atBlockClose() {
		if p.tok.ID == TokEOF {
			return true
		}
		if !p.atKeyword("value") {
			return false
		}
		p.advance()
		if p.tok.ID != TokQuotedASCIIString && p.tok.ID != TokQuotedWideString {
			return false
		}
		name := p.decodeCurrentString()
		p.advance()

		block := VersionVarBlock{Name: name}
		for p.tok.ID == TokComma {
			p.advance()
			v, ok := p.parseNumericExpr()
			if !ok {
				return false
			}
			block.Values = append(block.Values, v.Eval())
		}
		body.VarBlocks = append(body.VarBlocks, block)
	}
	p.advance()
	return true
}

// --- Compilation (spec.md §4.5, §4.6 "VS_VERSIONINFO binary layout") ---

// compileVersionInfo emits the nested VS_VERSIONINFO / VS_FIXEDFILEINFO /
// StringFileInfo / VarFileInfo binary structure, grounded on the
// teacher's version.go field layout for VsFixedFileInfo.
func compileVersionInfo(body *VersionInfoBody) []byte {
	var fixed bytes.Buffer
	binary.Write(&fixed, binary.LittleEndian, uint32(0xFEEF04BD)) // dwSignature
	binary.Write(&fixed, binary.LittleEndian, uint32(0x00010000)) // dwStrucVersion
	binary.Write(&fixed, binary.LittleEndian, uint32(body.FileVersion[0])<<16|uint32(body.FileVersion[1]))
	binary.Write(&fixed, binary.LittleEndian, uint32(body.FileVersion[2])<<16|uint32(body.FileVersion[3]))
	binary.Write(&fixed, binary.LittleEndian, uint32(body.ProductVersion[0])<<16|uint32(body.ProductVersion[1]))
	binary.Write(&fixed, binary.LittleEndian, uint32(body.ProductVersion[2])<<16|uint32(body.ProductVersion[3]))
	binary.Write(&fixed, binary.LittleEndian, body.FileFlagsMask)
	binary.Write(&fixed, binary.LittleEndian, body.FileFlags)
	binary.Write(&fixed, binary.LittleEndian, body.FileOS)
	binary.Write(&fixed, binary.LittleEndian, body.FileType)
	binary.Write(&fixed, binary.LittleEndian, body.FileSubtype)
	binary.Write(&fixed, binary.LittleEndian, uint32(0)) // dwFileDateMS
	binary.Write(&fixed, binary.LittleEndian, uint32(0)) // dwFileDateLS

	var children bytes.Buffer
	if len(body.StringTables) > 0 {
		children.Write(compileStringFileInfo(body.StringTables))
	}
	alignTo4(&children)
	if len(body.VarBlocks) > 0 {
		children.Write(compileVarFileInfo(body.VarBlocks))
	}

	return wrapVersionBlock("VS_VERSION_INFO", fixed.Bytes(), children.Bytes(), 0)
}

func compileStringFileInfo(tables []VersionStringTable) []byte {
	var children bytes.Buffer
	for _, t := range tables {
		var sub bytes.Buffer
		for _, v := range t.Values {
			valUnits := utf16.Encode([]rune(v.Value))
			valBlock := wrapVersionBlock(v.Key, encodeUTF16NulBytes(valUnits), nil, uint16(len(valUnits)+1))
			sub.Write(valBlock)
			alignTo4(&sub)
		}
		block := wrapVersionBlock(t.LangAndCodePage, nil, sub.Bytes(), 0)
		children.Write(block)
		alignTo4(&children)
	}
	return wrapVersionBlock("StringFileInfo", nil, children.Bytes(), 0)
}

func compileVarFileInfo(blocks []VersionVarBlock) []byte {
	var children bytes.Buffer
	for _, b := range blocks {
		var data bytes.Buffer
		for _, v := range b.Values {
			binary.Write(&data, binary.LittleEndian, v)
		}
		children.Write(wrapVersionBlock(b.Name, data.Bytes(), nil, 0))
		alignTo4(&children)
	}
	return wrapVersionBlock("VarFileInfo", nil, children.Bytes(), 0)
}

// wrapVersionBlock emits one generic VS_VERSIONINFO-style block: wLength,
// wValueLength, wType, szKey (NUL-terminated UTF-16LE, padded to 4),
// Value, padded Children.
func wrapVersionBlock(key string, value []byte, children []byte, valueLengthOverride uint16) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0}) // wLength placeholder
	valueLength := valueLengthOverride
	if valueLength == 0 && len(value) > 0 {
		valueLength = uint16(len(value))
	}
	binary.Write(&buf, binary.LittleEndian, valueLength)
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // wType: 1 = text

	writeUTF16LEString(&buf, key)
	alignTo4(&buf)
	buf.Write(value)
	alignTo4(&buf)
	buf.Write(children)

	out := buf.Bytes()
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(out)))
	return out
}

func encodeUTF16NulBytes(units []uint16) []byte {
	var buf bytes.Buffer
	for _, u := range units {
		binary.Write(&buf, binary.LittleEndian, u)
	}
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	return buf.Bytes()
}
