// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// resMagicHeader is the fixed zero-length, zero-typed, zero-named sentinel
// record every well-formed .res stream begins with (spec.md §4.6 "Output
// format", grounded on the teacher's resource.go RESOURCEHEADER framing —
// the dir-entry/header split PE resources use at runtime collapses, in a
// flat .res file, to one RESOURCEHEADER per resource preceded by this
// fixed 32-byte sentinel).
var resMagicHeader = []byte{
	0x00, 0x00, 0x00, 0x00, 0x20, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0x00, 0x00, 0xFF, 0xFF, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
}

// ResourceRecord is one compiled resource's bytes plus the identity fields
// its RESOURCEHEADER needs.
type ResourceRecord struct {
	Type       NameOrOrdinal
	Name       NameOrOrdinal
	DataVer    uint32
	MemoryFlags uint16
	LangID     uint16
	Version    uint32
	Characteristics uint32
	Data       []byte
}

// writeNameOrOrdinalString writes a bare UTF-16LE string with no length
// prefix or ordinal escape, as used for DIALOG control class names
// (spec.md §4.5 DLGITEMTEMPLATE layout).
func writeNameOrOrdinalString(buf *bytes.Buffer, s string) {
	writeUTF16LEString(buf, s)
}

// writeUTF16LEString writes s as UTF-16LE code units followed by a NUL
// terminator, with no length prefix (the DLGITEMTEMPLATE sz_Or_Ord /
// title / class wire format; spec.md §4.5).
func writeUTF16LEString(buf *bytes.Buffer, s string) {
	units := utf16.Encode([]rune(s))
	for _, u := range units {
		binary.Write(buf, binary.LittleEndian, u)
	}
	binary.Write(buf, binary.LittleEndian, uint16(0))
}

// writeSzOrOrdinal writes the `sz_Or_Ord` wire production used throughout
// resource binary formats: 0x0000 for "absent", 0xFFFF + a u16 ordinal, or
// a NUL-terminated UTF-16LE string (spec.md §4.5, §GLOSSARY "Ordinal id").
func writeSzOrOrdinal(buf *bytes.Buffer, ref *NameOrOrdinal) {
	switch {
	case ref == nil:
		binary.Write(buf, binary.LittleEndian, uint16(0))
	case ref.IsOrdinal:
		buf.WriteByte(0xFF)
		buf.WriteByte(0xFF)
		binary.Write(buf, binary.LittleEndian, ref.Ordinal)
	default:
		writeUTF16LEString(buf, ref.Name)
	}
}

// writeResHeaderNameOrOrdinal writes the RESOURCEHEADER NameOrOrdinal wire
// form: 0xFFFF + u16 ordinal, or a length-implicit NUL-terminated
// UTF-16LE string (same shape as sz_Or_Ord but used at top-level resource
// identity rather than inside a control template).
func writeResHeaderNameOrOrdinal(buf *bytes.Buffer, ref NameOrOrdinal) {
	if ref.IsOrdinal {
		buf.WriteByte(0xFF)
		buf.WriteByte(0xFF)
		binary.Write(buf, binary.LittleEndian, ref.Ordinal)
		return
	}
	writeUTF16LEString(buf, ref.Name)
}

// EncodeRES serializes a sequence of compiled ResourceRecords into a
// complete .res byte stream: the fixed sentinel header followed by one
// RESOURCEHEADER+data record per resource, each data blob padded to a
// 4-byte boundary (spec.md §4.6).
func EncodeRES(records []ResourceRecord) []byte {
	var out bytes.Buffer
	out.Write(resMagicHeader)

	for _, r := range records {
		var hdr bytes.Buffer
		writeResHeaderNameOrOrdinal(&hdr, r.Type)
		padTo4(&hdr)
		writeResHeaderNameOrOrdinal(&hdr, r.Name)
		padTo4(&hdr)

		binary.Write(&hdr, binary.LittleEndian, r.DataVer)
		binary.Write(&hdr, binary.LittleEndian, r.MemoryFlags)
		binary.Write(&hdr, binary.LittleEndian, r.LangID)
		binary.Write(&hdr, binary.LittleEndian, r.Version)
		binary.Write(&hdr, binary.LittleEndian, r.Characteristics)

		headerLen := uint32(hdr.Len()) + 8 // + DataSize,HeaderSize fields themselves
		dataLen := uint32(len(r.Data))

		binary.Write(&out, binary.LittleEndian, dataLen)
		binary.Write(&out, binary.LittleEndian, headerLen)
		out.Write(hdr.Bytes())
		out.Write(r.Data)
		padBufTo4(&out)
	}

	return out.Bytes()
}

func padTo4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}

func padBufTo4(buf *bytes.Buffer) {
	padTo4(buf)
}
