// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestCompileRawDataProducesSentinelAndRecord(t *testing.T) {
	diags := NewDiagnostics()
	file := ParseFile([]byte(`MYDATA RCDATA { 1, 2 }`), 1252, DefaultMaxStringLiteralCodepoints, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.Records())
	}

	opts := NewOptions()
	res := Compile(file, opts, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected compile errors: %+v", diags.Records())
	}

	if !bytes.HasPrefix(res, resMagicHeader) {
		t.Fatalf("output does not start with the fixed sentinel header")
	}
	if len(res) <= len(resMagicHeader) {
		t.Fatalf("expected at least one resource record after the sentinel")
	}
}

func TestCompileStringTableBundlesByBlock(t *testing.T) {
	diags := NewDiagnostics()
	file := ParseFile([]byte(`STRINGTABLE { 0, "zero" 1, "one" 16, "sixteen" }`), 1252, DefaultMaxStringLiteralCodepoints, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.Records())
	}

	opts := NewOptions()
	res := Compile(file, opts, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected compile errors: %+v", diags.Records())
	}

	// ids 0 and 1 fall in block 0 (id>>4 == 0); id 16 falls in block 1,
	// so two STRINGTABLE bundle records should follow the sentinel header.
	if len(res) <= len(resMagicHeader) {
		t.Fatalf("expected compiled STRINGTABLE bundles in the output")
	}
	records := 0
	for off := len(resMagicHeader); off+8 <= len(res); records++ {
		dataSize := binary.LittleEndian.Uint32(res[off:])
		headerSize := binary.LittleEndian.Uint32(res[off+4:])
		off = (off + int(headerSize) + int(dataSize) + 3) &^ 3
	}
	if records != 2 {
		t.Fatalf("got %d records after the sentinel, want 2", records)
	}
}

func TestCompileStringAlreadyDefinedDetected(t *testing.T) {
	diags := NewDiagnostics()
	file := ParseFile([]byte(`STRINGTABLE { 1, "a" } STRINGTABLE { 1, "b" }`), 1252, DefaultMaxStringLiteralCodepoints, diags)
	if diags.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", diags.Records())
	}

	opts := NewOptions()
	Compile(file, opts, diags)

	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrStringAlreadyDefined {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected string_already_defined, got %+v", diags.Records())
	}
}

func TestEncodeRESWriterSetRecordLayout(t *testing.T) {
	records := []ResourceRecord{
		{
			Type: NameOrOrdinal{IsOrdinal: true, Ordinal: rtRCData},
			Name: NameOrOrdinal{Name: "MYDATA"},
			Data: []byte{1, 2, 3},
		},
	}
	out := EncodeRES(records)
	if !bytes.HasPrefix(out, resMagicHeader) {
		t.Fatalf("missing sentinel header")
	}
	if len(out) <= len(resMagicHeader)+len(records[0].Data) {
		t.Fatalf("output too short to contain a full RESOURCEHEADER + data")
	}
}
