// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "testing"

func parseSource(t *testing.T, src string) (*RCFile, *Diagnostics) {
	t.Helper()
	diags := NewDiagnostics()
	file := ParseFile([]byte(src), 1252, DefaultMaxStringLiteralCodepoints, diags)
	return file, diags
}

func TestParseRCDataResourceDef(t *testing.T) {
	file, diags := parseSource(t, `MYDATA RCDATA { 1, 2L, "hi" }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	if len(file.Items) != 1 {
		t.Fatalf("got %d items, want 1", len(file.Items))
	}
	def := file.Items[0].Resource
	if def == nil {
		t.Fatalf("expected a resource def")
	}
	if def.Name.Name != "MYDATA" {
		t.Errorf("got name %q", def.Name.Name)
	}
	if def.Type.Keyword != "rcdata" {
		t.Errorf("got type %q", def.Type.Keyword)
	}
	body, ok := def.Body.(*RawDataBody)
	if !ok {
		t.Fatalf("got body type %T", def.Body)
	}
	if len(body.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(body.Items))
	}
	if !body.Items[1].IsLong {
		t.Errorf("expected item 1 to carry the L suffix")
	}
	if body.Items[2].Text != "hi" {
		t.Errorf("got text %q", body.Items[2].Text)
	}
}

func TestParsePreambleUpdatesDefaults(t *testing.T) {
	file, diags := parseSource(t, "LANGUAGE 9, 1\nA RCDATA { 1 }")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	if len(file.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(file.Items))
	}
	if file.Items[0].Preamble == nil || file.Items[0].Preamble.Language == nil {
		t.Fatalf("expected a language preamble")
	}
	if file.Items[0].Preamble.Language.Primary != 9 {
		t.Errorf("got primary %d", file.Items[0].Preamble.Language.Primary)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	file, diags := parseSource(t, "A RCDATA { 1 + 2 & 3 | 4 }")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*RawDataBody)
	got := body.Items[0].Number
	want := ((1 + 2) & 3) | 4
	if got != uint32(want) {
		t.Errorf("got %d, want %d", got, want)
	}
}

func TestParseUnaryMinusAndNot(t *testing.T) {
	file, diags := parseSource(t, "A RCDATA { -1, ~0 }")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*RawDataBody)
	if body.Items[0].Number != uint32(0xFFFFFFFF) {
		t.Errorf("got %#x for -1", body.Items[0].Number)
	}
	if body.Items[1].Number != uint32(0xFFFFFFFF) {
		t.Errorf("got %#x for ~0", body.Items[1].Number)
	}
}

func TestParseParenthesizedExpression(t *testing.T) {
	file, diags := parseSource(t, "A RCDATA { (1 + 2) & 3 }")
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*RawDataBody)
	if body.Items[0].Number != 3 {
		t.Errorf("got %d, want 3", body.Items[0].Number)
	}
}

func TestParseIDMustBeOrdinal(t *testing.T) {
	_, diags := parseSource(t, `STRINGS STRINGTABLE { 1 "a" }`)
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrIDMustBeOrdinal {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected id_must_be_ordinal, got %+v", diags.Records())
	}
}

func TestParseResourceTypeCantUseRawData(t *testing.T) {
	_, diags := parseSource(t, "1 DIALOG { 1 }")
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrResourceTypeCantUseRawData {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected resource_type_cant_use_raw_data, got %+v", diags.Records())
	}
}

func TestParseStringResourceAsNumericType(t *testing.T) {
	_, diags := parseSource(t, "1 6 { 1 }")
	found := false
	for _, r := range diags.Records() {
		if r.Token != nil && r.Token.Code == ErrStringResourceAsNumericType {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected string_resource_as_numeric_type, got %+v", diags.Records())
	}
}

func TestParseErrorRecoveryResync(t *testing.T) {
	file, diags := parseSource(t, "A RCDATA { 1, ) } B RCDATA { 2 }")
	if !diags.HasErrors() {
		t.Fatalf("expected a parse error from the stray ')'")
	}
	var secondFound bool
	for _, it := range file.Items {
		if it.Resource != nil && it.Resource.Name.Name == "B" {
			secondFound = true
		}
	}
	if !secondFound {
		t.Fatalf("expected parser to recover and still parse resource B, got %+v", file.Items)
	}
}

func TestParseStringTableBody(t *testing.T) {
	file, diags := parseSource(t, `STRINGTABLE { 1, "one" 2, "two" }`)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*StringTableBody)
	if len(body.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(body.Entries))
	}
	if body.Entries[0].ID != 1 || body.Entries[0].Text != "one" {
		t.Errorf("got %+v", body.Entries[0])
	}
}

func TestParseDialogBody(t *testing.T) {
	src := `MYDLG DIALOG 0, 0, 200, 100
CAPTION "Hello"
FONT 8, "MS Shell Dlg"
BEGIN
    LTEXT "Label", 100, 10, 10, 50, 10
    PUSHBUTTON "OK", IDOK, 10, 30, 50, 14
END`
	file, diags := parseSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*DialogBody)
	if body.W != 200 || body.H != 100 {
		t.Errorf("got w=%d h=%d", body.W, body.H)
	}
	if !body.HasCaption || body.Caption != "Hello" {
		t.Errorf("got caption %+v", body)
	}
	if len(body.Controls) != 2 {
		t.Fatalf("got %d controls, want 2", len(body.Controls))
	}
	if body.Controls[0].ControlKeyword != "ltext" {
		t.Errorf("got %q", body.Controls[0].ControlKeyword)
	}
}

func TestParseMenuBody(t *testing.T) {
	src := `MYMENU MENU
BEGIN
    POPUP "&File"
    BEGIN
        MENUITEM "&Open", 100
        MENUITEM SEPARATOR
        MENUITEM "E&xit", 101
    END
END`
	file, diags := parseSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*MenuBody)
	if len(body.Items) != 1 || !body.Items[0].IsPopup {
		t.Fatalf("got %+v", body.Items)
	}
	if len(body.Items[0].Children) != 3 {
		t.Fatalf("got %d children, want 3", len(body.Items[0].Children))
	}
	if !body.Items[0].Children[1].IsSeparator {
		t.Errorf("expected middle child to be a separator")
	}
}

func TestParseAcceleratorsBody(t *testing.T) {
	src := `MYACCEL ACCELERATORS
BEGIN
    "^C", 100, ASCII
    0x70, 200, VIRTKEY
END`
	file, diags := parseSource(t, src)
	if diags.HasErrors() {
		t.Fatalf("unexpected errors: %+v", diags.Records())
	}
	body := file.Items[0].Resource.Body.(*AcceleratorsBody)
	if len(body.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(body.Entries))
	}
	if !body.Entries[1].VirtKey {
		t.Errorf("expected second entry to carry VIRTKEY")
	}
}
