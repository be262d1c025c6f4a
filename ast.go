// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

// NameOrOrdinal is a resource name or id that may be given as a string or
// as a 16-bit ordinal (spec.md GLOSSARY "Ordinal id").
type NameOrOrdinal struct {
	IsOrdinal bool
	Ordinal   uint16
	Name      string
}

// LanguageID packs a primary/sublanguage pair into the u16 LANGID layout
// spec.md §4.5 describes: (sub << 10) | primary.
func LanguageID(primary, sub uint16) uint16 {
	return (sub << 10) | (primary & 0x3ff)
}

// LanguageStmt is a `LANGUAGE primary, sub` statement (spec.md §4.4
// Preamble, §4.5 "Language scoping").
type LanguageStmt struct {
	Primary uint16
	Sub     uint16
}

// CommonOpts are the optional clauses any ResourceDef may carry before its
// body: a resource-level LANGUAGE/CHARACTERISTICS/VERSION override and
// Win32 memory-flag keywords (PRELOAD, DISCARDABLE, PURE, ...).
type CommonOpts struct {
	Language        *LanguageStmt
	Characteristics *uint32
	Version         *uint32
	MemoryFlags     uint16
	MemoryFlagsSet  bool
}

// ResourceTypeRef names a resource's type: a predefined keyword (ICON,
// RCDATA, DIALOG, ...), a raw numeric ordinal, or an arbitrary
// user-defined string type (spec.md §4.4 "Unknown type tags are treated
// as user-defined and use raw-data body rules").
type ResourceTypeRef struct {
	IsOrdinal  bool
	Ordinal    uint16
	Keyword    string // lower-cased builtin keyword, "" if not builtin
	CustomName string // user-defined string type name, set iff !IsOrdinal && Keyword == ""
}

// Body is implemented by every resource body grammar spec.md §4.4 lists.
type Body interface{ isBody() }

// ResourceDef is one top-level `NameId TypeId CommonOpts Body` production
// (spec.md §4.4).
type ResourceDef struct {
	Name      NameOrOrdinal
	Type      ResourceTypeRef
	Common    CommonOpts
	Body      Body
	NameToken Token
	TypeToken Token
}

// PreambleStmt is a top-level LANGUAGE/VERSION/CHARACTERISTICS statement
// that updates the running defaults for subsequent ResourceDefs
// (spec.md §4.4 File/Preamble, §4.5 "Language scoping").
type PreambleStmt struct {
	Language        *LanguageStmt
	Version         *uint32
	Characteristics *uint32
}

// RCFile is the root AST node (spec.md §4.4 "File = { ResourceDef |
// Preamble } EOF").
type RCFile struct {
	Items []FileItem
}

// FileItem is either a PreambleStmt or a *ResourceDef, in source order
// (order matters: a LANGUAGE statement only affects ResourceDefs that
// follow it).
type FileItem struct {
	Preamble *PreambleStmt
	Resource *ResourceDef
}

// --- Expression grammar (spec.md §4.4 "Expression grammar") ---

// ExprOp is a binary or unary numeric operator.
type ExprOp int

const (
	OpNone ExprOp = iota
	OpAdd
	OpAnd // &
	OpOr  // |
	OpNeg // unary -
	OpNot // unary ~
)

// Expr is a u32, wrap-on-overflow numeric expression tree.
type Expr struct {
	Op       ExprOp
	Value    uint32 // leaf literal
	Children []*Expr
}

// Eval evaluates the expression tree to its u32 value, wrapping on
// overflow exactly like Go's native uint32 arithmetic (spec.md §4.4).
func (e *Expr) Eval() uint32 {
	if e == nil {
		return 0
	}
	switch e.Op {
	case OpNone:
		return e.Value
	case OpNeg:
		return -e.Children[0].Eval()
	case OpNot:
		return ^e.Children[0].Eval()
	case OpAdd:
		v := e.Children[0].Eval()
		for _, c := range e.Children[1:] {
			v += c.Eval()
		}
		return v
	case OpAnd:
		v := e.Children[0].Eval()
		for _, c := range e.Children[1:] {
			v &= c.Eval()
		}
		return v
	case OpOr:
		v := e.Children[0].Eval()
		for _, c := range e.Children[1:] {
			v |= c.Eval()
		}
		return v
	default:
		return 0
	}
}

// --- Raw data body (spec.md §4.4 Body = RawDataBody | ...) ---

// RawDataItem is a single comma/whitespace-separated element of a raw
// data block: either a numeric expression or a string literal.
type RawDataItem struct {
	IsString bool
	IsLong   bool // numeric literal suffixed to force a DWORD, not a WORD
	Wide     bool // L"..." string
	Number   uint32
	Text     string
}

// RawDataBody backs RCDATA and any user-defined resource type (spec.md
// §4.4, §4.5).
type RawDataBody struct {
	Items []RawDataItem
}

func (*RawDataBody) isBody() {}

// FileBody loads resource data straight from an external file by path —
// BITMAP, ICON, CURSOR, FONT and similar "resource from file" statements
// (spec.md §4.5 "bitmaps/icons/cursors read their file bytes").
type FileBody struct {
	Path string
}

func (*FileBody) isBody() {}

// --- STRINGTABLE (spec.md §4.5 "String tables") ---

// StringTableEntry is one `id "value"` pair inside a STRINGTABLE block.
type StringTableEntry struct {
	ID        uint32
	Text      string
	IDToken   Token
	TextToken Token
}

// StringTableBody holds every entry declared inside one STRINGTABLE
// BEGIN...END block. A single resource file may contain several such
// blocks (under different LANGUAGE scopes); the compiler merges them by
// (language, id>>4) bundle.
type StringTableBody struct {
	Entries []StringTableEntry
}

func (*StringTableBody) isBody() {}

// --- ACCELERATORS (spec.md §4.5) ---

// AcceleratorEntry is one `event, id [, flags...]` line.
type AcceleratorEntry struct {
	IsASCIIChar bool // event given as a quoted single character
	Char        byte
	Event       uint32 // numeric event code when !IsASCIIChar
	ID          uint32
	VirtKey     bool
	NoInvert    bool
	Alt         bool
	Shift       bool
	Control     bool
	ASCIIFlag   bool
}

// AcceleratorsBody is an ACCELERATORS resource body.
type AcceleratorsBody struct {
	Entries []AcceleratorEntry
}

func (*AcceleratorsBody) isBody() {}

// --- MENU / MENUEX (spec.md §4.5 "menus with nested MENUITEM/POPUP") ---

// MenuItemNode is either a leaf MENUITEM or a POPUP with children.
type MenuItemNode struct {
	Text        string
	ID          uint32
	IsSeparator bool
	IsPopup     bool
	Checked     bool
	Grayed      bool
	Disabled    bool
	MenuBreak   bool
	MenuBarBreak bool
	HelpTopID   uint32 // MENUEX only
	Children    []MenuItemNode
}

// MenuBody is a MENU or MENUEX resource body.
type MenuBody struct {
	IsEx  bool
	Items []MenuItemNode
}

func (*MenuBody) isBody() {}

// --- DIALOG / DIALOGEX (spec.md §4.5 "Dialog controls") ---

// FontStmt is a DIALOG's optional FONT statement.
type FontStmt struct {
	PointSize     uint16
	Typeface      string
	Weight        uint16 // DIALOGEX only
	Italic        bool   // DIALOGEX only
	CharSet       uint8  // DIALOGEX only
}

// DialogControl is one control line inside a DIALOG/DIALOGEX body.
type DialogControl struct {
	ControlKeyword string // CONTROL, LTEXT, PUSHBUTTON, EDITTEXT, ...
	Text           string
	HasText        bool
	ID             NameOrOrdinal
	X, Y, W, H     int32
	Style          uint32
	StyleSet       bool
	ExStyle        uint32
	ClassAtom      uint16 // predefined window class ordinal, 0 if ClassName set
	ClassName      string
	HelpID         uint32 // DIALOGEX only
}

// DialogBody is a DIALOG or DIALOGEX resource body.
type DialogBody struct {
	IsEx       bool
	X, Y, W, H int32
	HelpID     uint32 // DIALOGEX only
	Style      uint32
	StyleSet   bool
	ExStyle    uint32
	Caption    string
	HasCaption bool
	Font       *FontStmt
	MenuRef    *NameOrOrdinal
	ClassRef   *NameOrOrdinal
	Controls   []DialogControl
}

func (*DialogBody) isBody() {}

// --- VERSIONINFO (spec.md §4.5, §4.6) ---

// VersionInfoBody mirrors the fixed VS_FIXEDFILEINFO fields plus the
// StringFileInfo/VarFileInfo blocks (grounded on the teacher's own
// version.go VsVersionInfo/StringFileInfo/VarFileInfo structures, which
// describe the exact binary layout we must now emit rather than parse).
type VersionInfoBody struct {
	FileVersion    [4]uint16
	ProductVersion [4]uint16
	FileFlagsMask  uint32
	FileFlags      uint32
	FileOS         uint32
	FileType       uint32
	FileSubtype    uint32

	StringTables []VersionStringTable
	VarBlocks    []VersionVarBlock
}

// VersionStringTable is one `BLOCK "langCP" { VALUE "k","v" ... }` block.
type VersionStringTable struct {
	LangAndCodePage string // 8 hex digits, e.g. "040904B0"
	Values          []VersionStringValue
}

// VersionStringValue is a single `VALUE "key", "value"` line.
type VersionStringValue struct {
	Key   string
	Value string
}

// VersionVarBlock is a `BLOCK "VarFileInfo" { VALUE "Translation", a, b }`
// block.
type VersionVarBlock struct {
	Name   string
	Values []uint32
}

func (*VersionInfoBody) isBody() {}
