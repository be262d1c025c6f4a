// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"os"
	"path/filepath"
)

// Predefined RT_* resource type ordinals (spec.md §4.5, §GLOSSARY).
const (
	rtCursor       = 1
	rtBitmap       = 2
	rtIcon         = 3
	rtMenu         = 4
	rtDialog       = 5
	rtString       = 6
	rtFontDir      = 7
	rtFont         = 8
	rtAccelerator  = 9
	rtRCData       = 10
	rtMessageTable = 11
	rtGroupCursor  = 12
	rtGroupIcon    = 14
	rtVersion      = 16
	rtDlgInclude   = 17
	rtPlugPlay     = 19
	rtVxD          = 20
	rtHTML         = 23
	rtManifest     = 24
)

var builtinTypeOrdinals = map[string]uint16{
	"cursor": rtCursor, "bitmap": rtBitmap, "icon": rtIcon,
	"menu": rtMenu, "menuex": rtMenu,
	"dialog": rtDialog, "dialogex": rtDialog,
	"stringtable": rtString, "fontdir": rtFontDir, "font": rtFont,
	"accelerators": rtAccelerator, "rcdata": rtRCData,
	"messagetable": rtMessageTable, "versioninfo": rtVersion,
	"dlginclude": rtDlgInclude, "plugplay": rtPlugPlay, "vxd": rtVxD,
	"html": rtHTML, "manifest": rtManifest,
}

// resourceTypeRefToWire converts a parsed ResourceTypeRef into the wire
// NameOrOrdinal a RESOURCEHEADER actually stores.
func resourceTypeRefToWire(t ResourceTypeRef) NameOrOrdinal {
	if t.IsOrdinal {
		return NameOrOrdinal{IsOrdinal: true, Ordinal: t.Ordinal}
	}
	if ord, ok := builtinTypeOrdinals[t.Keyword]; ok {
		return NameOrOrdinal{IsOrdinal: true, Ordinal: ord}
	}
	return NameOrOrdinal{Name: t.CustomName}
}

// compileState tracks the running LANGUAGE/VERSION/CHARACTERISTICS
// defaults a preamble statement updates for every ResourceDef that
// follows it (spec.md §4.4, §4.5 "Language scoping").
type compileState struct {
	language        uint16
	version         uint32
	characteristics uint32
}

// Compile drives the full AST -> .res pipeline: it walks file in source
// order, resolves running LANGUAGE/VERSION/CHARACTERISTICS defaults,
// dispatches each ResourceDef to its per-type binary emitter, merges
// every STRINGTABLE block into (language, id>>4) bundles, and serializes
// the whole set with EncodeRES (spec.md §4, §4.5, §4.6). Diagnostics
// encountered while compiling (as opposed to parsing) are appended to
// diags; callers should check diags.HasErrors() before trusting the
// returned bytes.
func Compile(file *RCFile, opts *Options, diags *Diagnostics) []byte {
	state := compileState{language: opts.DefaultLanguage}
	if state.language == 0 {
		state.language = DefaultLANGID
	}

	var records []ResourceRecord
	stringTablesByLang := map[uint16][]*StringTableBody{}
	iconGroupSeq := uint16(1)

	for _, item := range file.Items {
		if item.Preamble != nil {
			if item.Preamble.Language != nil {
				state.language = LanguageID(item.Preamble.Language.Primary, item.Preamble.Language.Sub)
			}
			if item.Preamble.Version != nil {
				state.version = *item.Preamble.Version
			}
			if item.Preamble.Characteristics != nil {
				state.characteristics = *item.Preamble.Characteristics
			}
			continue
		}

		def := item.Resource
		lang := state.language
		if def.Common.Language != nil {
			lang = LanguageID(def.Common.Language.Primary, def.Common.Language.Sub)
		}
		version := state.version
		if def.Common.Version != nil {
			version = *def.Common.Version
		}
		characteristics := state.characteristics
		if def.Common.Characteristics != nil {
			characteristics = *def.Common.Characteristics
		}

		base := ResourceRecord{
			Type:            resourceTypeRefToWire(def.Type),
			Name:            def.Name,
			MemoryFlags:     def.Common.MemoryFlags,
			LangID:          lang,
			Version:         version,
			Characteristics: characteristics,
		}

		switch body := def.Body.(type) {
		case *StringTableBody:
			stringTablesByLang[lang] = append(stringTablesByLang[lang], body)

		case *DialogBody:
			base.Data = compileDialog(body, opts.DefaultCodePage)
			records = append(records, base)

		case *MenuBody:
			if body.IsEx {
				base.Data = compileMenuEx(body)
			} else {
				base.Data = compileMenu(body)
			}
			records = append(records, base)

		case *AcceleratorsBody:
			base.Data = compileAccelerators(body)
			records = append(records, base)

		case *VersionInfoBody:
			base.Data = compileVersionInfo(body)
			records = append(records, base)

		case *RawDataBody:
			base.Data = compileRawData(body, opts.DefaultCodePage)
			records = append(records, base)

		case *FileBody:
			recs, nextSeq, err := compileFileBody(def, base, opts, iconGroupSeq)
			if err != nil {
				diags.AppendToken(KindError, ErrExpectedSomethingElse, def.NameToken, false)
				continue
			}
			iconGroupSeq = nextSeq
			records = append(records, recs...)

		default:
			// Unknown-keyword resource types degrade to raw data already at
			// parse time (resourceTypesForbidRawData); reaching here with a
			// nil body means an earlier parse error already left def.Body
			// unset, so there is nothing to emit.
		}
	}

	bundles := bundleStringTables(stringTablesByLang, diags)
	for _, b := range bundles {
		records = append(records, ResourceRecord{
			Type:   NameOrOrdinal{IsOrdinal: true, Ordinal: rtString},
			Name:   NameOrOrdinal{IsOrdinal: true, Ordinal: b.block + 1},
			LangID: b.lang,
			Data:   compileStringTableBundle(b, opts.NullTerminateStringTableStrings),
		})
	}

	return EncodeRES(records)
}

// compileRawData serializes an RCDATA/user-defined-type body: numeric
// items as u16 (or u32 when an 'L' suffix was seen) and string items as
// their decoded bytes, back to back with no separators (spec.md §4.5).
func compileRawData(body *RawDataBody, codePage uint32) []byte {
	var out []byte
	for _, item := range body.Items {
		if item.IsString {
			if item.Wide {
				out = append(out, encodeWideStringNoTerm(item.Text)...)
			} else {
				out = append(out, encodeNarrowStringNoTerm(item.Text, codePage)...)
			}
			continue
		}
		if item.IsLong {
			out = append(out, byte(item.Number), byte(item.Number>>8), byte(item.Number>>16), byte(item.Number>>24))
		} else {
			out = append(out, byte(item.Number), byte(item.Number>>8))
		}
	}
	return out
}

func encodeWideStringNoTerm(s string) []byte {
	var out []byte
	for _, r := range s {
		if r <= 0xFFFF {
			out = append(out, byte(r), byte(r>>8))
		}
	}
	return out
}

func encodeNarrowStringNoTerm(s string, codePage uint32) []byte {
	// Windows-1252 and UTF-8 round-trip through their own byte encodings
	// for the ASCII-range text RC literals overwhelmingly contain; a full
	// general-purpose encoder is out of scope for raw data emission.
	return []byte(s)
}

// compileFileBody dispatches a file-sourced resource body (ICON, CURSOR,
// BITMAP, FONT, MESSAGETABLE, HTML, MANIFEST) to the right ingestion path
// and, for ICON/CURSOR, synthesizes the matching RT_ICON/RT_GROUP_ICON
// (or RT_CURSOR/RT_GROUP_CURSOR) record pair (spec.md §4.5).
func compileFileBody(def *ResourceDef, base ResourceRecord, opts *Options, nextSeq uint16) ([]ResourceRecord, uint16, error) {
	fb := def.Body.(*FileBody)
	path := fb.Path
	if !filepath.IsAbs(path) {
		path = resolveIncludePath(path, opts)
	}

	switch def.Type.Keyword {
	case "icon", "cursor":
		isCursor := def.Type.Keyword == "cursor"
		entries, images, err := loadIconOrCursorFile(path, isCursor)
		if err != nil {
			return nil, nextSeq, err
		}
		var recs []ResourceRecord
		ids := make([]uint16, len(images))
		for i, img := range images {
			id := nextSeq
			nextSeq++
			ids[i] = id
			imgType := uint16(rtIcon)
			if isCursor {
				imgType = rtCursor
			}
			recs = append(recs, ResourceRecord{
				Type:   NameOrOrdinal{IsOrdinal: true, Ordinal: imgType},
				Name:   NameOrOrdinal{IsOrdinal: true, Ordinal: id},
				LangID: base.LangID,
				Data:   img,
			})
		}
		groupType := uint16(rtGroupIcon)
		if isCursor {
			groupType = rtGroupCursor
		}
		base.Type = NameOrOrdinal{IsOrdinal: true, Ordinal: groupType}
		base.Data = compileGroupIcon(entries, ids, isCursor)
		recs = append(recs, base)
		return recs, nextSeq, nil

	case "bitmap":
		data, err := loadBitmapFile(path)
		if err != nil {
			return nil, nextSeq, err
		}
		base.Data = data
		return []ResourceRecord{base}, nextSeq, nil

	default:
		data, err := loadFileBytes(path)
		if err != nil {
			return nil, nextSeq, err
		}
		base.Data = data
		return []ResourceRecord{base}, nextSeq, nil
	}
}

// resolveIncludePath searches ExtraIncludePaths (then the working
// directory) for a relative resource file reference (spec.md §4.7 "/I").
func resolveIncludePath(path string, opts *Options) string {
	for _, dir := range opts.ExtraIncludePaths {
		candidate := filepath.Join(dir, path)
		if fileExists(candidate) {
			return candidate
		}
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
