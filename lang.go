// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import "strings"

// langTagIDs maps a handful of common BCP-47-ish language tags (as the
// CLI's `/ln <tag>` option and LANGUAGE defaults use) to their packed
// LANGID value. This is the practical subset rc.exe's own table covers
// most resource authors reach for; anything else must be supplied
// numerically via LANGUAGE primary, sub (spec.md §4.5 "Language
// scoping", §4.7 CLI options).
var langTagIDs = map[string]uint16{
	"en":    LanguageID(0x09, 0x01),
	"en-us": LanguageID(0x09, 0x01),
	"en-gb": LanguageID(0x09, 0x02),
	"fr":    LanguageID(0x0c, 0x01),
	"fr-fr": LanguageID(0x0c, 0x01),
	"de":    LanguageID(0x07, 0x01),
	"de-de": LanguageID(0x07, 0x01),
	"es":    LanguageID(0x0a, 0x01),
	"es-es": LanguageID(0x0a, 0x01),
	"it":    LanguageID(0x10, 0x01),
	"ja":    LanguageID(0x11, 0x01),
	"ja-jp": LanguageID(0x11, 0x01),
	"ko":    LanguageID(0x12, 0x01),
	"ko-kr": LanguageID(0x12, 0x01),
	"zh-cn": LanguageID(0x04, 0x02),
	"zh-tw": LanguageID(0x04, 0x01),
	"ru":    LanguageID(0x19, 0x01),
	"ru-ru": LanguageID(0x19, 0x01),
	"pt-br": LanguageID(0x16, 0x01),
	"pl":    LanguageID(0x15, 0x01),
	"nl":    LanguageID(0x13, 0x01),
}

// LookupLanguageTag resolves a BCP-47-ish tag to a LANGID, case
// insensitively. The default (primary 0x09, sub 0x01, "en-US")
// is what rc.exe falls back to when no LANGUAGE statement is ever seen
// (spec.md §4.5).
func LookupLanguageTag(tag string) (uint16, bool) {
	id, ok := langTagIDs[strings.ToLower(tag)]
	return id, ok
}

// DefaultLANGID is the LANGID active before any LANGUAGE statement or
// `/ln`/`/l` CLI override is processed (spec.md §4.5, §4.7).
const DefaultLANGID = uint16(0x0409) // en-US
