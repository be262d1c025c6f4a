// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build windows

package rc

import "golang.org/x/sys/windows"

// EnableUTF8Console switches the current process's console output code
// page to UTF-8 so diagnostic rendering of non-ASCII resource strings
// displays correctly (spec.md §5 Non-goals: "the prior code page is not
// restored on exit").
func EnableUTF8Console() error {
	return windows.SetConsoleOutputCP(65001)
}
