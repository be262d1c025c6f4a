// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

//go:build !windows

package rc

// EnableUTF8Console is a no-op outside Windows: every other terminal this
// tool runs under is already expected to be UTF-8.
func EnableUTF8Console() error { return nil }
