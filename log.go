// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package rc

import (
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// newLogger builds the default verbose-gated logger shared by every pipeline
// stage. It mirrors the logger construction the teacher performs in
// file.go's New/NewBytes: a std logger wrapped in a level filter, exposed to
// callers as a *log.Helper.
func newLogger(verbose bool) *log.Helper {
	base := log.NewStdLogger(os.Stderr)
	level := log.LevelInfo
	if verbose {
		level = log.LevelDebug
	}
	return log.NewHelper(log.NewFilter(base, log.FilterLevel(level)))
}
