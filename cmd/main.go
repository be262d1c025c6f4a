// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command rc compiles a preprocessed Windows .rc resource script into a
// binary .res file, matching rc.exe's command-line grammar (spec.md §4.7).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/edsrzf/mmap-go"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"

	"github.com/saferwall/rc"
)

func showHelp() {
	fmt.Fprintln(os.Stderr, `usage: rc [options] file.rc

options:
  /D sym[=val]     define a preprocessor symbol
  /U sym           undefine a preprocessor symbol (sticky)
  /I path          add an include search path
  /x               ignore the INCLUDE environment variable
  /fo file         write the compiled resources to file
  /l id            set the default LANGID (hex)
  /ln tag          set the default language by tag (e.g. en-US)
  /c page          set the default code page
  /sl pct          string literal length budget, percent of 8192
  /n               NUL-terminate STRINGTABLE strings
  /y               silence duplicate control id warnings
  /w               warn instead of error on an unknown code page
  /v               verbose
  /nologo          suppress the banner`)
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		showHelp()
	}

	opts := rc.NewOptions()
	diags := rc.NewDiagnostics()

	args := os.Args[1:]
	var input string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "" {
			continue
		}
		if arg[0] != '/' && arg[0] != '-' {
			if input != "" {
				fail("multiple input files specified")
			}
			input = arg
			continue
		}

		name, value, hasValue := splitOption(arg[1:])
		switch strings.ToLower(name) {
		case "nologo":
			opts.NoLogo = true
		case "v":
			opts.Verbose = true
		case "x":
			opts.IgnoreIncludeEnv = true
		case "n":
			opts.NullTerminateStringTableStrings = true
		case "y":
			opts.SilenceDuplicateControlIDWarnings = true
		case "w":
			opts.WarnOnInvalidCodePage = true
		case "no-preprocess":
			opts.Preprocess = false
		case "d":
			sym := value
			if !hasValue {
				i++
				sym = argOrFail(args, i)
			}
			opts.Define(stripDefineValue(sym))
		case "u":
			sym := value
			if !hasValue {
				i++
				sym = argOrFail(args, i)
			}
			opts.Undefine(sym)
		case "i":
			path := value
			if !hasValue {
				i++
				path = argOrFail(args, i)
			}
			expanded, err := homedir.Expand(path)
			if err != nil {
				expanded = path
			}
			opts.ExtraIncludePaths = append(opts.ExtraIncludePaths, expanded)
		case "fo":
			out := value
			if !hasValue {
				i++
				out = argOrFail(args, i)
			}
			opts.OutputFilename = out
		case "l":
			lang := value
			if !hasValue {
				i++
				lang = argOrFail(args, i)
			}
			id, err := strconv.ParseUint(strings.TrimPrefix(lang, "0x"), 16, 16)
			if err != nil {
				fail(fmt.Sprintf("invalid /l language id %q", lang))
			}
			opts.DefaultLanguage = uint16(id)
		case "ln":
			tag := value
			if !hasValue {
				i++
				tag = argOrFail(args, i)
			}
			id, ok := rc.LookupLanguageTag(tag)
			if !ok {
				fail(fmt.Sprintf("unrecognized language tag %q", tag))
			}
			opts.DefaultLanguage = id
		case "c":
			page := value
			if !hasValue {
				i++
				page = argOrFail(args, i)
			}
			n, err := strconv.ParseUint(page, 10, 32)
			if err != nil {
				fail(fmt.Sprintf("invalid /c code page %q", page))
			}
			opts.DefaultCodePage = uint32(n)
		case "sl":
			pct := value
			if !hasValue {
				i++
				pct = argOrFail(args, i)
			}
			n, err := strconv.ParseUint(pct, 10, 32)
			if err != nil {
				fail(fmt.Sprintf("invalid /sl percentage %q", pct))
			}
			opts.MaxStringLiteralCodepoints = int(n) * rc.DefaultMaxStringLiteralCodepoints / 100
		case "?", "help":
			showHelp()
		default:
			fail(fmt.Sprintf("unrecognized option %q", arg))
		}
	}

	if input == "" {
		showHelp()
	}
	opts.InputFilename = input
	if opts.OutputFilename == "" {
		ext := filepath.Ext(input)
		opts.OutputFilename = strings.TrimSuffix(input, ext) + ".res"
	}

	if !opts.NoLogo {
		fmt.Fprintln(os.Stderr, "Resource Compiler (rc)")
	}

	_ = rc.EnableUTF8Console()

	os.Exit(run(opts, diags, termenv.ColorProfile()))
}

func run(opts *rc.Options, diags *rc.Diagnostics, profile termenv.Profile) int {
	f, err := os.Open(opts.InputFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rc: %v\n", err)
		return 1
	}
	defer f.Close()

	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rc: mapping %s: %v\n", opts.InputFilename, err)
		return 1
	}
	defer data.Unmap()

	stripped := rc.RemoveComments(data)
	renderer := rc.NewRenderer(stripped, nil, profile)
	renderer.AddSink(os.Stderr)

	file := rc.ParseFile(stripped, opts.DefaultCodePage, opts.MaxStringLiteralCodepoints, diags)

	if diags.HasErrors() {
		renderer.Render(diags)
		return 1
	}

	res := rc.Compile(file, opts, diags)
	if diags.HasErrors() {
		renderer.Render(diags)
		return 1
	}

	if err := os.WriteFile(opts.OutputFilename, res, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "rc: writing %s: %v\n", opts.OutputFilename, err)
		return 1
	}

	renderer.Render(diags)
	return 0
}

// splitOption splits `/Dfoo=bar`-style packed options into name and an
// inline value, reporting whether a value was actually packed in (rc.exe
// supports both `/D NAME` and `/DNAME` forms; spec.md §4.7).
func splitOption(body string) (name, value string, hasValue bool) {
	knownLong := []string{"nologo", "no-preprocess", "ln", "fo", "sl"}
	for _, k := range knownLong {
		if strings.HasPrefix(strings.ToLower(body), k) {
			rest := body[len(k):]
			if rest == "" {
				return k, "", false
			}
			return k, strings.TrimPrefix(rest, " "), true
		}
	}
	if len(body) == 0 {
		return "", "", false
	}
	// Single-letter switches may pack their value directly: /Dfoo, /Ipath.
	head := body[:1]
	rest := body[1:]
	if rest == "" {
		return head, "", false
	}
	return head, rest, true
}

func stripDefineValue(sym string) string {
	if idx := strings.IndexByte(sym, '='); idx >= 0 {
		return sym[:idx]
	}
	return sym
}

func argOrFail(args []string, i int) string {
	if i >= len(args) {
		fail("missing argument for option")
	}
	return args[i]
}

func fail(message string) {
	fmt.Fprintf(os.Stderr, "rc: %s\n", message)
	os.Exit(1)
}
