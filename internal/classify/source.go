package classify

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// sourceMaxBytes bounds how much of a sourced file is included in the
// prompt; larger files are summarized with a bracketed note instead, so a
// single classifier request can never balloon past a predictable size.
const sourceMaxBytes = 8 * 1024

// SensitivePaths names files that must never be read into a classifier
// prompt, regardless of the user's read permissions on them.
var SensitivePaths = []string{
	"/etc/shadow",
	"/etc/sudoers",
	"/etc/gshadow",
}

// SensitiveGlobs names glob patterns (matched against the resolved
// absolute path) that must never be read into a classifier prompt.
var SensitiveGlobs = []string{
	"*/.ssh/*",
	"*/.aws/credentials",
	"*/.aws/config",
	"*/.gnupg/*",
	"/etc/ssh/ssh_host_*",
}

var sourceCommandPattern = regexp.MustCompile(`^(?:source|\.)\s+([^\s;&|<>$()` + "`" + `"']+)\s*$`)

// InspectSource checks whether subcommand is a `source <path>` or
// `. <path>` invocation with no shell metacharacters in the path argument.
// If so, it resolves symlinks, refuses sensitive paths/globs, enforces the
// size cap, and returns the text to embed in a <SCRIPT_CONTENTS> block (or
// a bracketed note explaining why the contents are not included). It
// returns an empty string for anything that is not a bare source/dot
// invocation, and it never returns an error: a sourced file that cannot be
// inspected degrades to a note, it never aborts validation.
func InspectSource(subcommand string) string {
	matches := sourceCommandPattern.FindStringSubmatch(strings.TrimSpace(subcommand))
	if matches == nil {
		return ""
	}

	rawPath := matches[1]

	resolved, err := filepath.EvalSymlinks(rawPath)
	if err != nil {
		resolved = rawPath
	}

	abs, err := filepath.Abs(resolved)
	if err != nil {
		abs = resolved
	}

	if isSensitivePath(abs) {
		return fmt.Sprintf("[source target %q is a protected path; contents withheld]", rawPath)
	}

	f, err := os.Open(abs)
	if err != nil {
		return fmt.Sprintf("[source target %q could not be opened: %v]", rawPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Sprintf("[source target %q could not be stat'd: %v]", rawPath, err)
	}

	if info.Size() > sourceMaxBytes {
		return fmt.Sprintf("[source target %q is %d bytes, exceeding the %d byte inspection limit; contents withheld]",
			rawPath, info.Size(), sourceMaxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(f, sourceMaxBytes+1))
	if err != nil {
		return fmt.Sprintf("[source target %q could not be read: %v]", rawPath, err)
	}

	if len(body) > sourceMaxBytes {
		return fmt.Sprintf("[source target %q exceeds the %d byte inspection limit; contents withheld]", rawPath, sourceMaxBytes)
	}

	return string(body)
}

func isSensitivePath(absPath string) bool {
	for _, p := range SensitivePaths {
		if absPath == p {
			return true
		}
	}

	for _, pattern := range SensitiveGlobs {
		if ok, _ := filepath.Match(pattern, absPath); ok {
			return true
		}

		// filepath.Match's "*" never spans a "/", so a leading "*/" is
		// matched against every trailing run of path components instead.
		if rest, found := strings.CutPrefix(pattern, "*/"); found {
			for i := 0; i < len(absPath); i++ {
				if absPath[i] != '/' {
					continue
				}

				if ok, _ := filepath.Match(rest, absPath[i+1:]); ok {
					return true
				}
			}
		}
	}

	return false
}
