package vault

import "strings"

// DangerousEnvSet is the fixed set of environment variable names that can
// redirect bash's own control flow (via hooks like BASH_ENV) or invoke an
// attacker-controlled program as a trusted helper (EDITOR, PAGER, ...).
var DangerousEnvSet = map[string]bool{
	"BASH_ENV":      true,
	"ENV":           true,
	"PROMPT_COMMAND": true,
	"EDITOR":        true,
	"VISUAL":        true,
	"PAGER":         true,
	"GIT_PAGER":     true,
	"MANPAGER":      true,
}

// BashFuncPrefix marks an exported shell function in the environment
// (BASH_FUNC_name%%=() {...}).
const BashFuncPrefix = "BASH_FUNC_"

// IsDangerousEnvKey reports whether key must never appear in a sanitized
// environment handed to the sandboxed bash subprocess.
func IsDangerousEnvKey(key string) bool {
	return DangerousEnvSet[key] || strings.HasPrefix(key, BashFuncPrefix)
}

// secretKeySuffixes identifies credential-shaped environment variables that
// must be stripped before a subcommand's environment expansion is shown to
// the classifier (spec §4.4.2: the SAFE environment excludes secrets).
var secretKeySuffixes = []string{"_API_KEY", "_TOKEN", "_SECRET", "_PASSWORD", "_CREDENTIALS"}

// IsSecretKey reports whether key looks like it holds a credential.
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)

	for _, suffix := range secretKeySuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}

	return false
}
