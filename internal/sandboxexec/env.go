//go:build linux

package sandboxexec

import (
	"sort"

	"github.com/vigilshell/vigilsh/internal/vault"
)

// envSandboxerHash and envMode name the security-critical identifiers the
// LD_PRELOAD sandboxer needs in the child's own environment, re-added in
// production after the dangerous-key filtering pass below. They are never themselves treated as
// dangerous: they configure the sandboxer, they don't change bash's own
// startup behavior.
const (
	envSandboxerHash = "VIGILSH_SANDBOXER_HASH"
	envMode          = "VIGILSH_MODE"
)

// SanitizeEnviron builds the sorted KEY=VALUE slice passed to the child
// process. It replaces the teacher's envMapToSliceSorted with an added
// filtering pass: every member of vault.DangerousEnvSet and every
// BASH_FUNC_-prefixed key (an exported shell function, bash's own
// serialization of `export -f`) is dropped before sorting, so a name like
// BASH_ENV or a smuggled shell function cannot alter how the sandboxed
// bash starts up. API key variables are intentionally preserved — the
// classifier that consults them runs in this same process, not the child.
func SanitizeEnviron(hostEnv map[string]string) []string {
	keys := make([]string, 0, len(hostEnv))

	for k := range hostEnv {
		if vault.IsDangerousEnvKey(k) {
			continue
		}

		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+hostEnv[k])
	}

	return out
}

// reinjectProduction appends the production-mode security identifiers the
// sandboxer needs, after SanitizeEnviron has already stripped dangerous
// keys. These are appended rather than sorted back in: a later duplicate
// key in os/exec's Env slice wins, so appending is sufficient and avoids
// re-sorting the whole slice.
func reinjectProduction(env []string, sandboxerHash string, mode vault.Mode) []string {
	return append(env,
		envSandboxerHash+"="+sandboxerHash,
		envMode+"="+string(mode),
	)
}
