package shellast

import "github.com/vigilshell/vigilsh/internal/vault"

// SafeEnviron filters a host environment snapshot down to the variables
// that are safe to substitute into a command string before it is shown to
// the classifier: no dangerous behavior-changing variables
// (vault.DangerousEnvSet, BASH_FUNC_* shell function exports) and no
// variables that look like credentials (vault.IsSecretKey) — neither
// should ever leak into a classifier prompt or an execution log.
func SafeEnviron(hostEnv map[string]string) map[string]string {
	safe := make(map[string]string, len(hostEnv))

	for k, v := range hostEnv {
		if vault.IsDangerousEnvKey(k) || vault.IsSecretKey(k) {
			continue
		}

		safe[k] = v
	}

	return safe
}
