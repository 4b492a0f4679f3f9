package shellrepl

import "os/exec"

// exitCodeOf extracts a child process's exit code from the error returned
// by (*exec.Cmd).Run, per spec §6 ("Exit codes... the command's own code
// for run commands"). A non-ExitError failure (e.g. the binary could not
// be found) reports 1.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}

	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}

	return 1
}
