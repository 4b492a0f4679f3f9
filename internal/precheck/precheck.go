// Package precheck implements the Pre-Check Gate: cheap, deterministic
// checks that run before any LM call. A non-nil Verdict from Check means
// the Decomposition & Classification Engine is skipped entirely for this
// Command.
package precheck

import (
	"fmt"
	"strings"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/shellast"
)

// MaxCommandLength is MAX_COMMAND_LENGTH from spec §3: the maximum size,
// in bytes, of a Command before the Pre-Check Gate rejects it outright.
const MaxCommandLength = 4096

// Check runs the Pre-Check Gate against a raw command string. It returns
// (verdict, true) when a deterministic verdict was reached — the caller
// must use that verdict and must not proceed to classification. It
// returns (zero, false) when none of the checks apply, including when the
// shell-grammar parser itself fails: a command that cannot be parsed is
// never blocked for that reason alone, it falls through to single-pass
// classification of the raw string.
func Check(command string) (classify.Verdict, bool) {
	if strings.TrimSpace(command) == "" {
		return classify.Verdict{
			Action:     classify.Block,
			Reason:     "Empty command",
			Confidence: 1.0,
		}, true
	}

	if len(command) > MaxCommandLength {
		return classify.Verdict{
			Action: classify.Block,
			Reason: fmt.Sprintf(
				"Command is %d bytes, exceeding the %d byte limit", len(command), MaxCommandLength,
			),
			Confidence: 1.0,
		}, true
	}

	file, err := shellast.Parse(command)
	if err != nil {
		// Graceful fallback: a parse error is never itself grounds to block.
		return classify.Verdict{}, false
	}

	if shellast.HasVariableInCommandPosition(file) {
		return classify.Verdict{
			Action:     classify.Warn,
			Reason:     "Variable expansion in command position with preceding assignment",
			Confidence: 1.0,
		}, true
	}

	return classify.Verdict{}, false
}
