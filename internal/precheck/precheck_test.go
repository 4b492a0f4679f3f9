package precheck_test

import (
	"strings"
	"testing"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/precheck"
)

func Test_Check_EmptyCommand(t *testing.T) {
	t.Parallel()

	verdict, handled := precheck.Check("")
	if !handled {
		t.Fatalf("expected the Pre-Check Gate to handle an empty command")
	}

	if verdict.Action != classify.Block || verdict.Reason != "Empty command" || verdict.Confidence != 1.0 {
		t.Fatalf("verdict = %+v, want block/Empty command/1.0", verdict)
	}
}

func Test_Check_WhitespaceOnlyCommand(t *testing.T) {
	t.Parallel()

	verdict, handled := precheck.Check("   \t\n  ")
	if !handled || verdict.Action != classify.Block {
		t.Fatalf("verdict = %+v, handled = %v, want block", verdict, handled)
	}
}

func Test_Check_OversizeCommand(t *testing.T) {
	t.Parallel()

	oversize := strings.Repeat("x", precheck.MaxCommandLength+1)

	verdict, handled := precheck.Check(oversize)
	if !handled {
		t.Fatalf("expected the Pre-Check Gate to handle an oversize command")
	}

	if verdict.Action != classify.Block {
		t.Fatalf("verdict.Action = %q, want block", verdict.Action)
	}

	if !strings.Contains(verdict.Reason, "4097") || !strings.Contains(verdict.Reason, "4096") {
		t.Fatalf("verdict.Reason = %q, want it to cite both the actual length and the limit", verdict.Reason)
	}
}

func Test_Check_ExactLimitIsNotOversize(t *testing.T) {
	t.Parallel()

	exact := strings.Repeat("x", precheck.MaxCommandLength)

	_, handled := precheck.Check(exact)
	if handled {
		t.Fatalf("a command of exactly MaxCommandLength bytes must not be rejected as oversize")
	}
}

func Test_Check_VariableInCommandPosition(t *testing.T) {
	t.Parallel()

	verdict, handled := precheck.Check("a=ba; b=sh; $a$b")
	if !handled {
		t.Fatalf("expected the Pre-Check Gate to flag variable-in-command-position")
	}

	if verdict.Action != classify.Warn {
		t.Fatalf("verdict.Action = %q, want warn", verdict.Action)
	}

	if verdict.Reason != "Variable expansion in command position with preceding assignment" {
		t.Fatalf("verdict.Reason = %q", verdict.Reason)
	}
}

func Test_Check_PlainCommandFallsThrough(t *testing.T) {
	t.Parallel()

	_, handled := precheck.Check("ls -la /tmp")
	if handled {
		t.Fatalf("a plain command must fall through to the classification engine")
	}
}

func Test_Check_ParseFailureFallsThrough(t *testing.T) {
	t.Parallel()

	_, handled := precheck.Check("echo 'unterminated")
	if handled {
		t.Fatalf("a parse failure must fall through, never block on its own")
	}
}
