package shellast_test

import (
	"testing"

	"github.com/vigilshell/vigilsh/internal/shellast"
)

func Test_ExpandSafe_SubstitutesKnownVariable(t *testing.T) {
	t.Parallel()

	got := shellast.ExpandSafe("rm -rf $TARGET", map[string]string{"TARGET": "/tmp/build"})
	if got != "rm -rf /tmp/build" {
		t.Fatalf("ExpandSafe = %q, want %q", got, "rm -rf /tmp/build")
	}
}

func Test_ExpandSafe_ShortCircuitsWithoutDollarSign(t *testing.T) {
	t.Parallel()

	got := shellast.ExpandSafe("ls -la /tmp", nil)
	if got != "ls -la /tmp" {
		t.Fatalf("ExpandSafe = %q, want unchanged input", got)
	}
}

func Test_ExpandSafe_FallsBackOnUnparseableInput(t *testing.T) {
	t.Parallel()

	src := "echo 'unterminated $VAR"
	got := shellast.ExpandSafe(src, map[string]string{"VAR": "x"})
	if got != src {
		t.Fatalf("ExpandSafe = %q, want unchanged input on parse failure", got)
	}
}

func Test_ExpandSafe_UnknownVariableExpandsEmpty(t *testing.T) {
	t.Parallel()

	got := shellast.ExpandSafe("echo $UNSET_VAR", map[string]string{})
	if got != "echo " {
		t.Fatalf("ExpandSafe = %q, want %q", got, "echo ")
	}
}

func Test_SafeEnviron_FiltersDangerousAndSecretKeys(t *testing.T) {
	t.Parallel()

	in := map[string]string{
		"PATH":              "/usr/bin",
		"BASH_ENV":          "/tmp/evil.sh",
		"ANTHROPIC_API_KEY": "sk-test",
		"HOME":              "/home/user",
	}

	safe := shellast.SafeEnviron(in)

	if _, ok := safe["BASH_ENV"]; ok {
		t.Fatalf("expected BASH_ENV to be filtered out")
	}

	if _, ok := safe["ANTHROPIC_API_KEY"]; ok {
		t.Fatalf("expected ANTHROPIC_API_KEY to be filtered out")
	}

	if safe["PATH"] != "/usr/bin" || safe["HOME"] != "/home/user" {
		t.Fatalf("safe = %+v, want PATH and HOME preserved", safe)
	}
}
