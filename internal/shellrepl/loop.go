package shellrepl

import (
	"context"
	"fmt"
	"io"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/sandboxexec"
)

// exitCodeSIGINT mirrors the teacher's convention: 128 + SIGINT(2).
const exitCodeSIGINT = 130

// runOneLine executes the full state machine for a single command line
// (spec §4.5's INIT -> PRE_CHECK -> CLASSIFY -> {ALLOW|WARN|BLOCK} -> DONE),
// printing whatever the user needs to see and returning the exit code that
// would terminate the whole shell process were this the last line (it
// usually isn't — the caller loops).
func (s *Session) runOneLine(ctx context.Context, line string) (code int, keepLooping bool) {
	if line == "exit" {
		return 0, false
	}

	verdict := s.classifyCommand(ctx, line)

	switch verdict.Action {
	case classify.Allow:
		code = s.execute(ctx, line)
		return code, true

	case classify.Warn:
		fmt.Fprintf(s.stderr, "WARNING: %s\n", verdict.Reason)
		fmt.Fprint(s.stderr, "Proceed anyway? [y/N]: ")

		proceed, interrupted := s.confirm()
		if interrupted {
			fmt.Fprintln(s.stderr, "Command cancelled")
			return exitCodeSIGINT, true
		}

		if !proceed {
			fmt.Fprintln(s.stderr, "Command cancelled")
			return 1, true
		}

		code = s.execute(ctx, line)
		return code, true

	case classify.Block:
		fmt.Fprintf(s.stderr, "BLOCKED: %s\n", verdict.Reason)
		return 1, true

	default:
		// Defensive: classify.Aggregate only ever returns one of the three
		// known actions. An unrecognized action here would be an internal
		// bug, not a user input problem; fail closed rather than execute.
		fmt.Fprintf(s.stderr, "BLOCKED: internal error, unrecognized verdict action %q\n", verdict.Action)
		return 1, true
	}
}

// execute runs line in the Execution Sandbox and streams its stdio to the
// session's own stdio, returning the child's exit code (or 1 if the child
// could not even be started).
func (s *Session) execute(ctx context.Context, line string) int {
	sb, err := s.newSandbox(sandboxexec.Environment{
		HomeDir:      s.homeDir,
		WorkDir:      s.workDir,
		HostEnv:      s.hostEnv,
		LastExitCode: s.lastExitCode,
	})
	if err != nil {
		fmt.Fprintf(s.stderr, "vigilsh: failed to prepare sandbox: %v\n", err)
		s.lastExitCode = 1

		return 1
	}

	cmd, err := sb.Command(ctx, s.sandboxerPath, line)
	if err != nil {
		fmt.Fprintf(s.stderr, "vigilsh: failed to prepare command: %v\n", err)
		s.lastExitCode = 1

		return 1
	}

	cmd.Stdin = readerOrNil(s.stdin)
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr

	if err := cmd.Run(); err != nil {
		code := exitCodeOf(err)
		s.lastExitCode = code

		return code
	}

	s.lastExitCode = 0

	return 0
}

// readerOrNil always returns nil, so the child inherits the process's own
// stdin, matching normal interactive shell behavior. The session's
// LineReader is never handed to the child, even when it also implements
// io.Reader.
func readerOrNil(_ LineReader) io.Reader {
	return nil
}
