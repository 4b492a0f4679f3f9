// Package shellrepl owns the per-line control loop and the production/
// development session-boundary behavior: read a line, run it through the
// Pre-Check Gate and Decomposition & Classification Engine, then allow,
// confirm-then-execute, or block it, exactly as spec §2's control flow
// describes. It is adapted from calvinalkan/agent-sandbox's
// Run(stdin, stdout, stderr, args, env, sigCh) int entrypoint-isolation
// pattern (cmd/agent-sandbox/run.go): global state (stdio, environment,
// signals) never leaks in implicitly, it is threaded through explicitly so
// the whole session is easy to drive from a test.
package shellrepl

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/sandboxexec"
	"github.com/vigilshell/vigilsh/internal/shellast"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// Session holds everything one REPL run needs, constructed once by Run (or
// directly by a test) and threaded through the loop explicitly.
type Session struct {
	vault    *vault.Vault
	registry classify.Registry
	logger   *logrus.Entry

	sandboxerPath string
	newSandbox    func(env sandboxexec.Environment) (*sandboxexec.Sandbox, error)

	safeEnv map[string]string
	hostEnv map[string]string
	homeDir string
	workDir string

	stdin  LineReader
	stdout io.Writer
	stderr io.Writer

	// interrupt receives a value whenever SIGINT is delivered; nil disables
	// interrupt detection during the confirmation prompt (tests mostly want
	// this quiet). Run wires this to the process's real signal channel.
	interrupt <-chan struct{}

	// readerOnce/lines back nextLine: a single goroutine owns every call to
	// stdin.ReadLine() for the life of the session, so both the main loop and
	// a confirm() prompt pull from the same channel instead of each starting
	// its own reader. That keeps a confirm() abandoned on SIGINT from leaving
	// a second goroutine racing the main loop's next read against the same
	// underlying reader.
	readerOnce sync.Once
	lines      chan lineResult

	lastExitCode int
}

type lineResult struct {
	line string
	err  error
}

// ensureReader starts the session's single background reader goroutine on
// first use. The goroutine keeps reading and forwarding lines to s.lines for
// the whole session lifetime: a caller that stops waiting for a result (e.g.
// confirm() cancelled by SIGINT) never orphans a second reader, because
// there is only ever the one goroutine, and whichever caller asks next
// simply receives the line it eventually produces.
func (s *Session) ensureReader() {
	s.readerOnce.Do(func() {
		s.lines = make(chan lineResult, 1)

		go func() {
			for {
				line, err := s.stdin.ReadLine()
				s.lines <- lineResult{line: line, err: err}

				if err != nil {
					return
				}
			}
		}()
	})
}

// nextLine returns the next line from stdin via the session's single
// background reader.
func (s *Session) nextLine() (string, error) {
	s.ensureReader()

	r := <-s.lines

	return r.line, r.err
}

// NewSession constructs a Session. newSandbox is injected so tests can
// substitute a fake without touching the filesystem or spawning bash.
func NewSession(
	v *vault.Vault,
	registry classify.Registry,
	logger *logrus.Entry,
	sandboxerPath string,
	newSandbox func(env sandboxexec.Environment) (*sandboxexec.Sandbox, error),
	hostEnv map[string]string,
	homeDir, workDir string,
	stdin LineReader,
	stdout, stderr io.Writer,
	interrupt <-chan struct{},
) *Session {
	return &Session{
		vault:         v,
		registry:      registry,
		logger:        logger,
		sandboxerPath: sandboxerPath,
		newSandbox:    newSandbox,
		safeEnv:       shellast.SafeEnviron(hostEnv),
		hostEnv:       hostEnv,
		homeDir:       homeDir,
		workDir:       workDir,
		stdin:         stdin,
		stdout:        stdout,
		stderr:        stderr,
		interrupt:     interrupt,
	}
}

// exitTerminated is printed in production mode on exit/EOF, per spec §4.6.
const exitTerminated = "Session terminated."

// exitWarningDevelopment is printed in development mode on exit/EOF: the
// parent shell (if any) is not security-monitored, so escaping this loop
// is a real loss of protection, not just an interactive convenience.
const exitWarningDevelopment = "Warning: leaving the hardened shell. The parent process is not security-monitored."

func (s *Session) promptString() string {
	return "vigilsh> "
}

// defaultHostEnv snapshots os.Environ() the way the teacher's
// DefaultEnvironment does, ignoring malformed KEY=VALUE pairs.
func defaultHostEnv() map[string]string {
	out := make(map[string]string, len(os.Environ()))

	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				if i > 0 {
					out[kv[:i]] = kv[i+1:]
				}

				break
			}
		}
	}

	return out
}
