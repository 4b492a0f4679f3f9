package shellrepl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/classify/provider"
	"github.com/vigilshell/vigilsh/internal/sandboxexec"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// Run is the whole program's entry point, isolated from global state (stdin/
// stdout/stderr/env/signals are all parameters) the same way the teacher's
// cmd/agent-sandbox Run does. It builds the Vault, the classifier Registry,
// the Execution Sandbox factory, and a Session, then drives the read loop
// until EOF or "exit".
func Run(stdin io.Reader, stdout, stderr io.Writer, env map[string]string, sigCh <-chan os.Signal) int {
	v, err := vault.New(vault.WithEnv(env))
	if err != nil {
		fmt.Fprintf(stderr, "vigilsh: %v\n", err)
		return 1
	}

	logger := newLogger(stderr, v.DevSettings().Verbose)

	registry := classify.Registry{
		"anthropic":   provider.GenericJSON{Credential: v.Credential},
		"openai":      provider.GenericJSON{Credential: v.Credential},
		"groq":        provider.GenericJSON{Credential: v.Credential},
		"together_ai": provider.GenericJSON{Credential: v.Credential},
		"ollama":      provider.LlamaGuardTextual{},
	}

	if _, err := v.ModelChain(); err != nil && v.Mode() == vault.Production {
		fmt.Fprintf(stderr, "vigilsh: %v\n", err)
		return 1
	}

	homeDir := env["HOME"]
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "/"
	}

	newSandbox := func(sbEnv sandboxexec.Environment) (*sandboxexec.Sandbox, error) {
		return sandboxexec.New(v, sbEnv, logger)
	}

	interrupt := make(chan struct{}, 1)
	if sigCh != nil {
		go forwardSignals(sigCh, interrupt)
	}

	session := NewSession(
		v,
		registry,
		logger,
		v.SandboxerPath(),
		newSandbox,
		env,
		homeDir,
		workDir,
		NewScannerLineReader(stdin),
		stdout,
		stderr,
		interrupt,
	)

	return runLoop(session, stdout, stderr, v.Mode())
}

// forwardSignals relays every signal on sigCh to interrupt, dropping any
// delivery that arrives while a prior one is still unconsumed rather than
// blocking the signal handler.
func forwardSignals(sigCh <-chan os.Signal, interrupt chan<- struct{}) {
	for range sigCh {
		select {
		case interrupt <- struct{}{}:
		default:
		}
	}
}

// runLoop drives Session.runOneLine until the line reader reaches EOF or the
// user types "exit", printing the mode-appropriate farewell per spec §4.6:
// production treats leaving the loop as the whole session ending, while
// development only warns that protection has lapsed.
func runLoop(s *Session, stdout, stderr io.Writer, mode vault.Mode) int {
	ctx := context.Background()

	for {
		fmt.Fprint(stdout, s.promptString())

		line, err := s.nextLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return exitSession(stdout, stderr, mode, 0)
			}

			fmt.Fprintf(stderr, "vigilsh: reading input: %v\n", err)
			return exitSession(stdout, stderr, mode, 1)
		}

		if line == "" {
			continue
		}

		code, keepLooping := s.runOneLine(ctx, line)
		if !keepLooping {
			return exitSession(stdout, stderr, mode, code)
		}
	}
}

func exitSession(stdout, stderr io.Writer, mode vault.Mode, code int) int {
	if mode == vault.Production {
		fmt.Fprintln(stdout, exitTerminated)
	} else {
		fmt.Fprintln(stdout, exitWarningDevelopment)
	}

	return code
}

// newLogger builds a structured logrus logger writing to stderr, matching
// the rest of the pipeline's use of logrus for transient-failure reporting
// (classify.Dispatch, sandboxexec.New). verbose raises the level to Debug,
// driven by the vault's development-only DevSettings, never by production
// configuration.
func newLogger(stderr io.Writer, verbose bool) *logrus.Entry {
	base := logrus.New()
	base.SetOutput(stderr)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339})

	if verbose {
		base.SetLevel(logrus.DebugLevel)
	}

	return logrus.NewEntry(base)
}
