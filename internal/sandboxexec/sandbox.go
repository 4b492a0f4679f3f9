//go:build linux

// Package sandboxexec — see doc comment in environment.go.
package sandboxexec

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vigilshell/vigilsh/internal/integrity"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// validated is the snapshot computed once at construction time: resolved
// paths, verified hashes, and the sanitized environment slice, so
// Command never redoes this work per invocation. Adapted from the
// teacher's `*validated` cache on Sandbox.
type validated struct {
	mode          vault.Mode
	env           Environment
	sanitizedEnv  []string
	bashPath      string
	sandboxerHash string
}

// Sandbox runs an allowed command in a bash subprocess per spec §4.5. The
// zero value is not usable; construct with New.
type Sandbox struct {
	v *validated
}

// New validates env and v's hash records, verifies the bash and sandboxer hashes, and
// returns a ready-to-use Sandbox. Hash mismatches are fatal in production —
// per spec §8 ("For every production run with hash mismatch of bash or
// sandboxer: the process exits non-zero before any child is spawned"), the
// caller must treat a non-nil error here as grounds to exit before
// accepting any command. In development mode a mismatch is logged and
// tolerated, so local iteration does not require real signed artifacts.
func New(v *vault.Vault, env Environment, logger *logrus.Entry) (*Sandbox, error) {
	env = cloneEnvironment(env)

	var errs []error
	errs = append(errs, validateEnvironment(env)...)
	errs = append(errs, validateHashRecord("bash", v.BashHashRecord().Path, v.BashHashRecord().ExpectedHex)...)
	errs = append(errs, validateHashRecord("sandboxer", v.SandboxerHashRecord().Path, v.SandboxerHashRecord().ExpectedHex)...)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("sandboxexec: validating: %w", err)
	}

	bashResult, sandboxerResult, err := integrity.VerifyAll(v)
	if err != nil {
		return nil, fmt.Errorf("sandboxexec: verifying artifacts: %w", err)
	}

	if !bashResult.OK || !sandboxerResult.OK {
		if v.Mode() == vault.Production {
			return nil, fmt.Errorf("sandboxexec: integrity check failed: bash=%q sandboxer=%q",
				bashResult.Message, sandboxerResult.Message)
		}

		logger.WithField("bash", bashResult.Message).
			WithField("sandboxer", sandboxerResult.Message).
			Warn("sandboxexec: integrity check failed, continuing because mode is development")
	}

	sanitized := SanitizeEnviron(env.HostEnv)
	if v.Mode() == vault.Production {
		sanitized = reinjectProduction(sanitized, v.SandboxerHashRecord().ExpectedHex, v.Mode())
	}

	return &Sandbox{v: &validated{
		mode:          v.Mode(),
		env:           env,
		sanitizedEnv:  sanitized,
		bashPath:      v.BashPath(),
		sandboxerHash: v.SandboxerHashRecord().ExpectedHex,
	}}, nil
}
