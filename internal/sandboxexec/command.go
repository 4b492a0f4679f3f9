//go:build linux

package sandboxexec

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"slices"
	"syscall"

	"golang.org/x/sys/unix"
)

const envLDPreload = "LD_PRELOAD"

// Command builds an unstarted *exec.Cmd that runs command inside the
// sandbox, per spec §4.5: argv is
// [bash, --norc, --noprofile, -c, "(exit N); " + command], the child's
// environment is the sanitized snapshot from New with LD_PRELOAD pointed
// at the verified sandboxer, and the process runs in its own process group
// so SIGINT can be forwarded to the whole group without also killing the
// shell itself. Mirrors the teacher's Command: validated inputs, a cloned
// env slice never shared with the live *Sandbox, not yet started.
func (s *Sandbox) Command(ctx context.Context, sandboxerPath, command string) (*exec.Cmd, error) {
	if s == nil || s.v == nil {
		return nil, errors.New("sandboxexec: uninitialized sandbox (use New)")
	}

	if sandboxerPath == "" {
		return nil, errors.New("sandboxexec: no sandboxer path configured")
	}

	script := fmt.Sprintf("(exit %d); %s", s.v.env.LastExitCode, command)
	argv := []string{s.v.bashPath, "--norc", "--noprofile", "-c", script}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = s.v.env.WorkDir

	childEnv := slices.Clone(s.v.sanitizedEnv)
	childEnv = append(childEnv, envLDPreload+"="+sandboxerPath)
	cmd.Env = childEnv

	cmd.SysProcAttr = newProcessGroupAttr()

	return cmd, nil
}

// ForwardInterrupt sends SIGINT to cmd's whole process group, so a shell
// spawned by the sandboxed bash cannot dodge the signal by ignoring it in
// just the immediate child. Safe to call after the process has started;
// a no-op (returning the underlying error) if the process already exited.
func ForwardInterrupt(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	return unix.Kill(-cmd.Process.Pid, unix.SIGINT)
}

func newProcessGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}
