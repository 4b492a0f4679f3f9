// Command vigilsh is a hardened interactive shell: every command line is
// decomposed, classified by an LM-backed risk model, and only then allowed,
// confirmed, or blocked before it ever reaches a real bash subprocess.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/vigilshell/vigilsh/internal/shellrepl"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr, os.Environ()))
}

func run(args []string, stdin *os.File, stdout, stderr *os.File, environ []string) int {
	flags := flag.NewFlagSet("vigilsh", flag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() { printUsage(stderr) }

	flagHelp := flags.BoolP("help", "h", false, "Show help")
	flagVersion := flags.BoolP("version", "v", false, "Show version and exit")

	if err := flags.Parse(args[1:]); err != nil {
		return 1
	}

	if *flagHelp {
		printUsage(stdout)
		return 0
	}

	if *flagVersion {
		fmt.Fprintf(stdout, "vigilsh %s\n", version)
		return 0
	}

	env := environToMap(environ)

	v, err := vault.New(vault.WithEnv(env))
	if err != nil {
		fmt.Fprintf(stderr, "vigilsh: %v\n", err)
		return 1
	}

	if _, err := v.ModelChain(); err != nil {
		fmt.Fprintln(stderr, "vigilsh: no usable model chain configured.")
		fmt.Fprintln(stderr, "Set an API key for an allowed provider (e.g. ANTHROPIC_API_KEY)")
		fmt.Fprintln(stderr, "and configure primary-model in the security config.")

		if v.Mode() == vault.Production {
			return 1
		}

		fmt.Fprintln(stderr, "Continuing in development mode; every command will hit the configured fail-mode policy.")
	}

	fmt.Fprintf(stderr, "vigilsh %s — hardened shell, mode=%s\n", version, v.Mode())

	if !term.IsTerminal(int(stdin.Fd())) {
		fmt.Fprintln(stderr, "vigilsh: stdin is not a terminal; warn-level commands will be declined unless the input stream explicitly answers \"y\".")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)

	return shellrepl.Run(stdin, stdout, stderr, env, sigCh)
}

func environToMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		out[key] = value
	}

	return out
}

const usageHelp = `vigilsh - a hardened interactive shell with LM-backed command risk classification

Usage: vigilsh [flags]

Flags:
  -h, --help       Show help
  -v, --version    Show version and exit

Every command line you type is decomposed and classified before it runs.
Commands the classifier marks risky prompt for confirmation; commands it
marks dangerous are blocked outright. Type "exit" to leave.`

func printUsage(w *os.File) {
	fmt.Fprintln(w, usageHelp)
}
