package shellast

import (
	"sort"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ExpandSafe expands parameter expansions (`$VAR`, `${VAR}`) in a single
// decomposed subcommand string against safeEnv, so the classifier sees
// `rm -rf /tmp/build` instead of `rm -rf $TARGET`. It never executes
// anything: safeEnv must already be filtered by SafeEnviron, and
// expand.Config here carries no CmdSubst hook, so a command substitution
// inside the text (`$(...)`) simply fails to expand rather than running —
// Decompose already extracts those as their own subcommands, so they are
// classified independently regardless.
//
// Expansion is best-effort: if the subcommand cannot be re-parsed as a
// single simple command, or any word fails to expand, the subcommand is
// returned unchanged rather than partially rewritten.
func ExpandSafe(subcommand string, safeEnv map[string]string) string {
	if !strings.Contains(subcommand, "$") {
		return subcommand
	}

	file, err := Parse(subcommand)
	if err != nil || len(file.Stmts) != 1 {
		return subcommand
	}

	call, ok := file.Stmts[0].Cmd.(*syntax.CallExpr)
	if !ok {
		return subcommand
	}

	cfg := &expand.Config{Env: expand.ListEnviron(envPairs(safeEnv)...)}

	type replacement struct {
		start, end uint
		text       string
	}

	var repls []replacement

	collect := func(w *syntax.Word) bool {
		if w == nil {
			return true
		}

		expanded, err := expand.Literal(cfg, w)
		if err != nil {
			return false
		}

		repls = append(repls, replacement{
			start: w.Pos().Offset(),
			end:   w.End().Offset(),
			text:  expanded,
		})

		return true
	}

	for _, a := range call.Assigns {
		if a.Value != nil && !collect(a.Value) {
			return subcommand
		}
	}

	for _, a := range call.Args {
		if !collect(a) {
			return subcommand
		}
	}

	sort.Slice(repls, func(i, j int) bool { return repls[i].start > repls[j].start })

	out := subcommand
	for _, r := range repls {
		if int(r.end) > len(out) || r.start > r.end {
			return subcommand
		}

		out = out[:r.start] + r.text + out[r.end:]
	}

	return out
}

func envPairs(env map[string]string) []string {
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}

	return pairs
}
