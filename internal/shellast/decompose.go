package shellast

import (
	"mvdan.cc/sh/v3/syntax"
)

// Decompose walks the parsed AST and extracts every simple command node —
// including ones nested inside pipelines, `&&`/`||` lists, compound
// constructs (if/while/for/case/subshells/blocks/functions), and command or
// process substitutions. syntax.Walk already knows how to recurse into
// every one of those node kinds, so reusing it here gives the same coverage
// a hand-written per-kind switch would, without silently missing a
// construct the grammar adds later.
//
// Statements that are pure variable assignments with no argv (e.g. `x=1`)
// never spawn a process, so they are not extracted as commands in their own
// right — the variable-in-command-position detector is what cares about
// them.
//
// Position-based slicing of src (rather than re-printing the AST) is used
// to reconstruct each subcommand's text, so quoting and spacing exactly
// match what the user typed.
func Decompose(src string) ([]SubCommand, error) {
	file, err := Parse(src)
	if err != nil {
		return nil, err
	}

	var subs []SubCommand

	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}

		start := call.Pos().Offset()
		end := call.End().Offset()
		if end > uint(len(src)) || start >= end {
			return true
		}

		subs = append(subs, SubCommand{
			Text: src[start:end],
			Pos:  posOf(call.Pos()),
		})

		return true
	})

	return subs, nil
}
