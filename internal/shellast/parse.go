// Package shellast provides shell-grammar parsing, simple-command
// decomposition, a variable-in-command-position detector, and safe
// environment expansion shared by the Pre-Check Gate and the Decomposition
// & Classification Engine.
//
// All parsing is done with mvdan.cc/sh/v3, the same shell-grammar library
// used elsewhere in the retrieval pack (gartnera/lite-sandbox-mcp) to
// validate bash input before execution — this is a real parser of bash's
// grammar, not a hand-rolled tokenizer, so quoting, substitutions, and
// compound constructs are handled the way bash itself would parse them.
package shellast

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Pos identifies where a SubCommand was found in the original Command
// string, so aggregation messages can name the offending fragment.
type Pos struct {
	Offset uint
	Line   uint
	Col    uint
}

// SubCommand is a derived string corresponding to one simple command node
// extracted from the AST, plus a back-reference to its source position.
type SubCommand struct {
	Text string
	Pos  Pos
}

// Parse parses src using bash grammar. A non-nil error means src could not
// be parsed as shell syntax; callers must treat this as a graceful
// fallback trigger (single-pass classification of the raw string), never as
// grounds to block on its own (spec §8: "a command that fails to parse ...
// is NEVER blocked because of the parse failure alone").
func Parse(src string) (*syntax.File, error) {
	parser := syntax.NewParser(syntax.Variant(syntax.LangBash))
	return parser.Parse(strings.NewReader(src), "")
}

func posOf(p syntax.Pos) Pos {
	return Pos{Offset: uint(p.Offset()), Line: uint(p.Line()), Col: uint(p.Col())}
}
