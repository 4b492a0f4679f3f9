package shellast

import (
	"mvdan.cc/sh/v3/syntax"
)

// HasVariableInCommandPosition reports whether any simple command in file
// builds its argv[0] from a parameter expansion that could have been
// influenced by an earlier assignment in the same list — the classic
// `x=rm; y='-rf /'; $x $y` obfuscation pattern. It also flags the inline
// form `VAR=x $CMD`, where the assignment and the expansion-driven
// invocation happen in the same statement.
//
// Detection is scoped per statement list (a `;`/newline-separated
// sequence): entering a nested compound construct (block, subshell,
// if/while/for/case body, function body) starts a fresh scope, matching
// bash's own assignment visibility rules for those constructs. Pipeline
// segments (`|`, `|&`) and `&&`/`||` chains share the scope of the
// enclosing list, since assignments made earlier in the same list are
// still visible when a later segment or branch runs.
func HasVariableInCommandPosition(file *syntax.File) bool {
	return scanStmtList(file.Stmts)
}

func scanStmtList(stmts []*syntax.Stmt) bool {
	sawAssignment := false

	for _, stmt := range stmts {
		if scanSequenced(stmt.Cmd, sawAssignment) {
			return true
		}

		if isPureAssignment(stmt.Cmd) {
			sawAssignment = true
		}

		if scanNestedCompounds(stmt.Cmd) {
			return true
		}
	}

	return false
}

// scanSequenced walks a command that may itself be a pipeline or
// `&&`/`||` chain, propagating sawAssignment to every segment — bash runs
// all of them in the same list, so an assignment in one segment is visible
// to the next.
func scanSequenced(cmd syntax.Command, sawAssignment bool) bool {
	bin, ok := cmd.(*syntax.BinaryCmd)
	if !ok {
		return callFlagged(cmd, sawAssignment)
	}

	switch bin.Op {
	case syntax.Pipe, syntax.PipeAll:
		return scanSequenced(bin.X.Cmd, sawAssignment) ||
			scanSequenced(bin.Y.Cmd, sawAssignment || isPureAssignment(bin.X.Cmd))
	case syntax.AndStmt, syntax.OrStmt:
		if scanSequenced(bin.X.Cmd, sawAssignment) {
			return true
		}

		return scanSequenced(bin.Y.Cmd, sawAssignment || isPureAssignment(bin.X.Cmd))
	default:
		return false
	}
}

func callFlagged(cmd syntax.Command, sawAssignment bool) bool {
	call, ok := cmd.(*syntax.CallExpr)
	if !ok || len(call.Args) == 0 {
		return false
	}

	if !wordHasParamExp(call.Args[0]) {
		return false
	}

	if sawAssignment {
		return true
	}

	return len(call.Assigns) > 0
}

func isPureAssignment(cmd syntax.Command) bool {
	call, ok := cmd.(*syntax.CallExpr)
	return ok && len(call.Args) == 0 && len(call.Assigns) > 0
}

func scanNestedCompounds(cmd syntax.Command) bool {
	switch c := cmd.(type) {
	case *syntax.Block:
		return scanStmtList(c.StmtList.Stmts)
	case *syntax.Subshell:
		return scanStmtList(c.StmtList.Stmts)
	case *syntax.FuncDecl:
		if c.Body == nil {
			return false
		}

		return scanSequenced(c.Body.Cmd, false) || scanNestedCompounds(c.Body.Cmd)
	case *syntax.IfClause:
		return scanIfClause(c)
	case *syntax.WhileClause:
		return scanStmtList(c.Cond.Stmts) || scanStmtList(c.Do.Stmts)
	case *syntax.ForClause:
		return scanStmtList(c.Do.Stmts)
	case *syntax.CaseClause:
		for _, item := range c.Items {
			if scanStmtList(item.StmtList.Stmts) {
				return true
			}
		}

		return false
	default:
		// Unknown or not-yet-handled node kinds (arithmetic commands, test
		// clauses, declare/let/time/coproc) are ignored, matching the
		// parser's own forward-compatible design: a construct this detector
		// does not understand is not a reason to block.
		return false
	}
}

func scanIfClause(c *syntax.IfClause) bool {
	for c != nil {
		if scanStmtList(c.Cond.Stmts) || scanStmtList(c.Then.Stmts) {
			return true
		}

		c = c.Else
	}

	return false
}

// wordHasParamExp reports whether w contains a parameter expansion
// (`$var`, `${var}`) anywhere in its top-level parts, including inside
// double quotes. Command and process substitutions are not parameter
// expansions and are left to Decompose, which extracts them as their own
// subcommands.
func wordHasParamExp(w *syntax.Word) bool {
	if w == nil {
		return false
	}

	for _, part := range w.Parts {
		if wordPartHasParamExp(part) {
			return true
		}
	}

	return false
}

func wordPartHasParamExp(part syntax.WordPart) bool {
	switch p := part.(type) {
	case *syntax.ParamExp:
		return true
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			if wordPartHasParamExp(inner) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
