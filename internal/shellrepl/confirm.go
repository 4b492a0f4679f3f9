package shellrepl

import "strings"

// confirm reads the user's answer to a "Proceed anyway? [y/N]:" prompt.
// It reports (proceed=true) only for an explicit "y"/"yes" (case-
// insensitive); anything else, including a bare newline, declines — the
// prompt's own default is "No". If s.interrupt fires first (SIGINT while
// waiting at the prompt), confirm returns interrupted=true per spec §5's
// cancellation rule: SIGINT during the user-confirmation prompt of a warn
// cancels that command with exit code 130.
//
// The read itself goes through the session's single background reader
// (s.lines), not a dedicated goroutine: if s.interrupt wins the race, the
// pending read is left in flight on the one reader goroutine that outlives
// this call, and its eventual answer is simply picked up by whichever caller
// (normally the main loop, reading the next command) asks next — nothing is
// orphaned against a reader nobody drains anymore.
func (s *Session) confirm() (proceed, interrupted bool) {
	s.ensureReader()

	if s.interrupt == nil {
		r := <-s.lines
		return isYes(r.line), false
	}

	select {
	case r := <-s.lines:
		return isYes(r.line), false
	case <-s.interrupt:
		return false, true
	}
}

func isYes(line string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(line))
	return trimmed == "y" || trimmed == "yes"
}
