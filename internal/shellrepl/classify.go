package shellrepl

import (
	"context"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/precheck"
	"github.com/vigilshell/vigilsh/internal/shellast"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// classifyCommand runs the full pipeline for one raw command line: the
// Pre-Check Gate, then (if the gate did not already reach a verdict) AST
// decomposition, per-subcommand environment expansion, source-script
// inspection, dispatch through the model chain, and aggregation.
//
// It never calls the classifier more times than there are extracted
// subcommands, and it stops submitting further subcommands the moment one
// returns block (spec §8's early-exit invariant).
func (s *Session) classifyCommand(ctx context.Context, command string) classify.Verdict {
	if verdict, handled := precheck.Check(command); handled {
		return verdict
	}

	subcommands := s.decompose(command)

	var verdicts []classify.Verdict

	for _, sub := range subcommands {
		verdict := s.classifySubcommand(ctx, sub)
		verdicts = append(verdicts, verdict)

		if verdict.Action == classify.Block {
			break
		}
	}

	return classify.Aggregate(verdicts)
}

// decompose extracts the simple commands to classify independently. An empty
// result (e.g. a pure variable assignment like "x=1", which spawns no
// process) is returned as-is per spec §4.4.5 — classifyCommand then calls
// Aggregate on zero verdicts, which is defined to allow, without submitting
// anything to the classifier. If decomposition yields exactly one
// subcommand, spec §4.4.1 says to skip the per-subcommand loop and classify
// the original string once, avoiding a redundant AST-reconstruction round
// trip. If the parser fails entirely, the raw command is classified
// single-pass.
func (s *Session) decompose(command string) []string {
	subs, err := shellast.Decompose(command)
	if err != nil {
		return []string{command}
	}

	if len(subs) == 0 {
		return nil
	}

	if len(subs) == 1 {
		return []string{command}
	}

	texts := make([]string, len(subs))
	for i, sub := range subs {
		texts[i] = sub.Text
	}

	return texts
}

func (s *Session) classifySubcommand(ctx context.Context, subcommand string) classify.Verdict {
	expanded := shellast.ExpandSafe(subcommand, s.safeEnv)
	scriptContents := classify.InspectSource(expanded)
	userMessage := classify.BuildUserMessage(expanded, scriptContents)

	chain, err := s.vault.ModelChain()
	if err != nil {
		return s.failModeVerdict()
	}

	verdict, err := classify.Dispatch(ctx, chain, s.registry, classify.SystemPromptV1, userMessage, s.logger)
	if err != nil {
		return s.failModeVerdict()
	}

	return verdict
}

// failModeVerdict applies the fail-mode policy (spec §7) when the model
// chain is exhausted or unusable: "safe" blocks outright, "open" warns but
// lets the user proceed.
func (s *Session) failModeVerdict() classify.Verdict {
	reason := "Validation unavailable"

	if s.vault.FailMode() == vault.FailOpen {
		return classify.Verdict{Action: classify.Warn, Reason: reason, Confidence: 0.0}
	}

	return classify.Verdict{Action: classify.Block, Reason: reason, Confidence: 1.0}
}
