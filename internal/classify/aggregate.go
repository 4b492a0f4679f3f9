package classify

import "strings"

// Aggregate reduces a sequence of per-subcommand verdicts to one outer
// verdict. The aggregate action is the rank-maximum across all verdicts
// (allow=0, warn=1, block=2); for a warn or block aggregate, the reasons of
// every subcommand whose action matches the aggregate's rank are
// concatenated with "; ". An empty input is Allow, and Aggregate never
// short-circuits itself — callers implement the early-exit-on-block
// behavior of spec §4.4.5 by not calling Classify on further subcommands
// in the first place, then pass only the verdicts actually gathered.
func Aggregate(verdicts []Verdict) Verdict {
	if len(verdicts) == 0 {
		return allowVerdict()
	}

	worst := verdicts[0]
	for _, v := range verdicts[1:] {
		if v.Action.severity() > worst.Action.severity() {
			worst = v
		}
	}

	if worst.Action == Allow {
		return worst
	}

	var reasons []string
	for _, v := range verdicts {
		if v.Action.severity() == worst.Action.severity() && v.Reason != "" {
			reasons = append(reasons, v.Reason)
		}
	}

	return Verdict{
		Action:     worst.Action,
		Reason:     strings.Join(reasons, "; "),
		Confidence: worst.Confidence,
	}
}
