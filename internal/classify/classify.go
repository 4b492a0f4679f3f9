package classify

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vigilshell/vigilsh/internal/vault"
)

// ErrChainExhausted is returned by Dispatch when every entry in the model
// chain failed (transient error or unparseable response).
var ErrChainExhausted = errors.New("classify: model chain exhausted")

// Classifier is the single capability every LM backend must provide:
// submit a system and user message, receive a structured Verdict or an
// error. There is no dynamic provider construction — Dispatch iterates a
// fixed sequence of (provider, model) entries and looks up the Classifier
// implementation for each entry's provider by name.
type Classifier interface {
	Classify(ctx context.Context, entry vault.ModelEntry, systemPrompt, userMessage string) (Verdict, error)
}

// Registry maps a provider name (as configured in the vault's ModelChain)
// to the Classifier implementation that serves it.
type Registry map[string]Classifier

// Dispatch iterates chain in order, submitting systemPrompt and
// userMessage to each entry's registered Classifier in turn. On a
// transient failure it logs at info level and tries the next entry. If
// every entry fails, it returns ErrChainExhausted; the caller applies the
// fail-mode policy.
func Dispatch(
	ctx context.Context,
	chain vault.ModelChain,
	registry Registry,
	systemPrompt, userMessage string,
	logger *logrus.Entry,
) (Verdict, error) {
	for _, entry := range chain {
		classifier, ok := registry[entry.Provider]
		if !ok {
			logger.WithField("provider", entry.Provider).Info("classify: no classifier registered for provider, skipping")
			continue
		}

		verdict, err := classifier.Classify(ctx, entry, systemPrompt, userMessage)
		if err != nil {
			logger.WithField("provider", entry.Provider).
				WithField("model", entry.ModelID).
				WithError(err).
				Info("classify: provider failed, trying next entry in chain")
			continue
		}

		if !verdict.Action.Valid() {
			logger.WithField("provider", entry.Provider).
				WithField("model", entry.ModelID).
				Info("classify: provider returned an unrecognized action, treating as parse failure")
			continue
		}

		return verdict.ClampConfidence(), nil
	}

	return Verdict{}, ErrChainExhausted
}
