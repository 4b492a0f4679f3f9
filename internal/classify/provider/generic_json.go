// Package provider contains concrete Classifier implementations, one per
// wire protocol the corpus of LM backends actually speaks: a generic
// structured-JSON responder (Anthropic and every OpenAI-compatible
// endpoint) and a plain safe/unsafe textual responder (local LlamaGuard-
// style models served through Ollama).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	"github.com/openai/openai-go"
	openaioption "github.com/openai/openai-go/option"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// requestTimeout bounds a single classifier call; spec §5 treats a
// provider timeout as a transient failure that moves the dispatcher to the
// next model-chain entry, not as a fatal error.
const requestTimeout = 20 * time.Second

// openAICompatibleBaseURLs maps an OpenAI-wire-compatible provider name (as
// configured in vault.ModelChain) to its API base URL. Groq and Together AI
// both expose an OpenAI-compatible /chat/completions route, so one client
// type serves both providers listed here plus plain "openai".
var openAICompatibleBaseURLs = map[string]string{
	"groq":        "https://api.groq.com/openai/v1",
	"together_ai": "https://api.together.xyz/v1",
}

// rawVerdict mirrors the JSON schema from spec §4.4.3:
// {"action": "allow"|"warn"|"block", "reason": string, "confidence": number}.
type rawVerdict struct {
	Action     string  `json:"action"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// GenericJSON is a Classifier backed by a chat-completions style API that
// is instructed (via the system prompt) to respond with the verdict JSON
// schema. It serves "anthropic" via the Anthropic Messages API and
// "openai"/"groq"/"together_ai" via the OpenAI-compatible Chat Completions
// API, selecting the wire protocol from entry.Provider at call time.
type GenericJSON struct {
	// Credential looks up the API key for a provider; normally
	// vault.Vault.Credential.
	Credential func(provider string) (string, bool)
}

func (g GenericJSON) Classify(ctx context.Context, entry vault.ModelEntry, systemPrompt, userMessage string) (classify.Verdict, error) {
	key, ok := g.Credential(entry.Provider)
	if !ok {
		return classify.Verdict{}, fmt.Errorf("provider: no credential configured for %q", entry.Provider)
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	var raw rawVerdict
	var err error

	if entry.Provider == "anthropic" {
		raw, err = g.classifyAnthropic(ctx, key, entry.ModelID, systemPrompt, userMessage)
	} else {
		raw, err = g.classifyOpenAICompatible(ctx, key, entry, systemPrompt, userMessage)
	}

	if err != nil {
		return classify.Verdict{}, err
	}

	action := classify.Action(raw.Action)
	if !action.Valid() {
		return classify.Verdict{}, fmt.Errorf("provider: unrecognized action %q from %s", raw.Action, entry.Provider)
	}

	return classify.Verdict{Action: action, Reason: raw.Reason, Confidence: raw.Confidence}, nil
}

func (g GenericJSON) classifyAnthropic(ctx context.Context, key, model, systemPrompt, userMessage string) (rawVerdict, error) {
	client := anthropic.NewClient(anthropicoption.WithAPIKey(key))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	})
	if err != nil {
		return rawVerdict{}, fmt.Errorf("anthropic: %w", err)
	}

	if len(message.Content) == 0 {
		return rawVerdict{}, fmt.Errorf("anthropic: empty response content")
	}

	return parseRawVerdict(message.Content[0].Text)
}

func (g GenericJSON) classifyOpenAICompatible(
	ctx context.Context, key string, entry vault.ModelEntry, systemPrompt, userMessage string,
) (rawVerdict, error) {
	opts := []openaioption.RequestOption{openaioption.WithAPIKey(key)}
	if baseURL, ok := openAICompatibleBaseURLs[entry.Provider]; ok {
		opts = append(opts, openaioption.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: entry.ModelID,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
	})
	if err != nil {
		return rawVerdict{}, fmt.Errorf("%s: %w", entry.Provider, err)
	}

	if len(resp.Choices) == 0 {
		return rawVerdict{}, fmt.Errorf("%s: empty response choices", entry.Provider)
	}

	return parseRawVerdict(resp.Choices[0].Message.Content)
}

func parseRawVerdict(text string) (rawVerdict, error) {
	var raw rawVerdict
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return rawVerdict{}, fmt.Errorf("provider: non-parseable response: %w", err)
	}

	return raw, nil
}
