package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/vault"
)

// defaultOllamaBaseURL is used when no override is configured; Ollama's
// default local listener.
const defaultOllamaBaseURL = "http://127.0.0.1:11434"

// LlamaGuardTextual is a Classifier for safety-tuned models served locally
// through Ollama's /api/generate endpoint, which respond with a short
// leading "safe" or "unsafe" token rather than the {action, reason,
// confidence} JSON schema the other providers use. No SDK for Ollama
// appears anywhere in the retrieval pack, and its local, unauthenticated
// single-call REST API does not warrant pulling one in — plain net/http is
// used directly (documented as a stdlib justification in DESIGN.md).
type LlamaGuardTextual struct {
	BaseURL string
	Client  *http.Client
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

func (l LlamaGuardTextual) Classify(ctx context.Context, entry vault.ModelEntry, systemPrompt, userMessage string) (classify.Verdict, error) {
	baseURL := l.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  entry.ModelID,
		System: systemPrompt,
		Prompt: userMessage,
		Stream: false,
	})
	if err != nil {
		return classify.Verdict{}, fmt.Errorf("llamaguard: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return classify.Verdict{}, fmt.Errorf("llamaguard: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return classify.Verdict{}, fmt.Errorf("llamaguard: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classify.Verdict{}, fmt.Errorf("llamaguard: unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classify.Verdict{}, fmt.Errorf("llamaguard: reading response: %w", err)
	}

	var parsed ollamaGenerateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return classify.Verdict{}, fmt.Errorf("llamaguard: non-parseable response: %w", err)
	}

	return parseSafeUnsafe(parsed.Response)
}

// parseSafeUnsafe maps a LlamaGuard-style textual verdict to allow/block.
// The model's convention is a leading "safe" or "unsafe" token, optionally
// followed by a newline-separated category list; anything else is a
// provider-specific parse failure so the dispatcher moves to the next
// model-chain entry.
func parseSafeUnsafe(text string) (classify.Verdict, error) {
	lines := strings.SplitN(text, "\n", 2)
	first := strings.ToLower(strings.TrimSpace(lines[0]))

	var rest string
	if len(lines) > 1 {
		rest = strings.TrimSpace(lines[1])
	}

	switch {
	case strings.HasPrefix(first, "unsafe"):
		reason := "LlamaGuard classified the command as unsafe"
		if rest != "" {
			reason = fmt.Sprintf("%s (%s)", reason, strings.ReplaceAll(rest, "\n", ", "))
		}

		return classify.Verdict{Action: classify.Block, Reason: reason, Confidence: 1.0}, nil
	case strings.HasPrefix(first, "safe"):
		return classify.Verdict{Action: classify.Allow, Reason: "LlamaGuard classified the command as safe", Confidence: 1.0}, nil
	default:
		return classify.Verdict{}, fmt.Errorf("llamaguard: unrecognized response %q", text)
	}
}
