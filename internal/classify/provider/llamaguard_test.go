package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vigilshell/vigilsh/internal/classify"
	"github.com/vigilshell/vigilsh/internal/classify/provider"
	"github.com/vigilshell/vigilsh/internal/vault"
)

func newStubOllama(t *testing.T, response string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
}

func Test_LlamaGuardTextual_SafeMapsToAllow(t *testing.T) {
	t.Parallel()

	srv := newStubOllama(t, "safe")
	defer srv.Close()

	classifier := provider.LlamaGuardTextual{BaseURL: srv.URL}

	got, err := classifier.Classify(context.Background(), vault.ModelEntry{Provider: "ollama", ModelID: "llama-guard"}, "sys", "user")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got.Action != classify.Allow {
		t.Fatalf("got.Action = %q, want allow", got.Action)
	}
}

func Test_LlamaGuardTextual_UnsafeMapsToBlock(t *testing.T) {
	t.Parallel()

	srv := newStubOllama(t, "unsafe\nS1: violent_crimes")
	defer srv.Close()

	classifier := provider.LlamaGuardTextual{BaseURL: srv.URL}

	got, err := classifier.Classify(context.Background(), vault.ModelEntry{Provider: "ollama", ModelID: "llama-guard"}, "sys", "user")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got.Action != classify.Block {
		t.Fatalf("got.Action = %q, want block", got.Action)
	}
}

func Test_LlamaGuardTextual_UnsafeReasonSurvivesLeadingWhitespaceAndCase(t *testing.T) {
	t.Parallel()

	// Leading whitespace and a different case on the first line used to
	// desync the byte offset used to find the category line, garbling the
	// reason even though the action was still correctly "block".
	srv := newStubOllama(t, " UNSAFE \nO3: cyber_crime")
	defer srv.Close()

	classifier := provider.LlamaGuardTextual{BaseURL: srv.URL}

	got, err := classifier.Classify(context.Background(), vault.ModelEntry{Provider: "ollama", ModelID: "llama-guard"}, "sys", "user")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if got.Action != classify.Block {
		t.Fatalf("got.Action = %q, want block", got.Action)
	}

	if !strings.Contains(got.Reason, "O3: cyber_crime") {
		t.Fatalf("got.Reason = %q, want it to mention the category line intact", got.Reason)
	}
}

func Test_LlamaGuardTextual_UnrecognizedResponseIsError(t *testing.T) {
	t.Parallel()

	srv := newStubOllama(t, "i'm not sure about this one")
	defer srv.Close()

	classifier := provider.LlamaGuardTextual{BaseURL: srv.URL}

	_, err := classifier.Classify(context.Background(), vault.ModelEntry{Provider: "ollama", ModelID: "llama-guard"}, "sys", "user")
	if err == nil {
		t.Fatalf("expected an error for an unrecognized textual response")
	}
}

func Test_LlamaGuardTextual_NonOKStatusIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	classifier := provider.LlamaGuardTextual{BaseURL: srv.URL}

	_, err := classifier.Classify(context.Background(), vault.ModelEntry{Provider: "ollama", ModelID: "llama-guard"}, "sys", "user")
	if err == nil {
		t.Fatalf("expected an error for a non-200 response")
	}
}
