package vault_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vigilshell/vigilsh/internal/vault"
)

func writeSecurityConfig(t *testing.T, dir string, contents string) string {
	t.Helper()

	path := filepath.Join(dir, "config")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing security config: %v", err)
	}

	return path
}

func Test_New_Production_RequiresProtectedFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSecurityConfig(t, dir, "primary-model=anthropic/claude-3\n")

	_, err := vault.New(
		vault.WithEnv(map[string]string{}),
		vault.WithSecurityConfigPath(path),
	)
	if !errors.Is(err, vault.ErrMissingRequiredKey) {
		t.Fatalf("expected ErrMissingRequiredKey, got %v", err)
	}
}

func Test_New_Production_IgnoresEnvironmentOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSecurityConfig(t, dir, validConfigBody())

	env := map[string]string{
		"FAIL_MODE":        "open",
		"ANTHROPIC_API_KEY": "sk-test",
	}

	v, err := vault.New(vault.WithEnv(env), vault.WithSecurityConfigPath(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// File says "safe"; environment attempts "open". Production must ignore
	// the environment override.
	if got := v.FailMode(); got != vault.FailSafe {
		t.Fatalf("FailMode = %q, want %q (environment override must be ignored in production)", got, vault.FailSafe)
	}
}

func Test_New_Development_FallsBackToEnvironment(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"VIGILSH_ENV":       "development",
		"FAIL_MODE":         "open",
		"ANTHROPIC_API_KEY": "sk-test",
		"PRIMARY_MODEL":     "anthropic/claude-3",
	}

	v, err := vault.New(vault.WithEnv(env), vault.WithoutDotEnv())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if v.Mode() != vault.Development {
		t.Fatalf("Mode = %q, want development", v.Mode())
	}

	if got := v.FailMode(); got != vault.FailOpen {
		t.Fatalf("FailMode = %q, want open", got)
	}
}

func Test_ModelChain_FiltersByAllowlistAndCredential(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	body := "primary-model=groq/llama-3\n" +
		"fallback-models=anthropic/claude-3,evil/rm-rf\n" +
		"allowed-providers=anthropic,groq,ollama\n" +
		"sandboxer-path=/usr/lib/sandboxer.so\n" +
		"sandboxer-hash=deadbeef\n" +
		"bash-hash=deadbeef\n" +
		"fail-mode=safe\n"
	path := writeSecurityConfig(t, dir, body)

	env := map[string]string{
		"ANTHROPIC_API_KEY": "sk-test",
		// GROQ_API_KEY intentionally absent: groq must be dropped.
	}

	v, err := vault.New(vault.WithEnv(env), vault.WithSecurityConfigPath(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	chain, err := v.ModelChain()
	if err != nil {
		t.Fatalf("ModelChain: %v", err)
	}

	if len(chain) != 1 {
		t.Fatalf("chain = %+v, want exactly one entry (anthropic)", chain)
	}

	if chain[0].Provider != "anthropic" {
		t.Fatalf("chain[0].Provider = %q, want anthropic", chain[0].Provider)
	}
}

func Test_ModelChain_NoCredential_ReturnsErrNoCredential(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSecurityConfig(t, dir, validConfigBody())

	v, err := vault.New(vault.WithEnv(map[string]string{}), vault.WithSecurityConfigPath(path))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = v.ModelChain()
	if !errors.Is(err, vault.ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func Test_ModelChain_IsCachedAfterFirstCall(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSecurityConfig(t, dir, validConfigBody())

	v, err := vault.New(
		vault.WithEnv(map[string]string{"ANTHROPIC_API_KEY": "sk-test"}),
		vault.WithSecurityConfigPath(path),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	first, err := v.ModelChain()
	if err != nil {
		t.Fatalf("ModelChain: %v", err)
	}

	second, err := v.ModelChain()
	if err != nil {
		t.Fatalf("ModelChain: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("chain changed between calls: %+v vs %+v", first, second)
	}
}

func Test_IsDangerousEnvKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key  string
		want bool
	}{
		{"BASH_ENV", true},
		{"PAGER", true},
		{"BASH_FUNC_foo%%", true},
		{"PATH", false},
		{"HOME", false},
	}

	for _, tc := range cases {
		if got := vault.IsDangerousEnvKey(tc.key); got != tc.want {
			t.Errorf("IsDangerousEnvKey(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func Test_DevSettings_ZeroValueInProduction(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeSecurityConfig(t, dir, validConfigBody())

	v, err := vault.New(
		vault.WithEnv(map[string]string{"VIGILSH_DEV_CONFIG": filepath.Join(dir, "dev.jsonc")}),
		vault.WithSecurityConfigPath(path),
	)
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}

	if got := v.DevSettings(); got.Verbose {
		t.Fatalf("DevSettings().Verbose = true in production, want false regardless of file contents")
	}
}

func Test_DevSettings_LoadsJSONCInDevelopment(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	devPath := filepath.Join(dir, "dev.jsonc")

	body := "{\n  // turn up logging while iterating locally\n  \"verbose\": true,\n}\n"
	if err := os.WriteFile(devPath, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v, err := vault.New(
		vault.WithEnv(map[string]string{
			"VIGILSH_ENV":        "development",
			"VIGILSH_DEV_CONFIG": devPath,
		}),
		vault.WithoutDotEnv(),
	)
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}

	if got := v.DevSettings(); !got.Verbose {
		t.Fatalf("DevSettings().Verbose = false, want true")
	}
}

func Test_DevSettings_MissingFileIsNotFatal(t *testing.T) {
	t.Parallel()

	v, err := vault.New(
		vault.WithEnv(map[string]string{
			"VIGILSH_ENV":        "development",
			"VIGILSH_DEV_CONFIG": filepath.Join(t.TempDir(), "does-not-exist.jsonc"),
		}),
		vault.WithoutDotEnv(),
	)
	if err != nil {
		t.Fatalf("vault.New: %v", err)
	}

	if got := v.DevSettings(); got.Verbose {
		t.Fatalf("DevSettings().Verbose = true, want false for a missing file")
	}
}

func validConfigBody() string {
	return "primary-model=anthropic/claude-3\n" +
		"allowed-providers=anthropic,openai\n" +
		"sandboxer-path=/usr/lib/vigilsh/sandboxer.so\n" +
		"sandboxer-hash=deadbeef\n" +
		"bash-hash=deadbeef\n" +
		"fail-mode=safe\n"
}
