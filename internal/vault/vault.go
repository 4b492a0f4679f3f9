// Package vault provides a stable, non-poisonable view of security-critical
// settings for the rest of the validation pipeline.
//
// In production mode, security-critical keys are read only from a protected
// on-disk file; the process environment is never consulted for them. In
// development mode the vault falls back to the environment (and, best-effort,
// a local .env file) so the shell is easy to run outside a hardened
// deployment.
//
// A Vault is constructed once at startup and handed explicitly to the
// components that need it (the Config Vault and ModelChain cache are
// process-wide, but modeled as an initialized-once value rather than ambient
// global state, so tests can construct alternate vaults).
package vault

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Mode describes whether the vault is operating under production
// (fail-closed, file-only) or development (environment-permissive) rules.
type Mode string

const (
	// Production is the hardened mode: security-critical keys must come
	// from the protected config file; a missing or mismatched value is fatal.
	Production Mode = "production"
	// Development is the permissive mode used for local iteration.
	Development Mode = "development"
)

// modeEnvVar is the single trusted indicator used to select Development
// mode. Any other value, or its absence, means Production.
const modeEnvVar = "VIGILSH_ENV"

// securityConfigPathEnvVar points at the protected on-disk config file used
// in production. It is itself read from the environment because it merely
// names *where* the trusted file lives; the file's contents are what must be
// protected.
const securityConfigPathEnvVar = "VIGILSH_SECURITY_CONFIG"

// defaultSecurityConfigPath is used when securityConfigPathEnvVar is unset.
const defaultSecurityConfigPath = "/etc/vigilsh/config"

// Security-critical keys understood by SecurityGet.
const (
	KeyPrimaryModel      = "primary-model"
	KeyFallbackModels    = "fallback-models"
	KeyAllowedProviders  = "allowed-providers"
	KeySandboxerPath     = "sandboxer-path"
	KeySandboxerHash     = "sandboxer-hash"
	KeyBashHash          = "bash-hash"
	KeyFailMode          = "fail-mode"
	KeyBashPath          = "bash-path"
)

var securityKeys = map[string]bool{
	KeyPrimaryModel:     true,
	KeyFallbackModels:   true,
	KeyAllowedProviders: true,
	KeySandboxerPath:    true,
	KeySandboxerHash:    true,
	KeyBashHash:         true,
	KeyFailMode:         true,
	KeyBashPath:         true,
}

// ErrNoCredential is returned by ModelChain when no configured provider has
// a usable credential.
var ErrNoCredential = errors.New("vault: no credential present for any allowed provider")

// ErrMissingRequiredKey is returned by New in production when a required
// security-critical key is absent from the protected config file.
var ErrMissingRequiredKey = errors.New("vault: missing required security key in production config")

// Vault serves a stable view of security-critical settings to the rest of
// the pipeline. Use New to construct one; the zero value is not usable.
type Vault struct {
	mode Mode

	// fileValues holds KEY=value pairs read from the protected config file
	// in production. Nil in development.
	fileValues map[string]string

	// env is the environment snapshot consulted in development mode (and for
	// non-security keys in any mode).
	env map[string]string

	chainOnce sync.Once
	chain     ModelChain
	chainErr  error

	devOnce     sync.Once
	devSettings DevSettings
}

// Option configures New.
type Option func(*options)

type options struct {
	securityConfigPath string
	envOverride        map[string]string
	skipDotEnv         bool
}

// WithSecurityConfigPath overrides the path to the protected config file,
// bypassing VIGILSH_SECURITY_CONFIG. Intended for tests.
func WithSecurityConfigPath(path string) Option {
	return func(o *options) { o.securityConfigPath = path }
}

// WithEnv overrides the process environment snapshot used by the vault.
// Intended for tests; production code should pass nil to use os.Environ().
func WithEnv(env map[string]string) Option {
	return func(o *options) { o.envOverride = env }
}

// WithoutDotEnv disables best-effort .env loading in development mode.
// Intended for tests that want a hermetic environment.
func WithoutDotEnv() Option {
	return func(o *options) { o.skipDotEnv = true }
}

// New constructs a Vault. Mode is derived from VIGILSH_ENV in the process
// environment (or the WithEnv override): any value other than "development"
// means production.
//
// In production, the protected config file is read eagerly and any missing
// required key is a fatal (returned) error, per spec: a shell that cannot
// establish its security configuration must fail closed before executing
// anything.
func New(opts ...Option) (*Vault, error) {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}

	env := cfg.envOverride
	if env == nil {
		env = environToMap(os.Environ())
	}

	mode := Production
	if env[modeEnvVar] == string(Development) {
		mode = Development
	}

	if mode == Development && !cfg.skipDotEnv {
		// Best-effort: a missing .env is not an error. Loaded values are
		// merged into our own snapshot rather than mutating the process
		// environment, keeping New free of global side effects.
		if loaded, err := godotenv.Read(); err == nil {
			for k, v := range loaded {
				if _, exists := env[k]; !exists {
					env[k] = v
				}
			}
		}
	}

	v := &Vault{mode: mode, env: env}

	if mode == Production {
		path := cfg.securityConfigPath
		if path == "" {
			path = env[securityConfigPathEnvVar]
		}

		if path == "" {
			path = defaultSecurityConfigPath
		}

		values, err := parseSecurityConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("vault: reading protected config %s: %w", path, err)
		}

		v.fileValues = values

		if err := v.checkRequiredKeys(); err != nil {
			return nil, err
		}
	}

	return v, nil
}

func (v *Vault) checkRequiredKeys() error {
	required := []string{
		KeyPrimaryModel,
		KeyAllowedProviders,
		KeySandboxerPath,
		KeySandboxerHash,
		KeyBashHash,
		KeyFailMode,
	}

	var missing []string

	for _, k := range required {
		if _, ok := v.fileValues[k]; !ok {
			missing = append(missing, k)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequiredKey, strings.Join(missing, ", "))
	}

	return nil
}

// Mode reports whether the vault is operating in production or development.
func (v *Vault) Mode() Mode { return v.mode }

// SecurityGet resolves a security-critical key. In production it reads only
// from the protected config file; in development it reads the environment
// (uppercased, underscored form, e.g. "fail-mode" -> "FAIL_MODE").
//
// SecurityGet silently ignores attempted environment overrides of these
// keys in production: only fileValues is consulted there.
func (v *Vault) SecurityGet(key string) (string, bool) {
	if !securityKeys[key] {
		return "", false
	}

	if v.mode == Production {
		val, ok := v.fileValues[key]
		return val, ok
	}

	envKey := strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	val, ok := v.env[envKey]

	return val, ok
}

// Credential returns the environment-sourced API credential for a provider,
// e.g. "anthropic" -> ANTHROPIC_API_KEY. Credentials are never read from the
// protected security file; they always come from the environment, in both
// modes, since they are not part of the hardened security policy itself.
func (v *Vault) Credential(provider string) (string, bool) {
	if provider == "" {
		return "", false
	}

	if _, ok := localProviders[provider]; ok {
		return "", true // local providers need no credential
	}

	envKey := strings.ToUpper(provider) + "_API_KEY"
	val, ok := v.env[envKey]

	return val, ok && val != ""
}

// environToMap parses the os.Environ()-style "KEY=VALUE" slice into a map,
// ignoring malformed entries.
func environToMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))

	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}

		out[key] = value
	}

	return out
}

// parseSecurityConfigFile parses the protected config file's deliberately
// simple "KEY=value" / "#comment" / UTF-8 line format. No third-party config
// library is used here: the format is fixed by spec specifically so that a
// trivial, auditable parser is sufficient, and introducing a richer format
// (JSON, TOML, YAML) would undermine the reason the file is trusted in the
// first place.
func parseSecurityConfigFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	values := make(map[string]string)

	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("line %d: expected KEY=value, got %q", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		if key == "" {
			return nil, fmt.Errorf("line %d: empty key", lineNum)
		}

		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}

	return values, nil
}
