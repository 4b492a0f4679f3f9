package vault

// defaultBashPath is used when bash-path is unconfigured, in either mode:
// bash-path is not among the keys production requires in the protected
// file, so an unset value falls back to this path (whose hash is still
// checked against bash-hash).
const defaultBashPath = "/bin/bash"

// HashRecord is a {path, expected-hex-digest} pair verified at startup.
type HashRecord struct {
	Path        string
	ExpectedHex string
}

// BashPath returns the configured bash binary path.
func (v *Vault) BashPath() string {
	if raw, ok := v.SecurityGet(KeyBashPath); ok && raw != "" {
		return raw
	}

	return defaultBashPath
}

// BashHashRecord returns the Hash Record for the bash binary.
func (v *Vault) BashHashRecord() HashRecord {
	hash, _ := v.SecurityGet(KeyBashHash)
	return HashRecord{Path: v.BashPath(), ExpectedHex: hash}
}

// SandboxerPath returns the configured path to the LD_PRELOAD sandboxer
// shared object.
func (v *Vault) SandboxerPath() string {
	path, _ := v.SecurityGet(KeySandboxerPath)
	return path
}

// SandboxerHashRecord returns the Hash Record for the sandboxer shared
// object.
func (v *Vault) SandboxerHashRecord() HashRecord {
	hash, _ := v.SecurityGet(KeySandboxerHash)
	return HashRecord{Path: v.SandboxerPath(), ExpectedHex: hash}
}
