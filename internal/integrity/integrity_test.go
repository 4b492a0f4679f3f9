package integrity_test

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/vigilshell/vigilsh/internal/integrity"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte(contents), 0o755); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}

	return path
}

func Test_VerifyFile_MatchingHash(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "hello world")
	sum := sha256.Sum256([]byte("hello world"))
	expected := hex.EncodeToString(sum[:])

	result, err := integrity.VerifyFile(path, expected)
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}

	if !result.OK {
		t.Fatalf("result.OK = false, message: %s", result.Message)
	}
}

func Test_VerifyFile_IsCaseInsensitive(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "hello world")
	sum := sha256.Sum256([]byte("hello world"))
	expected := hex.EncodeToString(sum[:])

	result, err := integrity.VerifyFile(path, toUpper(expected))
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}

	if !result.OK {
		t.Fatalf("expected case-insensitive match, got: %s", result.Message)
	}
}

func Test_VerifyFile_Mismatch(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "hello world")

	result, err := integrity.VerifyFile(path, "0000000000000000000000000000000000000000000000000000000000000000")
	if err != nil {
		t.Fatalf("VerifyFile: %v", err)
	}

	if result.OK {
		t.Fatalf("expected mismatch, got OK")
	}
}

func Test_VerifyFile_MissingFile(t *testing.T) {
	t.Parallel()

	result, err := integrity.VerifyFile(filepath.Join(t.TempDir(), "does-not-exist"), "aa")
	if err != nil {
		t.Fatalf("VerifyFile should not hard-error on a missing file, got: %v", err)
	}

	if result.OK {
		t.Fatalf("expected not-OK for missing file")
	}
}

func Test_VerifyFile_RejectsNonHexExpected(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "hello world")

	_, err := integrity.VerifyFile(path, "not-hex!!")
	if err == nil {
		t.Fatalf("expected error for non-hex expected digest")
	}
}

func toUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'f' {
			b[i] = c - 32
		}
	}

	return string(b)
}
