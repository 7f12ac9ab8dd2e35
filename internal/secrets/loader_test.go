package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrefersFileOverValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("  from-file \n"), 0o600); err != nil {
		t.Fatal(err)
	}

	secret, err := Load(Source{Name: "token", Value: "inline", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "from-file" {
		t.Fatalf("expected trimmed file value, got %q", secret)
	}
}

func TestLoadFailsOnMissingSecret(t *testing.T) {
	if _, err := Load(Source{Name: "token"}); err == nil {
		t.Fatal("expected an error for an unconfigured secret")
	}

	path := filepath.Join(t.TempDir(), "empty")
	if err := os.WriteFile(path, []byte("   \n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Source{Name: "token", File: path}); err == nil {
		t.Fatal("expected an error for an empty secret file")
	}
}

func TestSaveRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	if err := Save(path, "tok-123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected owner-only permissions, got %v", info.Mode().Perm())
	}

	secret, err := Load(Source{Name: "token", File: path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if secret != "tok-123" {
		t.Fatalf("round trip mismatch: %q", secret)
	}
}
