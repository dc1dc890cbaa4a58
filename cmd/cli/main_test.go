package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/and161185/gratitude-journal/internal/token"
)

func withTmpConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return filepath.Join(dir, "gratitude-journal")
}

func Test_cfgDir_And_Paths(t *testing.T) {
	base := withTmpConfig(t)
	if got := cfgDir(); got != base {
		t.Fatalf("cfgDir=%q, want %q", got, base)
	}
	if !strings.HasPrefix(tokenPath(), base) || !strings.HasSuffix(tokenPath(), "token.json") {
		t.Fatalf("tokenPath unexpected: %s", tokenPath())
	}
}

func Test_token_SaveLoad(t *testing.T) {
	_ = withTmpConfig(t)

	if _, err := loadToken(); err != errLoginRequired {
		t.Fatalf("expected login required when token file missing, got %v", err)
	}
	if err := saveToken(tokenFile{AccessToken: "tok", ExpiresAt: time.Now().Add(time.Minute)}); err != nil {
		t.Fatalf("saveToken: %v", err)
	}
	tok, err := loadToken()
	if err != nil || tok != "tok" {
		t.Fatalf("loadToken: tok=%q err=%v", tok, err)
	}
	fi, err := os.Stat(tokenPath())
	if err != nil || fi.Mode().Perm() != 0o600 {
		t.Fatalf("token file mode: %v %v", fi, err)
	}

	if err := saveToken(tokenFile{AccessToken: "tok2", ExpiresAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("saveToken expired: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatalf("want error for expired token")
	}

	if err := removeToken(); err != nil {
		t.Fatalf("removeToken: %v", err)
	}
	if err := removeToken(); err != nil {
		t.Fatalf("removeToken twice: %v", err)
	}
}

func Test_tokenExpiry(t *testing.T) {
	t.Parallel()

	codec, err := token.NewCodec(token.Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}
	now := time.Now()
	tok, exp, err := codec.IssueAccessToken(1, "alice", nil, now)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if got := tokenExpiry(tok); !got.Equal(exp.Truncate(time.Second)) {
		t.Fatalf("expiry: got %v want %v", got, exp)
	}

	fallback := tokenExpiry("garbage")
	if fallback.Before(now) || fallback.After(now.Add(16*time.Minute)) {
		t.Fatalf("fallback expiry out of range: %v", fallback)
	}
}

func Test_parseID(t *testing.T) {
	t.Parallel()

	if id, err := parseID("42"); err != nil || id != "42" {
		t.Fatalf("parseID(42) = %q, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "abc", "1/2"} {
		if _, err := parseID(bad); err == nil {
			t.Fatalf("parseID(%q) accepted", bad)
		}
	}
}

func Test_readAll(t *testing.T) {
	t.Parallel()

	b, err := readAll("-", strings.NewReader("from stdin"))
	if err != nil || string(b) != "from stdin" {
		t.Fatalf("stdin: %q %v", b, err)
	}
	p := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(p, []byte("from file"), 0o600); err != nil {
		t.Fatal(err)
	}
	b, err = readAll(p, nil)
	if err != nil || string(b) != "from file" {
		t.Fatalf("file: %q %v", b, err)
	}
}
