package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viraflow/internal/commands"
	"viraflow/internal/config"
	"viraflow/internal/exitcode"
)

const testOAuthClient = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"]}}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoginCommand_NoOAuthClient(t *testing.T) {
	dir := t.TempDir()
	stdout, stderr, code := runCommandIn(t, dir, &commands.LoginCmd{}, nil, nil, false)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: oauth_client.json not found in "+dir+"\n") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if !strings.Contains(stderr, filepath.Join(dir, "oauth_client.json")) {
		t.Error("setup instructions should name the expected client file path")
	}
}

func TestLoginCommand_InvalidOAuthClient(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "oauth_client.json", `not json`)

	_, stderr, code := runCommandIn(t, dir, &commands.LoginCmd{}, nil, nil, false)
	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.HasPrefix(stderr, "error: invalid oauth_client.json") {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// An unusable stored token must send login back through the browser
// flow. The cancelled context stops it at the callback wait.
func TestLoginCommand_UnusableTokenRelogs(t *testing.T) {
	tokens := map[string]string{
		"corrupt":          `{{{`,
		"no refresh token": `{"access_token":"test","token_type":"Bearer","expiry":"2020-01-01T00:00:00Z"}`,
	}
	for name, token := range tokens {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "oauth_client.json", testOAuthClient)
			writeFile(t, dir, "token.json", token)

			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			var out, errOut bytes.Buffer
			cfg := &config.Config{Dir: dir}
			code := (&commands.LoginCmd{}).Run(ctx, cfg, nil, nil, &out, &errOut)

			if out.String() == "already logged in\n" {
				t.Error("should not report an unusable token as logged in")
			}
			if code != exitcode.AuthError {
				t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
			}
		})
	}
}

func TestLogoutCommand_OnlyRemovesToken(t *testing.T) {
	dir := t.TempDir()
	oauthPath := writeFile(t, dir, "oauth_client.json", testOAuthClient)
	tokenPath := writeFile(t, dir, "token.json", `{"access_token":"test","refresh_token":"test"}`)
	dataPath := writeFile(t, dir, "viraflow.db", "tasks")

	stdout, stderr, code := runCommandIn(t, dir, &commands.LogoutCmd{}, nil, nil, false)
	expect(t, code, exitcode.Success, stdout, "ok\n", stderr, "")

	if _, err := os.Stat(tokenPath); !os.IsNotExist(err) {
		t.Error("token.json should have been deleted")
	}
	for _, keep := range []string{oauthPath, dataPath} {
		if _, err := os.Stat(keep); err != nil {
			t.Errorf("%s should not have been deleted", filepath.Base(keep))
		}
	}
}

func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.LogoutCmd{}, nil, nil, false)
	expect(t, code, exitcode.Success, stdout, "not logged in\n", stderr, "")

	stdout, stderr, code = runCommand(t, &commands.LogoutCmd{}, nil, nil, true)
	expect(t, code, exitcode.Success, stdout, "", stderr, "")
}
