package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/imgajeed76/pinvite/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv points pinvite at a fresh sqlite file and config in a temp dir.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("NO_COLOR", "1")
	t.Setenv("PINVITE_CONFIG", filepath.Join(dir, "config.toml"))
	t.Setenv("PINVITE_DATABASE_DRIVER", "sqlite")
	t.Setenv("PINVITE_DATABASE_PATH", filepath.Join(dir, "invites.db"))
	t.Setenv("PINVITE_MAIL_PROVIDER", "none")
	t.Setenv("PINVITE_MAIL_APP_URL", "https://app.example.com")
	t.Setenv("PINVITE_LOCALE", "en-US")
	t.Setenv("PINVITE_OTLP_ENDPOINT", "")
	t.Setenv("PINVITE_LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := execute(context.Background(), root, args, &errOut)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "pinvite %s", strings.Join(args, " "))
	return out
}

type listed struct {
	Total   int `json:"total"`
	Records []struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		Email       string `json:"email"`
		Role        string `json:"role"`
		Status      string `json:"status"`
		ResendCount int    `json:"resend_count"`
	} `json:"records"`
}

func listJSON(t *testing.T, args ...string) listed {
	t.Helper()
	out := mustRun(t, append([]string{"list", "--json"}, args...)...)
	var l listed
	require.NoError(t, json.Unmarshal([]byte(out), &l), out)
	return l
}

func TestInit(t *testing.T) {
	dir := testEnv(t)

	out := mustRun(t, "init")
	assert.Contains(t, out, "Initialized invite store")
	assert.Contains(t, out, "Driver: sqlite")
	assert.Contains(t, out, filepath.Join(dir, "invites.db"))
	assert.Contains(t, out, "Mail delivery is off")

	mustRun(t, "init")
	out = mustRun(t, "list", "--plain")
	assert.Contains(t, out, "(0 pending)")
}

func TestInit_Save(t *testing.T) {
	dir := testEnv(t)
	other := filepath.Join(dir, "other.db")

	out := mustRun(t, "init", "--path", other, "--save")
	assert.Contains(t, out, "Saved to")

	data, err := os.ReadFile(filepath.Join(dir, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), other)
}

func TestList_RequiresSchema(t *testing.T) {
	testEnv(t)

	_, err := run(t, "list", "--plain")
	var cliErr *util.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, util.SchemaMissingError().Title, cliErr.Title)
}

func TestSend_Link(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")

	out := mustRun(t, "send", "ada@example.com", "Bob@Example.com", "ada@example.com", "--type", "link", "--role", "admin")
	assert.Contains(t, out, "Invited ada@example.com")
	assert.Contains(t, out, "Invited bob@example.com")
	assert.Equal(t, 2, strings.Count(out, "https://app.example.com/invite/accept?token="))

	l := listJSON(t, "--sort", "email")
	require.Equal(t, 2, l.Total)
	assert.Equal(t, "ada@example.com", l.Records[0].Email)
	assert.Equal(t, "bob@example.com", l.Records[1].Email)
	assert.Equal(t, "link", l.Records[0].Type)
	assert.Equal(t, "admin", l.Records[0].Role)
	assert.Equal(t, "pending", l.Records[0].Status)

	l = listJSON(t, "--sort", "email", "--desc")
	assert.Equal(t, "bob@example.com", l.Records[0].Email)
}

func TestSend_EmailWithMailOff(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")

	out := mustRun(t, "send", "ada@example.com")
	assert.Contains(t, out, "/invite/accept?token=")
	assert.Contains(t, out, "Mail delivery is off")
}

func TestSend_Invalid(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")

	_, err := run(t, "send", "ada@example.com", "not an address")
	assert.ErrorIs(t, err, util.ErrInvalidEmail)

	_, err = run(t, "send", "ada@example.com", "--expires", "soon")
	assert.Error(t, err)

	_, err = run(t, "send", "ada@example.com", "--type", "pigeon")
	assert.Error(t, err)

	assert.Zero(t, listJSON(t).Total)
}

func TestList_SearchAndPaging(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")
	mustRun(t, "send", "--type", "link", "a@acme.io", "b@acme.io", "c@acme.io", "d@other.io")

	l := listJSON(t, "--search", "acme", "--sort", "email", "--page-size", "2", "--page", "2")
	assert.Equal(t, 3, l.Total)
	require.Len(t, l.Records, 1)
	assert.Equal(t, "c@acme.io", l.Records[0].Email)

	out := mustRun(t, "list", "--raw", "--wide", "--sort", "email")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "\ta@acme.io\t")
}

func TestShowRevoke(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")
	mustRun(t, "send", "--type", "link", "ada@example.com")
	id := listJSON(t).Records[0].ID

	out := mustRun(t, "show", util.ShortID(id))
	assert.Contains(t, out, "Invite details")
	assert.Contains(t, out, "ada@example.com")
	assert.Contains(t, out, strings.ToLower(id))

	out = mustRun(t, "revoke", id)
	assert.Contains(t, out, "Invite to ada@example.com revoked")
	assert.Zero(t, listJSON(t).Total)

	l := listJSON(t, "--status", "all")
	require.Equal(t, 1, l.Total)
	assert.Equal(t, "revoked", l.Records[0].Status)

	_, err := run(t, "revoke", id)
	assert.ErrorContains(t, err, "1 of 1 invites not revoked")

	_, err = run(t, "show", "ZZZZZZ")
	var cliErr *util.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, util.InviteNotFoundError("ZZZZZZ").Title, cliErr.Title)
}

func TestResend(t *testing.T) {
	testEnv(t)
	mustRun(t, "init")
	mustRun(t, "send", "--type", "link", "ada@example.com", "bob@example.com")
	id := listJSON(t, "--sort", "email").Records[0].ID

	out := mustRun(t, "resend", id)
	assert.Contains(t, out, "Invite to ada@example.com resent")
	assert.Contains(t, out, "/invite/accept?token=")

	out = mustRun(t, "show", id, "--json")
	assert.Contains(t, out, `"resend_count": 1`)

	out = mustRun(t, "resend", "--all")
	assert.Equal(t, 2, strings.Count(out, "resent"))
	for _, r := range listJSON(t, "--sort", "email").Records {
		assert.Equal(t, "pending", r.Status)
	}

	_, err := run(t, "resend")
	assert.Error(t, err)
}

func TestConfig(t *testing.T) {
	dir := testEnv(t)

	mustRun(t, "config", "set", "list.page_size", "50")
	assert.Equal(t, "50\n", mustRun(t, "config", "get", "list.page_size"))
	assert.FileExists(t, filepath.Join(dir, "config.toml"))

	_, err := run(t, "config", "set", "list.page_size", "0")
	assert.Error(t, err)
	_, err = run(t, "config", "get", "no.such_key")
	assert.Error(t, err)

	mustRun(t, "config", "set", "mail.api_key", "re_secret")
	out := mustRun(t, "config", "list")
	assert.Contains(t, out, "mail.api_key=********")
	assert.NotContains(t, out, "re_secret")
	assert.Contains(t, out, "list.page_size=50")

	assert.Equal(t, filepath.Join(dir, "config.toml")+"\n", mustRun(t, "config", "path"))
}

func TestDoctor(t *testing.T) {
	testEnv(t)

	out := mustRun(t, "doctor")
	assert.Contains(t, out, "Checking schema... MISSING")
	assert.Contains(t, out, "Some issues were found")

	mustRun(t, "init")
	mustRun(t, "send", "--type", "link", "ada@example.com")
	out = mustRun(t, "doctor")
	assert.Contains(t, out, "1 pending")
	assert.Contains(t, out, "All checks passed!")
}

func TestVersionAndCompletion(t *testing.T) {
	testEnv(t)

	assert.Contains(t, mustRun(t, "version"), "pinvite version "+Version)
	assert.Contains(t, mustRun(t, "completion", "bash"), "bash completion")
	_, err := run(t, "completion", "tcsh")
	assert.Error(t, err)
}
