package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTokenGenerateInspectRoundTrip(t *testing.T) {
	out, err := runCommand(t, "token", "generate", "7", "3", "--secret", "cli-secret")
	require.NoError(t, err)
	tok := strings.TrimSpace(out)
	require.NotEmpty(t, tok)

	out, err = runCommand(t, "token", "inspect", tok, "--secret", "cli-secret")
	require.NoError(t, err)

	var claims struct {
		GuestID int64 `json:"guest_id"`
		EventID int64 `json:"event_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &claims))
	assert.Equal(t, int64(7), claims.GuestID)
	assert.Equal(t, int64(3), claims.EventID)
}

func TestTokenGenerateFullLink(t *testing.T) {
	out, err := runCommand(t, "token", "generate", "7", "3",
		"--secret", "cli-secret", "--base-url", "https://rsvp.example.com/")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "https://rsvp.example.com/rsvp/"))
}

func TestTokenInspectRejectsTamperedToken(t *testing.T) {
	out, err := runCommand(t, "token", "generate", "7", "3", "--secret", "cli-secret")
	require.NoError(t, err)
	tok := strings.TrimSpace(out)

	_, err = runCommand(t, "token", "inspect", tok, "--secret", "other-secret")
	require.Error(t, err)
}

func TestTokenGenerateRequiresSecret(t *testing.T) {
	t.Setenv("RSVP_TOKEN_SECRET", "")
	_, err := runCommand(t, "token", "generate", "7", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RSVP_TOKEN_SECRET")
}
