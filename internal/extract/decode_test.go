package extract

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viraflow/internal/config"
)

func TestDecodeProposals(t *testing.T) {
	got, err := decodeProposals([]byte(`{"extracted_tasks":[{"task":"Buy milk","category":"Home","date":"tomorrow"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Proposal{{Task: "Buy milk", Category: "Home", Date: "tomorrow"}}, got)

	got, err = decodeProposals([]byte(`{"tasks":[{"task":"Call mom"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Proposal{{Task: "Call mom"}}, got)

	got, err = decodeProposals([]byte(`{"extracted_tasks":[]}`))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecodeProposalsErrors(t *testing.T) {
	_, err := decodeProposals([]byte(`{"error":"quota exceeded"}`))
	assert.EqualError(t, err, "service error: quota exceeded")

	_, err = decodeProposals([]byte(`<html>`))
	assert.ErrorContains(t, err, "malformed response")
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"Here you go:\n```\n{\"a\":1}\n```\nbye", `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanJSON(tt.in), "input %q", tt.in)
	}
}

func TestSnippetKeepsRunesWhole(t *testing.T) {
	assert.Equal(t, "short", snippet([]byte("  short \n")))

	long := strings.Repeat("é", 250)
	got := snippet([]byte(long))
	assert.True(t, utf8.ValidString(got), "snippet must not split a rune")
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}

func TestNewAppliesTimeoutToEitherBackend(t *testing.T) {
	s := config.DefaultSettings().Extractor
	s.Timeout = "20ms"

	ex, err := New(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, ex.(*HTTP).timeout)

	s.Backend = config.BackendGemini
	s.APIKey = "k"
	ex, err = New(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, ex.(*Gemini).timeout)

	s.Timeout = ""
	ex, err = New(context.Background(), s, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, ex.(*Gemini).timeout)
}
