package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionType(t *testing.T) {
	tests := []struct {
		in   string
		want ActionType
	}{
		{"activate", ActionActivate},
		{"DEACTIVATE", ActionDeactivate},
		{" Delete ", ActionDelete},
		{"test", ActionTest},
		{"internal_poll", ActionInternalPoll},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseActionType(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseActionType("publish")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAgentConfig_SecureTransport(t *testing.T) {
	assert.True(t, AgentConfig{TransportURI: "demandware://prod"}.SecureTransport())
	assert.True(t, AgentConfig{TransportURI: "https://example.com"}.SecureTransport())
	assert.False(t, AgentConfig{TransportURI: "http://example.com"}.SecureTransport())
	assert.False(t, AgentConfig{}.SecureTransport())
}

func TestAgentConfig_ParsedHeaders(t *testing.T) {
	cfg := AgentConfig{Headers: []string{"X-Site: main", "bad", ":novalue", "Accept:application/json"}}

	assert.Equal(t, [][2]string{{"X-Site", "main"}, {"Accept", "application/json"}}, cfg.ParsedHeaders())
}
