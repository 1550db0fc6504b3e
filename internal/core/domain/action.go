package domain

import (
	"fmt"
	"strings"
	"time"
)

// ActionType is the kind of replication requested by the CMS.
type ActionType string

const (
	// ActionActivate publishes a resource to the backend.
	ActionActivate ActionType = "ACTIVATE"
	// ActionDeactivate withdraws a published resource.
	ActionDeactivate ActionType = "DEACTIVATE"
	// ActionDelete removes a resource that was deleted in the CMS.
	ActionDelete ActionType = "DELETE"
	// ActionTest is the agent connection test.
	ActionTest ActionType = "TEST"
	// ActionInternalPoll is the reverse replication poll.
	ActionInternalPoll ActionType = "INTERNAL_POLL"
)

// ParseActionType parses an action name case-insensitively.
func ParseActionType(s string) (ActionType, error) {
	switch t := ActionType(strings.ToUpper(strings.TrimSpace(s))); t {
	case ActionActivate, ActionDeactivate, ActionDelete, ActionTest, ActionInternalPoll:
		return t, nil
	}
	return "", fmt.Errorf("%w: action %q", ErrInvalidInput, s)
}

// String returns the action name.
func (t ActionType) String() string {
	return string(t)
}

// IsActivate reports whether the action publishes content.
func (t ActionType) IsActivate() bool {
	return t == ActionActivate
}

// AgentScheme prefixes transport URIs that route to a commerce instance.
const AgentScheme = "demandware://"

// AgentConfig is the replication agent configuration an action runs under.
type AgentConfig struct {
	// Name identifies the agent.
	Name string

	// TransportURI is the agent target, usually demandware://{instanceId}.
	TransportURI string

	// UserID is the identity access tokens are cached for.
	UserID string

	// OAuth enables bearer token authentication for OCAPI calls.
	OAuth bool

	// Headers are extra "name:value" request headers.
	Headers []string
}

// SecureTransport reports whether the transport URI resolves to https.
// The agent scheme is always delivered over https.
func (c AgentConfig) SecureTransport() bool {
	uri := strings.Replace(c.TransportURI, AgentScheme, "https://", 1)
	return strings.HasPrefix(uri, "https://")
}

// ParsedHeaders splits the configured header lines into name/value pairs.
// Lines without a colon or with an empty name are skipped.
func (c AgentConfig) ParsedHeaders() [][2]string {
	out := make([][2]string, 0, len(c.Headers))
	for _, line := range c.Headers {
		name, value, ok := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		out = append(out, [2]string{name, strings.TrimSpace(value)})
	}
	return out
}

// ReplicationAction is one unit of replication work.
type ReplicationAction struct {
	// Type is the requested action.
	Type ActionType

	// Path is the CMS path of the replicated resource.
	Path string

	// Agent is the agent configuration the action runs under.
	Agent *AgentConfig

	// Time is when the action was requested.
	Time time.Time
}
