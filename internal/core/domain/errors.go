package domain

import "errors"

// Domain errors represent replication failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown plugin, converter or keystore type.
	ErrUnsupportedType = errors.New("unsupported type")

	// Replication Errors.

	// ErrNoAgentConfig indicates a replication action carries no agent configuration.
	ErrNoAgentConfig = errors.New("no agent configuration")

	// ErrNoReplicationLog indicates a replication action carries no log sink.
	ErrNoReplicationLog = errors.New("no replication log")

	// ErrMissingAPIType indicates a delivery document without the api-type attribute.
	ErrMissingAPIType = errors.New("invalid JSON, api-type attribute missing")

	// ErrUnsupportedAction indicates an action type the transport cannot deliver.
	ErrUnsupportedAction = errors.New("replication action type not supported")

	// ErrMissingPayload indicates an activation without a request body.
	ErrMissingPayload = errors.New("no request body to send")

	// Instance Errors.

	// ErrNoInstance indicates no backend instance is registered for a lookup.
	ErrNoInstance = errors.New("no commerce instance configured")

	// Authentication Errors.

	// ErrNoTokenProvider indicates no access token provider is registered.
	ErrNoTokenProvider = errors.New("no access token provider available")

	// ErrTokenFetchFailed indicates the token endpoint did not issue a token.
	ErrTokenFetchFailed = errors.New("access token fetch failed")

	// ErrInsecureTokenEndpoint indicates an OAuth endpoint that is not HTTPS.
	ErrInsecureTokenEndpoint = errors.New("token endpoint must use https")
)
