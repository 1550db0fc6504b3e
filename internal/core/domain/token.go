package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// AccessToken is a cached OAuth access token.
type AccessToken struct {
	Value    string
	IssuedAt time.Time
}

// Valid reports whether the token is still usable at now given the leeway.
func (t AccessToken) Valid(leeway time.Duration, now time.Time) bool {
	return t.Value != "" && t.IssuedAt.Add(leeway).After(now)
}

// Encode renders the token as "value:issuedAtMillis".
func (t AccessToken) Encode() string {
	return t.Value + ":" + strconv.FormatInt(t.IssuedAt.UnixMilli(), 10)
}

// DecodeAccessToken parses the "value:issuedAtMillis" form.
func DecodeAccessToken(s string) (AccessToken, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 {
		return AccessToken{}, fmt.Errorf("%w: malformed cached token", ErrInvalidInput)
	}
	millis, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil {
		return AccessToken{}, fmt.Errorf("%w: malformed token timestamp", ErrInvalidInput)
	}
	return AccessToken{Value: s[:i], IssuedAt: time.UnixMilli(millis)}, nil
}

// TokenKey identifies a cached token.
type TokenKey struct {
	ProviderID string
	UserID     string
}

// TokenProviderID is the registry key of the provider for one client and
// instance.
func TokenProviderID(clientID, instanceID string) string {
	return clientID + "-" + instanceID
}
