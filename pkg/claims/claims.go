// Package claims decodes bearer token payloads into unverified claim maps.
//
// Nothing here establishes trust. The signature segment is never checked, so
// every value returned by this package is a hint for observability only and
// must not be used for authorization decisions.
package claims

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"
)

const bearerPrefix = "bearer "

// UserIDClaimKeys lists the claim names checked for a user id, highest precedence first.
var UserIDClaimKeys = []string{"sub", "user_id", "userId", "uid", "user"}

var (
	json    = jsoniter.ConfigCompatibleWithStandardLibrary
	decoder = jwt.NewParser(jwt.WithPaddingAllowed())
)

// Claims is a decoded token payload.
type Claims map[string]any

// String returns the claim under key when it is a non-empty string.
func (c Claims) String(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// UserID returns the first non-empty string claim from UserIDClaimKeys.
func (c Claims) UserID() (string, bool) {
	for _, key := range UserIDClaimKeys {
		if s, ok := c.String(key); ok {
			return s, true
		}
	}
	return "", false
}

// Clone returns a shallow copy.
func (c Claims) Clone() Claims {
	out := make(Claims, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Decode parses the payload of a header.payload.signature token. A leading
// "Bearer " is stripped in any case. Malformed input yields an empty map.
func Decode(token string) Claims {
	if len(token) >= len(bearerPrefix) && strings.EqualFold(token[:len(bearerPrefix)], bearerPrefix) {
		token = token[len(bearerPrefix):]
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}
	}

	payload, err := decoder.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}
	}

	var out Claims
	if err := json.Unmarshal(payload, &out); err != nil || out == nil {
		return Claims{}
	}
	return out
}

// ExtractUserID decodes token and returns its user id claim, if any.
func ExtractUserID(token string) (string, bool) {
	return Decode(token).UserID()
}
