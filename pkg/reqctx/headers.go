package reqctx

import (
	"net/http"
	"strings"

	"github.com/Alijeyrad/heimdall/pkg/claims"
)

const (
	HeaderSessionID     = "Mcp-Session-Id"
	HeaderAuthorization = "Authorization"
)

// Headers is a header map keyed by lower-cased name.
type Headers map[string]string

// NewHeaders folds h into a Headers map. When two keys differ only by case
// the lexically last one wins, which keeps the result independent of map
// iteration order.
func NewHeaders(h map[string]string) Headers {
	out := make(Headers, len(h))
	winner := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if prev, ok := winner[lk]; ok && prev > k {
			continue
		}
		winner[lk] = k
		out[lk] = v
	}
	return out
}

// Get looks a header up by case-insensitive name.
func (h Headers) Get(name string) (string, bool) {
	v, ok := h[strings.ToLower(name)]
	return v, ok
}

// Clone returns a copy.
func (h Headers) Clone() Headers {
	out := make(Headers, len(h))
	for k, v := range h {
		out[k] = v
	}
	return out
}

// FromHeaders builds a RequestContext from raw request headers.
func FromHeaders(h map[string]string) *RequestContext {
	headers := NewHeaders(h)
	rc := &RequestContext{
		headers: headers,
		claims:  claims.Claims{},
	}

	rc.sessionID, _ = headers.Get(HeaderSessionID)

	if auth, ok := headers.Get(HeaderAuthorization); ok && auth != "" {
		rc.claims = claims.Decode(auth)
		rc.userID, _ = rc.claims.UserID()
	}

	return rc
}

// FromMultiHeaders builds a RequestContext from multi-valued headers, such as
// the map Fiber returns. The first value of each header is used.
func FromMultiHeaders(h map[string][]string) *RequestContext {
	flat := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			flat[k] = vs[0]
		}
	}
	return FromHeaders(flat)
}

// FromHTTPHeader builds a RequestContext from net/http headers.
func FromHTTPHeader(h http.Header) *RequestContext {
	return FromMultiHeaders(h)
}
