package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/brokercrm/crm-service/authz"
	"github.com/brokercrm/crm-service/models"
)

// IdentityLoader fetches the identity facts for a verified user id.
type IdentityLoader interface {
	Load(ctx context.Context, userID string) (*models.Identity, error)
}

// Resolver turns an inbound request into an Identity: extract the bearer
// credential, verify it, then read roles/desks/grants fresh from the store.
type Resolver struct {
	verifier TokenVerifier
	loader   IdentityLoader
}

func NewResolver(verifier TokenVerifier, loader IdentityLoader) *Resolver {
	return &Resolver{verifier: verifier, loader: loader}
}

// ExtractCredential pulls the bearer token from the request, trying each
// transport channel in fixed priority order: Authorization header,
// alternate headers, cookie, query parameter, JSON body field. The header
// is the primary channel; everything else is secondary and only consulted
// when the earlier channels are empty.
func ExtractCredential(r *http.Request) (string, bool) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], true
		}
		// A malformed Authorization header does not fall through to the
		// secondary channels; the caller clearly tried to use the primary
		// one and got it wrong.
		return "", false
	}
	for _, h := range []string{"X-Access-Token", "X-Auth-Token"} {
		if v := strings.TrimSpace(r.Header.Get(h)); v != "" {
			return v, true
		}
	}
	if c, err := r.Cookie("access_token"); err == nil && c.Value != "" {
		return c.Value, true
	}
	if v := r.URL.Query().Get("access_token"); v != "" {
		return v, true
	}
	if v := tokenFromJSONBody(r); v != "" {
		return v, true
	}
	return "", false
}

// tokenFromJSONBody peeks at a JSON request body for an access_token field
// and restores the body so handlers can still read it.
func tokenFromJSONBody(r *http.Request) string {
	ct := r.Header.Get("Content-Type")
	if r.Body == nil || !strings.HasPrefix(ct, "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.AccessToken
}

// Resolve authenticates the request. Credential problems report
// ErrUnauthenticated; a store failure while loading the identity facts
// reports ErrAuthorizationUnavailable, because at that point the caller is
// authenticated but authorization cannot be computed.
func (res *Resolver) Resolve(ctx context.Context, r *http.Request) (*models.Identity, error) {
	cred, ok := ExtractCredential(r)
	if !ok {
		return nil, fmt.Errorf("%w: no credential", authz.ErrUnauthenticated)
	}
	userID, err := res.verifier.Verify(ctx, cred)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", authz.ErrUnauthenticated, err)
	}
	ident, err := res.loader.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: identity load: %v", authz.ErrAuthorizationUnavailable, err)
	}
	return ident, nil
}
