package oidc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/homelabdocs/homelabdocs/backend/go-services/internal/content"
	"github.com/homelabdocs/homelabdocs/backend/go-services/pkg/middleware"
)

// Verifier checks ID tokens from an external OpenID Connect provider and
// maps them onto the claims the API reads: sub, username, email, role.
// Mapped tokens carry "idp": "oidc" since their subject is not a local id.
type Verifier struct {
	verifier  *oidc.IDTokenVerifier
	adminRole string
}

// NewVerifier discovers the provider at issuer. Provider roles equal to
// adminRole become the local admin role.
func NewVerifier(ctx context.Context, issuer, clientID, adminRole string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	return newVerifier(provider.Verifier(&oidc.Config{ClientID: clientID}), adminRole), nil
}

func newVerifier(v *oidc.IDTokenVerifier, adminRole string) *Verifier {
	return &Verifier{verifier: v, adminRole: adminRole}
}

// Verify validates signature, issuer, audience and expiry.
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("oidc claims: %w", err)
	}
	return &token{claims: mapClaims(claims, v.adminRole)}, nil
}

type token struct {
	claims map[string]interface{}
}

func (t *token) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func mapClaims(in map[string]interface{}, adminRole string) map[string]interface{} {
	out := make(map[string]interface{}, len(in)+3)
	for k, v := range in {
		out[k] = v
	}
	out["idp"] = "oidc"

	username, _ := in["preferred_username"].(string)
	if username == "" {
		username, _ = in["email"].(string)
	}
	if username == "" {
		username, _ = in["sub"].(string)
	}
	out["username"] = username

	out["role"] = content.RoleUser
	if adminRole != "" && hasRole(in, adminRole) {
		out["role"] = content.RoleAdmin
	}
	return out
}

// hasRole looks in the places providers commonly put roles: a top-level
// "roles" or "groups" list and Keycloak's realm_access.roles.
func hasRole(claims map[string]interface{}, role string) bool {
	lists := []interface{}{claims["roles"], claims["groups"]}
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		lists = append(lists, ra["roles"])
	}
	for _, l := range lists {
		items, _ := l.([]interface{})
		for _, it := range items {
			if s, _ := it.(string); s == role {
				return true
			}
		}
	}
	return false
}
