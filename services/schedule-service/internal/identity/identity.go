// Package identity authenticates callers against the external identity
// provider that owns user records and credentials.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/clinicbook/clinicbook/libs/auth"
)

// ErrUnauthorized covers every authentication failure. Callers see a single
// opaque rejection regardless of whether the token was missing, malformed,
// expired, or the provider was unreachable.
var ErrUnauthorized = errors.New("unauthorized")

type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Validator interface {
	Validate(ctx context.Context, token string) (Identity, error)
}

// RemoteValidator defers token validation to the identity provider's
// introspection endpoint.
type RemoteValidator struct {
	baseURL string
	client  *http.Client
}

func NewRemoteValidator(baseURL string) *RemoteValidator {
	return &RemoteValidator{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (v *RemoteValidator) Validate(ctx context.Context, token string) (Identity, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/tokens/validate", bytes.NewReader(body))
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Identity{}, ErrUnauthorized
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil || id.ID == "" {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}

// JWTValidator verifies tokens locally. HS256 tokens are checked against the
// shared secret; RS256 tokens against the provider's JWKS.
type JWTValidator struct {
	secret string
	jwks   *auth.JWKSClient
}

func NewJWTValidator(secret string, jwks *auth.JWKSClient) *JWTValidator {
	return &JWTValidator{secret: secret, jwks: jwks}
}

func (v *JWTValidator) Validate(_ context.Context, token string) (Identity, error) {
	header, err := auth.ParseHeader(token)
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	var claims *auth.Claims
	switch header.Alg {
	case "HS256":
		if v.secret == "" {
			return Identity{}, ErrUnauthorized
		}
		claims, err = auth.ParseAndVerifyHS256(token, v.secret)
	case "RS256":
		if v.jwks == nil {
			return Identity{}, ErrUnauthorized
		}
		key, kerr := v.jwks.Get(header.Kid)
		if kerr != nil {
			return Identity{}, ErrUnauthorized
		}
		claims, err = auth.VerifyRS256(token, key)
	default:
		return Identity{}, fmt.Errorf("%w: unsupported alg %q", ErrUnauthorized, header.Alg)
	}
	if err != nil {
		return Identity{}, ErrUnauthorized
	}

	return Identity{ID: claims.Sub, Email: claims.Email, Role: claims.Role}, nil
}
