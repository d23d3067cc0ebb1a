package auth

import (
	"fmt"
	"net/http"
	"strings"
)

// Identity is the authenticated caller, resolved per request and handed to
// handlers as an explicit argument. Never persisted.
type Identity struct {
	UserId string
}

// Gate validates the bearer credential on a request and resolves it to an
// Identity. Verification is stateless; no store lookup happens here.
type Gate struct {
	verifier TokenVerifier
}

func NewGate(verifier TokenVerifier) *Gate {
	return &Gate{verifier: verifier}
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("%w: not a bearer header", ErrInvalidToken)
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

func (g *Gate) Authenticate(r *http.Request) (Identity, error) {
	token, err := extractBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return Identity{}, err
	}
	userId, err := g.verifier.Verify(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserId: userId}, nil
}
