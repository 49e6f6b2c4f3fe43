// Package auth resolves the caller identity from a bearer credential.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingCredential indicates no bearer token was presented.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential indicates the identity provider rejected the token.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity is the trusted, server-resolved caller.
type Identity struct {
	UserID string
	Email  string
}

// Provider verifies a raw token against an identity source.
type Provider interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// Resolver turns an Authorization header into an Identity.
type Resolver struct {
	provider Provider
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve extracts the bearer token from header and verifies it. Every failure wraps
// either ErrMissingCredential or ErrInvalidCredential.
func (r *Resolver) Resolve(ctx context.Context, header string) (Identity, error) {
	token := BearerToken(header)
	if token == "" {
		return Identity{}, ErrMissingCredential
	}

	identity, err := r.provider.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, ErrInvalidCredential) {
			return Identity{}, err
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return Identity{}, fmt.Errorf("%w: provider returned empty user id", ErrInvalidCredential)
	}
	return identity, nil
}

// BearerToken returns the token of a "Bearer <token>" header, or "" if there is none.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
