package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
)

// StaticProvider accepts exactly one configured token, for local development against
// the wizard UI. Any other token, however well formed, is rejected.
type StaticProvider struct {
	token    string
	identity Identity
}

func NewStaticProvider(token string, identity Identity) (*StaticProvider, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("static token is required")
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return nil, errors.New("static user id is required")
	}
	return &StaticProvider{token: token, identity: identity}, nil
}

func (p *StaticProvider) Verify(ctx context.Context, token string) (Identity, error) {
	if subtle.ConstantTimeCompare([]byte(token), []byte(p.token)) != 1 {
		return Identity{}, ErrInvalidCredential
	}
	return p.identity, nil
}
