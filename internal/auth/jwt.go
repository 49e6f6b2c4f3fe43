package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// JWTProvider verifies HS256 tokens whose subject is the user id.
type JWTProvider struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewJWTProvider(secret, issuer string) (*JWTProvider, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JWTProvider{
		secret: []byte(secret),
		issuer: strings.TrimSpace(issuer),
		now:    time.Now,
	}, nil
}

func (p *JWTProvider) Verify(ctx context.Context, token string) (Identity, error) {
	var claims tokenClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}

	subject := strings.TrimSpace(claims.Subject)
	if subject == "" {
		return Identity{}, fmt.Errorf("%w: token subject is empty", ErrInvalidCredential)
	}
	return Identity{UserID: subject, Email: claims.Email}, nil
}

// Issue signs a token for identity valid for ttl.
func (p *JWTProvider) Issue(identity Identity, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity.UserID) == "" {
		return "", errors.New("user id is required")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}

	now := p.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UserID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email: identity.Email,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
