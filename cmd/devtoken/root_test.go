package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-progress/internal/auth"
)

func runDevtoken(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return strings.TrimSpace(out.String()), err
}

func TestDevtokenUsesEnvironmentSettings(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTING_AUTH_JWTSECRET", "env-secret")
	t.Setenv("LISTING_AUTH_ISSUER", "listing-progress")

	token, err := runDevtoken(t, "--user", "test-user-123", "--email", "candidate@example.com")
	require.NoError(t, err)

	provider, err := auth.NewJWTProvider("env-secret", "listing-progress")
	require.NoError(t, err)
	identity, err := provider.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{UserID: "test-user-123", Email: "candidate@example.com"}, identity)
}

func TestDevtokenFlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTING_AUTH_JWTSECRET", "env-secret")

	token, err := runDevtoken(t, "--user", "u", "--secret", "flag-secret", "--issuer", "cli", "--ttl", "1")
	require.NoError(t, err)

	provider, err := auth.NewJWTProvider("flag-secret", "cli")
	require.NoError(t, err)
	_, err = provider.Verify(context.Background(), token)
	require.NoError(t, err)

	envProvider, err := auth.NewJWTProvider("env-secret", "cli")
	require.NoError(t, err)
	_, err = envProvider.Verify(context.Background(), token)
	assert.ErrorIs(t, err, auth.ErrInvalidCredential)
}

func TestDevtokenTTLFlagSetsExpiry(t *testing.T) {
	t.Chdir(t.TempDir())

	token, err := runDevtoken(t, "--user", "u", "--secret", "s", "--ttl", "5")
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte("s"), nil
	})
	require.NoError(t, err)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.Equal(t, 5*time.Minute, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.Equal(t, "u", claims.Subject)
}

func TestDevtokenRequiresUserAndSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LISTING_AUTH_JWTSECRET", "")

	_, err := runDevtoken(t, "--secret", "s")
	assert.Error(t, err)

	_, err = runDevtoken(t, "--user", "u")
	assert.ErrorContains(t, err, "jwt secret is required")

	_, err = runDevtoken(t, "--user", "u", "--secret", "s", "--ttl", "-1")
	assert.Error(t, err)
}
