package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"listing-progress/internal/auth"
	"listing-progress/internal/config"
)

// newRootCmd builds the devtoken command. Flags are bound to the same viper keys the
// server reads, so --secret, --issuer and --ttl fall back to LISTING_AUTH_* settings.
func newRootCmd() *cobra.Command {
	var (
		userID string
		email  string
	)
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:   "devtoken",
		Short: "Print a signed bearer token for a user id",
		Example: `  # token for the wizard's demo user, valid for the configured ttl
  devtoken --user test-user-123

  # two hour token with an email claim
  devtoken --user test-user-123 --email candidate@example.com --ttl 120`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user is required")
			}

			cfg, err := config.Decode(v)
			if err != nil {
				return err
			}
			if cfg.Auth.TokenTTLMinutes <= 0 {
				return errors.New("token ttl must be positive")
			}

			provider, err := auth.NewJWTProvider(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
			if err != nil {
				return fmt.Errorf("setup jwt provider: %w", err)
			}
			token, err := provider.Issue(
				auth.Identity{UserID: userID, Email: email},
				time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
			)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&userID, "user", "u", "", "user id placed in the token subject (required)")
	flags.StringVar(&email, "email", "", "optional email claim")
	flags.Int("ttl", 0, "token lifetime in minutes (defaults to auth.tokenttlminutes)")
	flags.String("secret", "", "jwt signing secret (defaults to auth.jwtsecret)")
	flags.String("issuer", "", "jwt issuer (defaults to auth.issuer)")
	_ = cmd.MarkFlagRequired("user")

	_ = v.BindPFlag("auth.tokenttlminutes", flags.Lookup("ttl"))
	_ = v.BindPFlag("auth.jwtsecret", flags.Lookup("secret"))
	_ = v.BindPFlag("auth.issuer", flags.Lookup("issuer"))

	return cmd
}
