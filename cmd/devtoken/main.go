package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spec-kit/care-access/internal/auth"
	"github.com/spec-kit/care-access/internal/config"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "devtoken",
		Short: "Mint and inspect bearer tokens for local development",
	}
	rootCmd.AddCommand(mintCmd(), inspectCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func mintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print a signed token for a principal",
		RunE: func(cmd *cobra.Command, args []string) error {
			principal, _ := cmd.Flags().GetString("principal")
			ttl, _ := cmd.Flags().GetDuration("ttl")
			if principal == "" {
				return fmt.Errorf("--principal is required")
			}
			tokens, err := tokenManager(ttl)
			if err != nil {
				return err
			}
			signed, token, err := tokens.GenerateToken(principal)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), signed)
			fmt.Fprintf(cmd.ErrOrStderr(), "principal=%s expires_at=%s\n", principal, token.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().String("principal", "", "Principal to embed as the token subject")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to AUTH_ACCESS_TOKEN_TTL_MINUTES)")
	return cmd
}

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <token>",
		Short: "Validate a token and print its principal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := tokenManager(0)
			if err != nil {
				return err
			}
			claims, err := tokens.ParseToken(args[0])
			if err != nil {
				return fmt.Errorf("invalid token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "principal=%s expires_at=%s\n", claims.Subject, claims.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
}

func tokenManager(ttl time.Duration) (*auth.TokenManager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = cfg.Auth.AccessTokenTTL()
	}
	return auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl), nil
}
