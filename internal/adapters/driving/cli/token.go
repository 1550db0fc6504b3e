package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sfcc-replicator/internal/app"
	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
	"github.com/custodia-labs/sfcc-replicator/internal/core/ports/driven"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage OCAPI access tokens",
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List access token providers",
	Args:  cobra.NoArgs,
	RunE:  runTokenList,
}

var tokenGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print a valid access token",
	Args:  cobra.NoArgs,
	RunE:  runTokenGet,
}

var tokenInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Drop the cached access token",
	Args:  cobra.NoArgs,
	RunE:  runTokenInvalidate,
}

var (
	tokenProvider string
	tokenUser     string
)

// invalidator is implemented by providers with a token cache.
type invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

func init() {
	for _, c := range []*cobra.Command{tokenGetCmd, tokenInvalidateCmd} {
		c.Flags().StringVarP(&tokenProvider, "provider", "p", "", "Provider id <client>-<instance> (default: first registered)")
		c.Flags().StringVarP(&tokenUser, "user", "u", "", "User id (default: agent user)")
	}
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenGetCmd)
	tokenCmd.AddCommand(tokenInvalidateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func runTokenList(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	providers := r.Tokens.Snapshot()
	if len(providers) == 0 {
		cmd.Println("No token providers configured")
		return nil
	}
	for _, p := range providers {
		cmd.Printf("  %s (rank %d)\n", p.Name(), p.Rank())
	}
	return nil
}

func runTokenGet(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	p, err := selectProvider(r)
	if err != nil {
		return err
	}
	token, err := p.AccessToken(cmd.Context(), tokenUserID(r))
	if err != nil {
		return fmt.Errorf("failed to get access token: %w", err)
	}
	cmd.Println(token)
	return nil
}

func runTokenInvalidate(cmd *cobra.Command, _ []string) error {
	r, err := requireRuntime()
	if err != nil {
		return err
	}
	p, err := selectProvider(r)
	if err != nil {
		return err
	}
	inv, ok := p.(invalidator)
	if !ok {
		return fmt.Errorf("provider %s has no token cache: %w", p.Name(), domain.ErrUnsupportedType)
	}
	if err := inv.Invalidate(cmd.Context(), tokenUserID(r)); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	cmd.Printf("Invalidated cached token of %s\n", p.Name())
	return nil
}

func selectProvider(r *app.Runtime) (driven.AccessTokenProvider, error) {
	if tokenProvider != "" {
		p, ok := r.Tokens.Get(tokenProvider)
		if !ok {
			return nil, fmt.Errorf("provider %q: %w", tokenProvider, domain.ErrNoTokenProvider)
		}
		return p, nil
	}
	all := r.Tokens.Snapshot()
	if len(all) == 0 {
		return nil, domain.ErrNoTokenProvider
	}
	return all[len(all)-1], nil
}

func tokenUserID(r *app.Runtime) string {
	if tokenUser != "" {
		return tokenUser
	}
	return r.Agent().UserID
}
