package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"memorial-registry/internal/auth"
	"memorial-registry/internal/config"
	"memorial-registry/internal/rbac"
)

type tokenFlags struct {
	userID string
	role   string
}

// newTokenCmd mints a staff access token with the configured JWT secret. It
// is the only way to obtain one: sign-in lives outside the registry.
func newTokenCmd() *cobra.Command {
	var flags tokenFlags

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			tok, err := issueToken(cfg.Auth, flags, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.userID, "user", "u", "", "User id carried in the token (required)")
	cmd.Flags().StringVarP(&flags.role, "role", "r", rbac.RoleModerator, "Role: moderator or superuser")
	return cmd
}

func issueToken(cfg config.AuthConfig, flags tokenFlags, now time.Time) (string, error) {
	if flags.userID == "" {
		return "", fmt.Errorf("--user is required")
	}
	if !rbac.IsStaff(flags.role) {
		return "", fmt.Errorf("--role must be %s or %s, got %q", rbac.RoleModerator, rbac.RoleSuperuser, flags.role)
	}
	m, err := auth.NewManager(cfg)
	if err != nil {
		return "", err
	}
	pair, err := m.IssuePair(now, flags.userID, flags.role)
	if err != nil {
		return "", err
	}
	return pair.AccessToken, nil
}
