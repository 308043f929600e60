package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"memorial-registry/internal/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDeps(cmd.Context(), func(ctx context.Context, d *deps) error {
					if err := migrations.Up(ctx, d.db); err != nil {
						return err
					}
					return printVersion(ctx, cmd, d)
				})
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDeps(cmd.Context(), func(ctx context.Context, d *deps) error {
					if err := migrations.Down(ctx, d.db); err != nil {
						return err
					}
					return printVersion(ctx, cmd, d)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDeps(cmd.Context(), func(ctx context.Context, d *deps) error {
					return printVersion(ctx, cmd, d)
				})
			},
		},
	)
	return cmd
}

func printVersion(ctx context.Context, cmd *cobra.Command, d *deps) error {
	v, err := migrations.Version(ctx, d.db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}
