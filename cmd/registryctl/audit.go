package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"memorial-registry/internal/auth"
	"memorial-registry/internal/rbac"
)

type purgeFlags struct {
	before    string
	olderThan time.Duration
}

func newAuditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail maintenance",
	}
	cmd.AddCommand(newAuditPurgeCmd())
	return cmd
}

func newAuditPurgeCmd() *cobra.Command {
	var flags purgeFlags

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete audit entries older than a cutoff",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cutoff, err := purgeCutoff(flags, time.Now())
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(ctx context.Context, d *deps) error {
				n, err := d.app.Audit.Purge(ctx, auth.System(rbac.RoleSuperuser), cutoff)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %d audit entries created before %s\n", n, cutoff.Format(time.RFC3339))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.before, "before", "", "RFC 3339 cutoff timestamp")
	cmd.Flags().DurationVar(&flags.olderThan, "older-than", 0, "Delete entries older than this duration (e.g. 8760h)")
	return cmd
}

// purgeCutoff resolves exactly one of --before and --older-than.
func purgeCutoff(flags purgeFlags, now time.Time) (time.Time, error) {
	switch {
	case flags.before != "" && flags.olderThan != 0:
		return time.Time{}, fmt.Errorf("use either --before or --older-than, not both")
	case flags.before != "":
		t, err := time.Parse(time.RFC3339, flags.before)
		if err != nil {
			return time.Time{}, fmt.Errorf("--before must be RFC 3339: %w", err)
		}
		return t, nil
	case flags.olderThan > 0:
		return now.Add(-flags.olderThan), nil
	default:
		return time.Time{}, fmt.Errorf("specify --before or a positive --older-than")
	}
}
