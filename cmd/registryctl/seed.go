package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"memorial-registry/internal/auth"
	"memorial-registry/internal/rbac"
	"memorial-registry/internal/slug"
	"memorial-registry/internal/victims"
)

// seedRecord is one entry of a seed file: a victim plus tag names.
type seedRecord struct {
	victims.VictimInput
	DateOfBirth string   `json:"date_of_birth"`
	DateOfDeath string   `json:"date_of_death"`
	Tags        []string `json:"tags"`
}

type seedStats struct {
	Victims int
	Tags    int
	Links   int
}

func newSeedCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load victims from a JSON file",
		Long:  "Creates every victim in the file through the audited mutation pipeline. Tags are created on first use.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening seed file: %w", err)
			}
			defer f.Close()

			records, err := readSeed(f)
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(ctx context.Context, d *deps) error {
				stats, err := seedRecords(ctx, d.app.Victims, records)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d victims, %d new tags, %d tag links\n", stats.Victims, stats.Tags, stats.Links)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to a JSON array of victims (required)")
	return cmd
}

func readSeed(r io.Reader) ([]seedRecord, error) {
	var records []seedRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding seed file: %w", err)
	}
	return records, nil
}

// seedRecords stops at the first failing record; earlier records stay.
func seedRecords(ctx context.Context, svc *victims.Service, records []seedRecord) (seedStats, error) {
	actor := auth.System(rbac.RoleSuperuser)
	var stats seedStats

	existing, err := svc.ListTags(ctx)
	if err != nil {
		return stats, err
	}
	tagIDs := make(map[string]int64, len(existing))
	for _, t := range existing {
		tagIDs[t.Slug] = t.ID
	}

	for i, rec := range records {
		in := rec.VictimInput
		if in.DateOfBirth, err = victims.ParseDate("date_of_birth", rec.DateOfBirth); err != nil {
			return stats, fmt.Errorf("record %d: %w", i, err)
		}
		if in.DateOfDeath, err = victims.ParseDate("date_of_death", rec.DateOfDeath); err != nil {
			return stats, fmt.Errorf("record %d: %w", i, err)
		}
		v, err := svc.CreateVictim(ctx, actor, in)
		if err != nil {
			return stats, fmt.Errorf("record %d (%s): %w", i, rec.FullName, err)
		}
		stats.Victims++

		for _, name := range rec.Tags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			key := slug.Make(name, "tag")
			id, ok := tagIDs[key]
			if !ok {
				t, err := svc.CreateTag(ctx, actor, victims.TagInput{Name: name})
				if err != nil {
					return stats, fmt.Errorf("record %d: tag %q: %w", i, name, err)
				}
				id = t.ID
				tagIDs[t.Slug] = id
				stats.Tags++
			}
			if _, err := svc.AttachTag(ctx, actor, v.ID, id); err != nil {
				return stats, fmt.Errorf("record %d: tag %q: %w", i, name, err)
			}
			stats.Links++
		}
	}
	return stats, nil
}
