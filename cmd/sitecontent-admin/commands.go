package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/tendant/site-content/pkg/sitecontent"
	"github.com/tendant/site-content/pkg/sitecontent/auth"
	"github.com/tendant/site-content/pkg/sitecontent/migrate"
)

// NewMigrateLanguagesCommand creates the migrate-languages command
func NewMigrateLanguagesCommand() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:   "migrate-languages",
		Short: "Fill empty language slots from the first available language",
		Long: `Copy the first available value (en, then az, then ru; a legacy
single-language value counts as en) into every empty language slot of every
translatable field. Runs over all kinds unless --kind is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			ctx := commandContext(cmd)
			repo, release, err := cfg.BuildRepository(ctx)
			if err != nil {
				return err
			}
			defer release()

			m, err := migrate.New(repo, migrate.WithDryRun(dryRun))
			if err != nil {
				return err
			}

			reports, err := m.CopyMissingLanguages(ctx, toKinds(kinds)...)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			printReports(cmd.OutOrStdout(), reports, dryRun)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "kind to migrate (repeatable, default all)")

	return cmd
}

// NewTranslateBackfillCommand creates the translate-backfill command
func NewTranslateBackfillCommand() *cobra.Command {
	var kind string
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "translate-backfill",
		Short: "Machine-translate records whose languages are copies of one another",
		Long: `Detect the source language of each record of --kind and translate
its text fields into the other languages with the configured providers.
Records are processed oldest first, one at a time, pausing --delay between
them to stay under provider rate limits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			translator := cfg.BuildTranslator()
			if len(translator.Providers()) == 0 {
				return fmt.Errorf("no translation provider configured")
			}

			ctx := commandContext(cmd)
			repo, release, err := cfg.BuildRepository(ctx)
			if err != nil {
				return err
			}
			defer release()

			m, err := migrate.New(repo,
				migrate.WithTranslator(translator),
				migrate.WithDelay(delay),
				migrate.WithDryRun(dryRun),
			)
			if err != nil {
				return err
			}

			report, err := m.TranslateBackfill(ctx, sitecontent.Kind(kind))
			if err != nil {
				return fmt.Errorf("backfill failed: %w", err)
			}
			printReports(cmd.OutOrStdout(), []migrate.Report{report}, dryRun)
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "kind to backfill (required)")
	cmd.Flags().DurationVar(&delay, "delay", migrate.DefaultDelay, "pause between records")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

// NewCreateAdminCommand creates the create-admin command
func NewCreateAdminCommand() *cobra.Command {
	var req auth.RegisterRequest

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		Long:  `Create an admin account directly in the store, bypassing the registration endpoint.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx := commandContext(cmd)
			repo, release, err := cfg.BuildRepository(ctx)
			if err != nil {
				return err
			}
			defer release()

			svc, err := auth.New(repo, cfg.JWTSecret, auth.WithTokenTTL(cfg.JWTExpiry))
			if err != nil {
				return err
			}

			session, err := svc.Register(ctx, req)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Admin created!\n")
			fmt.Fprintf(out, "ID: %s\n", session.Admin.ID)
			fmt.Fprintf(out, "Email: %s\n", session.Admin.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "admin username (required)")
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email (required)")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func toKinds(names []string) []sitecontent.Kind {
	kinds := make([]sitecontent.Kind, 0, len(names))
	for _, n := range names {
		kinds = append(kinds, sitecontent.Kind(n))
	}
	return kinds
}

func printReports(w io.Writer, reports []migrate.Report, dryRun bool) {
	if dryRun {
		fmt.Fprintln(w, "Dry run, nothing was saved")
	}
	fmt.Fprintf(w, "%-12s %8s %8s %10s %8s %8s\n", "KIND", "SCANNED", "UPDATED", "TRANSLATED", "SKIPPED", "FAILED")
	for _, r := range reports {
		fmt.Fprintf(w, "%-12s %8d %8d %10d %8d %8d\n", r.Kind, r.Scanned, r.Updated, r.Translated, r.Skipped, r.Failed)
	}
}
