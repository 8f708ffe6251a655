package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jcatrysse/jira2redmine-issues/internal/config"
	"github.com/jcatrysse/jira2redmine-issues/internal/extract"
	"github.com/jcatrysse/jira2redmine-issues/internal/jiraclient"
	"github.com/jcatrysse/jira2redmine-issues/internal/push"
	"github.com/jcatrysse/jira2redmine-issues/internal/redmineclient"
	"github.com/jcatrysse/jira2redmine-issues/internal/store"
	"github.com/jcatrysse/jira2redmine-issues/internal/transform"
)

func runMigration(cmd *cobra.Command, args []string) error {
	if v, _ := cmd.Flags().GetBool("version"); v {
		printVersion()
		return nil
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	phases := phaseSet(viper.GetString("phases"), viper.GetString("skip"))

	s, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	log.Printf("[run] starting run %s, phases=%v", s.RunID(), phases)

	if phases["jira"] {
		if err := runExtract(cmd.Context(), s, cfg); err != nil {
			return err
		}
	}
	if phases["transform"] {
		if err := runTransform(cmd.Context(), s, cfg); err != nil {
			return err
		}
	}
	if phases["push"] {
		if err := runPush(cmd.Context(), s, cfg); err != nil {
			return err
		}
	}

	return nil
}

func runExtract(ctx context.Context, s *store.Store, cfg *config.Config) error {
	jira := jiraclient.New(cfg.Jira.BaseURL, cfg.Jira.Username, cfg.Jira.APIToken)
	sum, err := extract.Run(ctx, extract.Deps{
		Store:                s,
		Jira:                 jira,
		JQLFilter:            cfg.Migration.Issues.JQL,
		BatchSize:            cfg.Migration.Issues.BatchSize,
		ObjectSchemaFieldIDs: cfg.Migration.Issues.ObjectSchemaFieldIDs,
	})
	if err != nil {
		return fmt.Errorf("extract phase: %w", err)
	}
	log.Printf("[extract] projects=%s failed=%s issues=%s",
		humanize.Comma(int64(sum.ProjectsProcessed)),
		humanize.Comma(int64(sum.ProjectsFailed)),
		humanize.Comma(int64(sum.IssuesUpserted)))
	return nil
}

func runTransform(ctx context.Context, s *store.Store, cfg *config.Config) error {
	deps, err := transform.LoadDeps(ctx, s, cfg.Migration.Issues)
	if err != nil {
		return fmt.Errorf("transform phase: load dependencies: %w", err)
	}
	sum, err := transform.Run(ctx, deps)
	if err != nil {
		return fmt.Errorf("transform phase: %w", err)
	}
	log.Printf("[transform] matched=%s ready=%s manual_review=%s manual_overrides=%s skipped=%s unchanged=%s",
		humanize.Comma(int64(sum.Matched)),
		humanize.Comma(int64(sum.ReadyForCreation)),
		humanize.Comma(int64(sum.ManualReview)),
		humanize.Comma(int64(sum.ManualOverrides)),
		humanize.Comma(int64(sum.Skipped)),
		humanize.Comma(int64(sum.Unchanged)))
	return nil
}

func runPush(ctx context.Context, s *store.Store, cfg *config.Config) error {
	useExtended := viper.GetBool("use-extended-api") || cfg.Redmine.ExtendedAPI.Enabled
	redmineOpts := redmineclient.Options{}
	if useExtended {
		redmineOpts.ExtendedAPIPrefix = cfg.Redmine.ExtendedAPI.Prefix
	}
	redmine := redmineclient.New(cfg.Redmine.BaseURL, cfg.Redmine.APIKey, redmineOpts)

	sum, err := push.Run(ctx, push.Deps{
		Store:       s,
		Redmine:     redmine,
		ConfirmPush: viper.GetBool("confirm-push"),
		DryRun:      viper.GetBool("dry-run"),
		UseExtended: useExtended,
	})
	if err != nil {
		return fmt.Errorf("push phase: %w", err)
	}
	log.Printf("[push] created=%s blocked=%s failed=%s",
		humanize.Comma(int64(sum.Created)),
		humanize.Comma(int64(sum.Blocked)),
		humanize.Comma(int64(sum.Failed)))
	return nil
}
