package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/statscard/cli/cmd/statscard/cli/badge"
	"github.com/statscard/cli/cmd/statscard/cli/github"
	"github.com/statscard/cli/cmd/statscard/cli/ledger"
	"github.com/statscard/cli/cmd/statscard/cli/logging"
	"github.com/statscard/cli/cmd/statscard/cli/settings"
	"github.com/statscard/cli/cmd/statscard/cli/timing"
)

type generateOptions struct {
	rebuild bool
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Fetch contribution statistics and update the stat cards",
		Long: "Fetches the configured account's contribution statistics from the GitHub\n" +
			"GraphQL API, reconciles the on-disk ledger so unchanged repositories are\n" +
			"served from cache, and paints the results into the SVG templates.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addGenerateFlags(cmd.Flags(), opts)
	return cmd
}

func addGenerateFlags(fs *pflag.FlagSet, opts *generateOptions) {
	fs.BoolVar(&opts.rebuild, "rebuild", false, "discard the ledger and re-walk every repository")
}

func runGenerate(ctx context.Context, stdout io.Writer, opts *generateOptions) error {
	s, err := settings.Load()
	if err != nil {
		return err
	}
	if err := s.Validate(); err != nil {
		return err
	}

	if err := logging.Init(s.CacheDir, s.Account, s.LogLevel); err != nil {
		return err
	}
	defer logging.Close()

	client := github.NewClient(s.Token)
	if s.APIURL != "" {
		client.Endpoint = s.APIURL
	}

	var report timing.Report

	var identity github.Identity
	elapsed, err := timing.Measure(func() error {
		var err error
		identity, err = client.UserIdentity(ctx, s.Account)
		return err
	})
	if err != nil {
		return fmt.Errorf("resolving account: %w", err)
	}
	report.Add("account data", elapsed)

	// Age line: configured birthday, or the account's own age.
	birthday, haveBirthday, err := s.BirthdayTime()
	if err != nil {
		return err
	}
	if !haveBirthday {
		birthday = identity.CreatedAt
	}
	age := badge.FormatAge(birthday, time.Now())

	var repos []ledger.Repository
	elapsed, err = timing.Measure(func() error {
		var err error
		repos, err = client.ListRepositories(ctx, s.Account, github.AllAffiliations)
		return err
	})
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	report.Add("repository listing", elapsed)

	store := ledger.NewFileStore(s.CacheDir, s.Account)
	reconciler := &ledger.Reconciler{
		Store:        store,
		Walker:       &ledger.Walker{Source: client, AuthorID: identity.ID},
		HeaderSize:   ledger.DefaultHeaderSize,
		ForceRebuild: opts.rebuild,
	}

	var totals ledger.Totals
	elapsed, err = timing.Measure(func() error {
		var err error
		totals, err = reconciler.Reconcile(ctx, repos)
		return err
	})
	if err != nil {
		// Partial progress was saved and announced by the reconciler.
		return fmt.Errorf("reconciling ledger: %w", err)
	}
	if totals.FullyCached {
		report.Add("contribution ledger (cached)", elapsed)
	} else {
		report.Add("contribution ledger (walked)", elapsed)
	}

	var stars int
	elapsed, err = timing.Measure(func() error {
		var err error
		stars, err = client.StarCount(ctx, s.Account, github.OwnerAffiliation)
		return err
	})
	if err != nil {
		return fmt.Errorf("counting stars: %w", err)
	}
	report.Add("star count", elapsed)

	var repoCount int
	elapsed, err = timing.Measure(func() error {
		var err error
		repoCount, err = client.RepositoryCount(ctx, s.Account, github.OwnerAffiliation)
		return err
	})
	if err != nil {
		return fmt.Errorf("counting repositories: %w", err)
	}
	report.Add("repository count", elapsed)

	var contribCount int
	elapsed, err = timing.Measure(func() error {
		var err error
		contribCount, err = client.RepositoryCount(ctx, s.Account, github.AllAffiliations)
		return err
	})
	if err != nil {
		return fmt.Errorf("counting contributed repositories: %w", err)
	}
	report.Add("contributed repositories", elapsed)

	var followers int
	elapsed, err = timing.Measure(func() error {
		var err error
		followers, err = client.FollowerCount(ctx, s.Account)
		return err
	})
	if err != nil {
		return fmt.Errorf("counting followers: %w", err)
	}
	report.Add("follower count", elapsed)

	stats := badge.Stats{
		Age:          age,
		Commits:      totals.Commits,
		Stars:        stars,
		Repos:        repoCount,
		ContribRepos: contribCount,
		Followers:    followers,
		Additions:    totals.Additions,
		Deletions:    totals.Deletions,
		Net:          totals.Net,
	}
	if s.IncludeArchive {
		stats = applyArchive(stats, ledger.ReadArchive(s.CacheDir))
	}

	for _, template := range s.Templates {
		if err := badge.UpdateCard(template, stats); err != nil {
			return fmt.Errorf("updating stat card: %w", err)
		}
	}

	renderRunSummary(stdout, &report, client)
	return nil
}

// applyArchive folds the frozen pre-ledger snapshot into the card
// values. Stars, repos and followers are live-only counts; the archive
// contributes lines, commits and contributed-repo count.
func applyArchive(stats badge.Stats, archive ledger.ArchiveTotals) badge.Stats {
	stats.Additions += archive.Additions
	stats.Deletions += archive.Deletions
	stats.Net += archive.Net
	stats.Commits += archive.Commits
	stats.ContribRepos += archive.Repositories
	return stats
}

func renderRunSummary(w io.Writer, report *timing.Report, client *github.Client) {
	bold := color.New(color.Bold)
	bold.Fprintln(w, "Calculation times:")
	report.Render(w)

	fmt.Fprintf(w, "\nTotal GitHub GraphQL API calls: %d\n", client.TotalQueries())
	for _, qc := range client.QueryCounts() {
		fmt.Fprintf(w, "   %-24s %6d\n", qc.Name, qc.Count)
	}
}
