package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/statscard/cli/cmd/statscard/cli/settings"
)

func newSetupCmd() *cobra.Command {
	var account string
	var cacheDir string
	var birthday string
	var templatesFlag string
	var includeArchive bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Configure statscard",
		Long:  "Interactive setup for the account, cache directory, templates and archive options. Flags skip the prompts for scripted use.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Non-interactive mode if --account is provided.
			if account != "" {
				s := &settings.Settings{
					Account:        account,
					CacheDir:       cacheDir,
					Birthday:       birthday,
					IncludeArchive: includeArchive,
				}
				if templatesFlag != "" {
					s.Templates = splitTemplates(templatesFlag)
				}
				return runSetupWith(cmd.OutOrStdout(), s)
			}
			return runSetupInteractive(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "GitHub login to generate statistics for. Enables non-interactive mode.")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", settings.DefaultCacheDir, "Directory for the contribution ledger and archive snapshot")
	cmd.Flags().StringVar(&birthday, "birthday", "", "Birthday as YYYY-MM-DD for the rendered age line")
	cmd.Flags().StringVar(&templatesFlag, "templates", "", "Comma-separated SVG templates to update")
	cmd.Flags().BoolVar(&includeArchive, "include-archive", false, "Fold the frozen repository archive into the totals")

	return cmd
}

// runSetupInteractive collects settings through prompts and writes the
// settings file.
func runSetupInteractive(w io.Writer) error {
	existing, err := settings.Load()
	if err != nil {
		// Unreadable settings shouldn't block re-running setup.
		existing = &settings.Settings{}
	}

	account := existing.Account
	cacheDir := existing.CacheDir
	if cacheDir == "" {
		cacheDir = settings.DefaultCacheDir
	}
	birthday := existing.Birthday
	templates := strings.Join(existing.Templates, ", ")
	includeArchive := existing.IncludeArchive

	form := NewAccessibleForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub account").
				Description("The login whose contribution statistics are generated").
				Value(&account).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" {
						return fmt.Errorf("account is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Cache directory").
				Description("Holds the contribution ledger and the archive snapshot").
				Value(&cacheDir),
			huh.NewInput().
				Title("Birthday (YYYY-MM-DD, optional)").
				Description("Feeds the age line on the card; leave empty to use the account age").
				Value(&birthday).
				Validate(func(v string) error {
					if v == "" {
						return nil
					}
					if _, err := time.Parse("2006-01-02", v); err != nil {
						return fmt.Errorf("use YYYY-MM-DD")
					}
					return nil
				}),
			huh.NewInput().
				Title("SVG templates (comma-separated)").
				Description("Stat-card files updated in place on each run").
				Value(&templates),
			huh.NewConfirm().
				Title("Include the frozen repository archive in totals?").
				Description("For accounts whose history predates the contribution ledger").
				Value(&includeArchive),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	s := &settings.Settings{
		Account:        strings.TrimSpace(account),
		CacheDir:       strings.TrimSpace(cacheDir),
		Birthday:       strings.TrimSpace(birthday),
		Templates:      splitTemplates(templates),
		IncludeArchive: includeArchive,
	}
	return runSetupWith(w, s)
}

// runSetupWith validates and persists the settings, then prints next steps.
func runSetupWith(w io.Writer, s *settings.Settings) error {
	if s.Account == "" {
		return fmt.Errorf("account is required")
	}
	if s.Birthday != "" {
		if _, err := time.Parse("2006-01-02", s.Birthday); err != nil {
			return fmt.Errorf("parsing birthday %q: use YYYY-MM-DD", s.Birthday)
		}
	}
	if s.CacheDir == "" {
		s.CacheDir = settings.DefaultCacheDir
	}

	if err := settings.Save(".", s); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}

	fmt.Fprintf(w, "✓ Settings saved (%s)\n", settings.SettingsFile)
	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintln(w, "  1. Set STATSCARD_TOKEN to a GitHub access token (repo and read:user scopes).")
	fmt.Fprintln(w, "  2. Run 'statscard generate' to update your stat cards.")
	return nil
}

// splitTemplates parses a comma-separated template list, dropping empty
// entries.
func splitTemplates(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
