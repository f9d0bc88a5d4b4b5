package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/config"
	"github.com/law-makers/catalogsync/internal/runctx"
	"github.com/law-makers/catalogsync/internal/woocommerce"
	"github.com/law-makers/catalogsync/pkg/models"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape the source shop, then sync the result to the store",
	Long: `Runs scrape followed by sync. The records are saved to --output before
the store is touched, so a failed sync can be retried with "catalogsync sync".

The store keys are checked against the API before scraping starts.`,
	Example: `  # Full mirror with settings from .env
  catalogsync run

  # Scrape only, keep the store untouched
  catalogsync run --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if !dryRun {
			driver, err := a.Store(woocommerce.DriverOptions{})
			if err != nil {
				return err
			}
			if err := driver.Ping(cmd.Context()); err != nil {
				return fmt.Errorf("store check failed: %w", err)
			}
		}

		ctx := runctx.WithRun(cmd.Context())
		result, err := scrape(ctx, cmd, a)
		if err != nil {
			return err
		}
		if err := saveResult(a, result); err != nil {
			return err
		}
		printScrapeSummary(a, result)

		if dryRun {
			a.Logger.Info().Msg("Dry run, store left untouched")
			return nil
		}
		return syncRecords(ctx, a, models.SectionSlugs(result.Sections), result.Records)
	},
}

func init() {
	config.RegisterScrapeFlags(runCmd)
	runCmd.Flags().Bool("anonymous", false, "Scrape without logging in")
	runCmd.Flags().Bool("dry-run", false, "Scrape and save, but do not sync")
	rootCmd.AddCommand(runCmd)
}
