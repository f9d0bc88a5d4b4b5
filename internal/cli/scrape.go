package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/app"
	"github.com/law-makers/catalogsync/internal/config"
	"github.com/law-makers/catalogsync/internal/engine/catalog"
	"github.com/law-makers/catalogsync/internal/runctx"
	"github.com/law-makers/catalogsync/internal/ui"
	"github.com/law-makers/catalogsync/internal/utils/output"
	"github.com/law-makers/catalogsync/pkg/models"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extract the source shop's catalog into a JSON file",
	Long: `Logs into the source shop, discovers every catalog section from the
navigation menu, enumerates product URLs with the pagination scheme each
section uses, and extracts every product page concurrently.

Products whose availability label is unknown or whose page misses a required
field are skipped and counted in the summary. The records are written to the
--output file as a JSON array.`,
	Example: `  # Scrape with credentials from .env
  catalogsync scrape

  # Write somewhere else with more workers
  catalogsync scrape -o out/catalog.json -w 20

  # Treat an extra menu entry as a bestsellers section
  catalogsync scrape --section-rule "top sellers=bestsellers"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
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
		return nil
	},
}

// saveResult writes the records and, beside them, the section slugs sync
// reconciles categories against.
func saveResult(a *app.Application, result *catalog.Result) error {
	if err := output.SaveJSON(result.Records, a.Config.OutputPath); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	if err := output.SaveSections(models.SectionSlugs(result.Sections), a.Config.OutputPath); err != nil {
		return fmt.Errorf("failed to save sections: %w", err)
	}
	return nil
}

// scrape runs one extraction with a progress bar
func scrape(ctx context.Context, cmd *cobra.Command, a *app.Application) (*catalog.Result, error) {
	creds, err := a.SiteCredentials()
	anonymous, _ := cmd.Flags().GetBool("anonymous")
	if err != nil && !anonymous {
		return nil, err
	}

	bar := newProgress(a, -1, "Extracting products")
	defer bar.Finish()

	c, err := a.Catalog(catalog.Options{
		Credentials: creds,
		SkipLogin:   anonymous,
		OnURLs: func(total int) {
			bar.ChangeMax(total)
		},
		OnProduct: func() {
			_ = bar.Add(1)
		},
	})
	if err != nil {
		return nil, err
	}

	return c.Run(ctx)
}

func printScrapeSummary(a *app.Application, result *catalog.Result) {
	if a.Config.Quiet {
		return
	}
	s := result.Summary
	fmt.Printf("\n%s\n", ui.Success("Scrape complete"))
	fmt.Printf("  %s %d\n", ui.Bold("Sections:"), s.Sections)
	fmt.Printf("  %s %d\n", ui.Bold("Product URLs:"), s.ProductURLs)
	fmt.Printf("  %s %d\n", ui.Bold("Parsed:"), s.Parsed)
	fmt.Printf("  %s %d", ui.Bold("Skipped:"), s.SkippedTotal())
	if n := s.SkippedTotal(); n > 0 {
		fmt.Printf(" %s", ui.Info(fmt.Sprintf("(%s)", skipBreakdown(s.Skipped))))
	}
	fmt.Println()
	fmt.Printf("  %s %s\n", ui.Bold("Output:"), a.Config.OutputPath)
}

func init() {
	config.RegisterScrapeFlags(scrapeCmd)
	scrapeCmd.Flags().Bool("anonymous", false, "Scrape without logging in")
	rootCmd.AddCommand(scrapeCmd)
}

// skipBreakdown renders skip counts in a stable order
func skipBreakdown(skipped map[models.SkipReason]int) string {
	reasons := []models.SkipReason{
		models.SkipUnrecognizedAvailability,
		models.SkipPageFormat,
		models.SkipOther,
	}
	parts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		if n := skipped[r]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", r, n))
		}
	}
	return strings.Join(parts, ", ")
}
