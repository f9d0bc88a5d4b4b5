package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/app"
	"github.com/law-makers/catalogsync/internal/ui"
	"github.com/law-makers/catalogsync/internal/utils/output"
	"github.com/law-makers/catalogsync/internal/woocommerce"
	"github.com/law-makers/catalogsync/pkg/models"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Replace the target store's catalog with a scraped record set",
	Long: `Reads the records written by scrape and makes the target WooCommerce
store mirror them. Categories are reconciled against the section list saved
beside the records (or the record categories when it is missing): stale ones
are deleted and missing ones are created. Every existing product is then deleted and one product per
record is created.

This is destructive for the target store: anything not in the record set is removed.`,
	Example: `  # Sync the default output file
  catalogsync sync

  # Sync a specific file
  catalogsync sync --input out/catalog.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return fmt.Errorf("application not initialized")
		}

		input, _ := cmd.Flags().GetString("input")
		if input == "" {
			input = a.Config.OutputPath
		}

		records, err := output.LoadJSON(input)
		if err != nil {
			return err
		}
		a.Logger.Info().Str("input", input).Int("records", len(records)).Msg("Loaded records")

		sections, err := output.LoadSections(input)
		if err != nil {
			return err
		}
		if sections == nil {
			a.Logger.Warn().
				Str("path", output.SectionsPath(input)).
				Msg("No section list found, deriving categories from the records")
		}

		return syncRecords(cmd.Context(), a, sections, records)
	},
}

// syncRecords pushes records to the configured store with a progress bar.
// Categories are reconciled against sections plus any record category.
func syncRecords(ctx context.Context, a *app.Application, sections []string, records []*models.ProductRecord) error {
	bar := newProgress(a, len(records), "Creating products")
	defer bar.Finish()

	driver, err := a.Store(woocommerce.DriverOptions{
		OnProduct: func() {
			_ = bar.Add(1)
		},
	})
	if err != nil {
		return err
	}

	summary, err := driver.Sync(ctx, sections, records)
	if summary != nil {
		printSyncSummary(a, summary)
	}
	return err
}

func printSyncSummary(a *app.Application, s *woocommerce.SyncSummary) {
	if a.Config.Quiet {
		return
	}
	title := ui.Success("Sync complete")
	if s.ProductsFailed > 0 {
		title = ui.Error("Sync finished with failures")
	}
	fmt.Printf("\n%s\n", title)
	fmt.Printf("  %s %d deleted, %d created\n", ui.Bold("Categories:"), s.CategoriesDeleted, s.CategoriesCreated)
	fmt.Printf("  %s %d deleted, %d created, %d failed\n", ui.Bold("Products:"), s.ProductsDeleted, s.ProductsCreated, s.ProductsFailed)
	fmt.Printf("  %s %s\n", ui.Bold("Store:"), a.Config.WCSite)
}

func init() {
	syncCmd.Flags().StringP("input", "i", "", "Records file to sync (default: the scrape output path)")
	rootCmd.AddCommand(syncCmd)
}
