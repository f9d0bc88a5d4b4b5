package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/ui"
	"github.com/law-makers/catalogsync/internal/utils/output"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Convert a scraped record set to CSV or Markdown",
	Long: `Reads a JSON record set and writes it to <path>. The format is taken
from --format, or from the file extension (.csv, .md, .json).`,
	Example: `  # Spreadsheet
  catalogsync export catalog.csv

  # Markdown tables grouped by category
  catalogsync export catalog.md --input out/catalog.json`,
	Args: cobra.ExactArgs(1),
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

		format := output.FormatFromPath(args[0])
		if f, _ := cmd.Flags().GetString("format"); f != "" {
			format = output.Format(f)
		}

		if err := output.Save(records, args[0], format); err != nil {
			return err
		}
		if !a.Config.Quiet {
			fmt.Printf("%s %d records to %s (%s)\n", ui.Success("Exported"), len(records), args[0], format)
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("input", "i", "", "Records file to read (default: the scrape output path)")
	exportCmd.Flags().StringP("format", "f", "", "Output format: json, csv or md")
	rootCmd.AddCommand(exportCmd)
}
