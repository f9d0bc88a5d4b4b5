// internal/cli/root.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/catalogsync/internal/app"
	"github.com/law-makers/catalogsync/internal/config"
	"github.com/law-makers/catalogsync/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "catalogsync",
	Short: "Mirror a WooCommerce shop's catalog into your own store",
	Long: `catalogsync logs into the source shop, walks every catalog section,
extracts each product page into a JSON record set, and replaces the products
and categories of a target WooCommerce store with it.

Credentials and store keys are read from a .env file or the environment:
SITE_LOGIN, SITE_PASSWORD, CONSUMER_KEY, CONSUMER_SECRET, WC_SITE.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with ctx, which is cancelled on interrupt.
// This is called by main.main().
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() != nil {
			log.Warn().Msg("Interrupt received, shut down before completion")
		}
		fmt.Fprintln(os.Stderr, ui.Error("Error: "+err.Error()))
		os.Exit(1)
	}
}

func init() {
	// Initialize the application lazily so -h/--help never touches config or network
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if GetApp(cmd) != nil {
			return nil
		}

		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}

		a, err := app.New(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		SetApp(cmd, a)
		return nil
	}

	// Ensure app is closed after command runs
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		a := GetApp(cmd)
		if a == nil {
			return nil
		}
		return a.Close(cmd.Context())
	}
}

func init() {
	// Register centralized flags
	config.RegisterFlags(rootCmd)

	// Customize help and version flag descriptions
	rootCmd.Flags().BoolP("help", "h", false, "Help for catalogsync")
	rootCmd.Flags().Bool("version", false, "Version for catalogsync")
}

func init() {
	// Disable the default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(renderHelp)
	rootCmd.SetUsageFunc(renderUsage)
}
