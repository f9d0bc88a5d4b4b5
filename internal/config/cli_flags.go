package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.Bool("json", false, "Output logs in JSON format only")
	pf.String("env-file", DefaultEnvFile, "Path to a .env file with credentials and settings")
	pf.String("base-url", "", "Root URL of the source shop")
	pf.StringSlice("proxy", nil, "HTTP/SOCKS5 proxy, repeatable for rotation (e.g., http://localhost:8080)")
	pf.String("timeout", "", "Per-request timeout (e.g., 30s)")
	pf.String("user-agent", "", "Custom user agent string")
	pf.StringArrayP("header", "H", nil, "Extra request header 'Key: Value', repeatable")
	pf.Float64("rate-limit", 0, "Max requests per second to the shop (0 disables)")
	pf.Int("retries", 0, "Attempts per request, including the first")
	pf.String("metrics-file", "", "Write Prometheus metrics to this textfile after the run")
}

// RegisterScrapeFlags registers flags of commands that scrape the shop
func RegisterScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("workers", "w", 0, "Number of product pages fetched in parallel")
	cmd.Flags().StringP("output", "o", "", "Path of the JSON record file")
	cmd.Flags().StringArray("section-rule", nil, "Section classification rule 'marker=kind', repeatable")
	cmd.Flags().Int("max-ajax-pages", 0, "Safety cap for infinite-scroll sections")
}
