// Package cmd implements the command-line interface for the scraper service.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callwise/scraper/cmd/crawl"
	"github.com/callwise/scraper/cmd/pages"
	"github.com/callwise/scraper/cmd/serve"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// debug enables debug logging for all commands.
	debug bool

	rootCmd = &cobra.Command{
		Use:   "scraper",
		Short: "Site crawler backing AI-simulated customer-service calls",
		Long: `Crawls a target website for a call, persists every discovered page
with its crawl state, and serves crawl status to the dashboard.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("scraper version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(serve.Command(&cfgFile, &debug))
	rootCmd.AddCommand(crawl.Command(&cfgFile, &debug))
	rootCmd.AddCommand(pages.Command(&cfgFile, &debug))
}
