// Package crawl implements the one-shot crawl command.
package crawl

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/callwise/scraper/cmd/common"
	"github.com/callwise/scraper/internal/domain"
)

// Command returns the crawl command. It seeds a call with a start URL and
// runs the driver to a terminal outcome in the foreground.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var (
		callID   string
		startURL string
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl a site for a call and wait for completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			if callID == "" || startURL == "" {
				return errors.New("--call and --url are required")
			}

			deps, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			ctx := cmd.Context()

			if err := deps.Calls.UpdateStatus(ctx, callID, domain.CallStatusScraping); err != nil {
				return err
			}

			if _, err := deps.Pages.Enqueue(ctx, callID, startURL, nil); err != nil {
				return fmt.Errorf("failed to enqueue seed page: %w", err)
			}

			outcome, err := deps.Driver.Run(ctx, callID)
			if err != nil {
				return err
			}

			counts, err := deps.Pages.CountByStatus(ctx, callID)
			if err != nil {
				return err
			}

			fmt.Printf("crawl finished (%s): %d completed, %d failed, %d queued\n",
				outcome.Reason, counts.Completed, counts.Failed, counts.Queued)
			return nil
		},
	}

	cmd.Flags().StringVar(&callID, "call", "", "call id the crawl belongs to")
	cmd.Flags().StringVar(&startURL, "url", "", "absolute URL to start crawling from")

	return cmd
}
