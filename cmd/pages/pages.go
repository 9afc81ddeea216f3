// Package pages implements the pages listing command, displaying a call's
// discovered pages in a formatted table.
package pages

import (
	"errors"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/callwise/scraper/cmd/common"
	"github.com/callwise/scraper/internal/domain"
)

const urlDisplayLimit = 80

// Command returns the pages command.
func Command(cfgFile *string, debug *bool) *cobra.Command {
	var callID string

	cmd := &cobra.Command{
		Use:   "pages",
		Short: "List the discovered pages for a call",
		RunE: func(cmd *cobra.Command, args []string) error {
			if callID == "" {
				return errors.New("--call is required")
			}

			deps, err := common.Build(*cfgFile, *debug)
			if err != nil {
				return err
			}
			defer deps.Close()

			pages, err := deps.Pages.ListByCall(cmd.Context(), callID)
			if err != nil {
				return err
			}

			renderTable(pages)
			return nil
		},
	}

	cmd.Flags().StringVar(&callID, "call", "", "call id to list pages for")

	return cmd
}

// renderTable formats and displays the pages in a table.
func renderTable(pages []*domain.Page) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"URL", "Status", "Title", "Error", "Discovered"})

	for _, p := range pages {
		t.AppendRow(table.Row{
			truncate(p.URL, urlDisplayLimit),
			p.Status,
			deref(p.Title),
			deref(p.Error),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	t.Render()
}

// deref returns the string behind an optional field, or "".
func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate shortens long values for display.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
