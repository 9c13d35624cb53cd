package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/ui"
)

const defaultWatchInterval = 5 * time.Second

func (c *cli) dashboardCmd() *cobra.Command {
	var (
		watch    bool
		interval time.Duration
		width    int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the business overview",
		Long: `Show customers, quotes, upcoming appointments and recent calls.

With --watch the overview opens full screen and refreshes until you press q.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				if interval <= 0 {
					return fmt.Errorf("interval must be positive")
				}
				return c.app.Watch(cmd.Context(), interval)
			}
			summary, err := c.app.KeyBot.Dashboard.Summary(cmd.Context())
			if err != nil {
				return err
			}
			if c.output == "json" {
				return c.printJSON(summary)
			}
			_, err = fmt.Fprintln(c.stdout, ui.RenderSummary(summary, c.app.Theme, width, time.Now()))
			return err
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep refreshing in a full-screen view")
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "refresh interval for --watch")
	cmd.Flags().IntVar(&width, "width", 100, "render width")
	return cmd
}
