package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/logtail"
)

func (c *cli) logsCmd() *cobra.Command {
	var (
		lines int
		raw   bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of the keybot log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.app.LogPath()
			if path == "" {
				_, err := fmt.Fprintln(c.stdout, "Logging to stderr (development mode); no log file to show.")
				return err
			}
			entries, err := logtail.Read(path, lines)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, err := fmt.Fprintln(c.stdout, "No log entries")
				return err
			}
			for _, line := range entries {
				if !raw {
					line = logtail.Format(line)
				}
				if _, err := fmt.Fprintln(c.stdout, line); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to show")
	cmd.Flags().BoolVar(&raw, "raw", false, "print JSON lines as stored")
	return cmd
}
