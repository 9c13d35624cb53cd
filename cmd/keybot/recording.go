package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) recordingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recording",
		Short: "Look up call recordings",
	}
	get := &cobra.Command{
		Use:   "get <quote-number>",
		Short: "Show the recording attached to a quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := c.app.KeyBot.Recordings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Quote", rec.QuoteNumber},
				{"Customer", rec.CustomerName},
				{"Created", rec.CreatedAt},
				{"URL", rec.URL},
			}
			return c.emit(rec, []string{"Field", "Value"}, rows)
		},
	}
	cmd.AddCommand(get)
	return cmd
}
