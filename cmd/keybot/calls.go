package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) callsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Show calls and quotes handled by the phone receptionist",
	}

	recent := &cobra.Command{
		Use:   "recent",
		Short: "List recent inbound calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			calls, err := c.app.KeyBot.Calls.Recent(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(calls))
			for _, call := range calls {
				secs := call.Duration
				rows = append(rows, []string{
					strconv.FormatInt(call.ID, 10), call.Timestamp, call.PhoneNumber,
					fmt.Sprintf("%d:%02d", secs/60, secs%60), call.CallType,
				})
			}
			return c.emit(calls, []string{"ID", "Time", "Phone", "Length", "Type"}, rows)
		},
	}

	quotes := &cobra.Command{
		Use:   "quotes",
		Short: "List quotes produced on calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.KeyBot.Calls.Quotes(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, q := range list {
				rows = append(rows, []string{q.QuoteNumber, q.Timestamp, q.CustomerName, q.CustomerPhone, money(q.Amount), q.Status})
			}
			return c.emit(list, []string{"Quote", "Time", "Customer", "Phone", "Amount", "Status"}, rows)
		},
	}

	cmd.AddCommand(recent, quotes)
	return cmd
}
