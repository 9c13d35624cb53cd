package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *cli) pricingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pricing",
		Short: "Show the pricing table and its upload history",
	}

	items := &cobra.Command{
		Use:   "items",
		Short: "Show the current pricing table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.app.KeyBot.Pricing.Items(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data.Items))
			for _, it := range data.Items {
				rows = append(rows, []string{it.Make, it.Model, it.Year, it.KeyType, it.Service, money(it.Price)})
			}
			if err := c.emit(data, []string{"Make", "Model", "Year", "Key", "Service", "Price"}, rows); err != nil {
				return err
			}
			if c.output == "text" && len(rows) > 0 {
				_, err = fmt.Fprintf(c.stdout, "%d items  last upload %s\n", data.Total, data.LastUpload)
			}
			return err
		},
	}

	uploads := &cobra.Command{
		Use:   "uploads",
		Short: "Show pricing upload history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.KeyBot.Pricing.Uploads(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, u := range list {
				rows = append(rows, []string{
					strconv.FormatInt(u.ID, 10), u.Filename, shortTime(u.UploadedAt, u.ParsedUploadedAt()),
					u.UploadedBy, strconv.Itoa(u.RowCount), u.Status,
				})
			}
			return c.emit(list, []string{"ID", "File", "Uploaded", "By", "Rows", "Status"}, rows)
		},
	}

	cmd.AddCommand(items, uploads)
	return cmd
}
