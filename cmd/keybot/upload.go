package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/api"
)

func (c *cli) uploadCmd() *cobra.Command {
	var quiet bool
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload customer files, call recordings and pricing sheets",
	}
	cmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "do not draw a progress bar")

	customer := &cobra.Command{
		Use:   "customer <id> <file>",
		Short: "Attach a file to a customer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			return c.upload(cmd.Context(), args[1], quiet, func(ctx context.Context, up api.Upload, fn api.ProgressFunc) error {
				return c.app.KeyBot.Customers.UploadFile(ctx, id, up, fn)
			})
		},
	}

	recording := &cobra.Command{
		Use:   "recording <quote-number> <file>",
		Short: "Attach a call recording to a quote",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quote := strings.TrimSpace(args[0])
			return c.upload(cmd.Context(), args[1], quiet, func(ctx context.Context, up api.Upload, fn api.ProgressFunc) error {
				return c.app.KeyBot.Recordings.Upload(ctx, quote, up, fn)
			})
		},
	}

	var history bool
	pricing := &cobra.Command{
		Use:   "pricing <file>",
		Short: "Replace the pricing table with a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.upload(cmd.Context(), args[0], quiet, func(ctx context.Context, up api.Upload, fn api.ProgressFunc) error {
				if !history {
					return c.app.KeyBot.Pricing.Upload(ctx, up, fn)
				}
				entry, err := c.app.KeyBot.Pricing.UploadSheet(ctx, up, fn)
				if err == nil && entry != nil {
					c.app.Logger.Info("pricing sheet recorded", "upload_id", entry.ID, "rows", entry.RowCount, "status", entry.Status)
				}
				return err
			})
		},
	}
	pricing.Flags().BoolVar(&history, "history", false, "record the sheet in the pricing upload history instead of replacing the table")

	cmd.AddCommand(customer, recording, pricing)
	return cmd
}

type uploadFunc func(ctx context.Context, up api.Upload, onProgress api.ProgressFunc) error

// upload sends path through send, drawing a progress bar on stderr unless
// quiet or JSON output was requested.
func (c *cli) upload(ctx context.Context, path string, quiet bool, send uploadFunc) error {
	up, err := api.FileUpload(path)
	if err != nil {
		return err
	}
	if quiet || c.output == "json" {
		err = send(ctx, up, nil)
	} else {
		err = c.app.RunUpload(ctx, c.stderr, up.FileName, up.Size, func(ctx context.Context, onProgress api.ProgressFunc) error {
			return send(ctx, up, onProgress)
		})
	}
	if err != nil {
		return err
	}
	return c.done("Upload", up.FileName+" uploaded")
}
