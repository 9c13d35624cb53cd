package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/keybot/keybot/internal/api"
)

func (c *cli) getCmd() *cobra.Command {
	var (
		query   []string
		headers []string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "GET an API route and print the JSON response",
		Example: `  keybot get /customers
  keybot get /quotes --query status=pending`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []api.RequestOption
			for _, q := range query {
				k, v, ok := strings.Cut(q, "=")
				if !ok || k == "" {
					return fmt.Errorf("invalid query %q (want key=value)", q)
				}
				opts = append(opts, api.WithQueryParam(k, v))
			}
			for _, h := range headers {
				k, v, ok := strings.Cut(h, ":")
				if !ok || strings.TrimSpace(k) == "" {
					return fmt.Errorf("invalid header %q (want Name: value)", h)
				}
				opts = append(opts, api.WithHeader(strings.TrimSpace(k), strings.TrimSpace(v)))
			}
			if timeout > 0 {
				opts = append(opts, api.WithTimeout(timeout))
			}

			var raw json.RawMessage
			if err := c.app.API.Get(cmd.Context(), args[0], &raw, opts...); err != nil {
				return err
			}
			if len(raw) == 0 {
				return nil
			}
			_, err := c.stdout.Write(pretty.Pretty(raw))
			return err
		},
	}
	cmd.Flags().StringArrayVarP(&query, "query", "q", nil, "query parameter key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra request header \"Name: value\" (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "per-attempt timeout (default from config)")
	return cmd
}
