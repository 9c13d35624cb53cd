package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/keybot"
)

func (c *cli) quotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "quotes",
		Aliases: []string{"quote"},
		Short:   "List and create quotes",
	}

	var status string
	list := &cobra.Command{
		Use:   "list",
		Short: "List quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			quotes, err := c.app.KeyBot.Quotes.List(cmd.Context())
			if err != nil {
				return err
			}
			if status != "" {
				filtered := quotes[:0:0]
				for _, q := range quotes {
					if strings.EqualFold(q.Status, status) {
						filtered = append(filtered, q)
					}
				}
				quotes = filtered
			}
			rows := make([][]string, 0, len(quotes))
			for _, q := range quotes {
				vehicle := strings.TrimSpace(strings.Join([]string{q.VehicleYear, q.VehicleMake, q.VehicleModel}, " "))
				rows = append(rows, []string{
					q.QuoteNumber, q.CustomerName, vehicle, q.ServiceType, money(q.Price), q.Status,
					shortTime(q.CreatedAt, q.ParsedCreatedAt()),
				})
			}
			return c.emit(quotes, []string{"Quote", "Customer", "Vehicle", "Service", "Price", "Status", "Created"}, rows)
		},
	}
	list.Flags().StringVar(&status, "status", "", "only quotes with this status")

	var in keybot.QuoteInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := c.app.KeyBot.Quotes.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			if c.output == "json" && q != nil {
				return c.printJSON(q)
			}
			msg := "quote created"
			if q != nil && q.QuoteNumber != "" {
				msg = "quote " + q.QuoteNumber + " created"
			}
			return c.done("Quote", msg)
		},
	}
	f := create.Flags()
	f.StringVar(&in.CustomerName, "customer", "", "customer name")
	f.StringVar(&in.Phone, "phone", "", "customer phone number")
	f.IntVar(&in.Year, "year", 0, "vehicle year")
	f.StringVar(&in.Make, "make", "", "vehicle make")
	f.StringVar(&in.Model, "model", "", "vehicle model")
	f.StringVar(&in.KeyType, "key-type", "", "key type")
	f.StringVar(&in.ServiceType, "service", "", "service type")
	f.StringVar(&in.Address, "address", "", "service address")

	cmd.AddCommand(list, create)
	return cmd
}
