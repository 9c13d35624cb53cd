package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/keybot"
)

func (c *cli) customersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "customers",
		Aliases: []string{"customer"},
		Short:   "List and manage customers",
	}
	cmd.AddCommand(
		c.customersListCmd(),
		c.customersShowCmd(),
		c.customersAppointmentsCmd(),
		c.customersAddressesCmd(),
		c.customersNotesCmd(),
		c.customersFilesCmd(),
	)
	return cmd
}

func (c *cli) customersListCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			customers, err := c.app.KeyBot.Customers.List(cmd.Context())
			if err != nil {
				return err
			}
			customers = filterCustomers(customers, search)
			rows := make([][]string, 0, len(customers))
			for _, cu := range customers {
				rows = append(rows, []string{
					strconv.FormatInt(cu.ID, 10), cu.Name, cu.Phone, cu.Email, cu.Status, money(cu.TotalSpent),
				})
			}
			return c.emit(customers, []string{"ID", "Name", "Phone", "Email", "Status", "Spent"}, rows)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only customers whose name, phone or email contains this text")
	return cmd
}

func filterCustomers(customers []keybot.Customer, search string) []keybot.Customer {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return customers
	}
	out := customers[:0:0]
	for _, cu := range customers {
		if strings.Contains(strings.ToLower(cu.Name), search) ||
			strings.Contains(strings.ToLower(cu.Email), search) ||
			strings.Contains(cu.Phone, search) {
			out = append(out, cu)
		}
	}
	return out
}

func (c *cli) customersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			cu, err := c.app.KeyBot.Customers.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := [][]string{
				{"ID", strconv.FormatInt(cu.ID, 10)},
				{"Name", cu.Name},
				{"Phone", cu.Phone},
				{"Email", cu.Email},
				{"Address", cu.Address},
				{"Status", cu.Status},
				{"Created", cu.CreatedAt},
				{"Total spent", money(cu.TotalSpent)},
				{"Last service", cu.LastService},
			}
			return c.emit(cu, []string{"Field", "Value"}, rows)
		},
	}
}

func (c *cli) customersAppointmentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "appointments <id>",
		Short: "List a customer's appointments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			appts, err := c.app.KeyBot.Customers.Appointments(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(appts))
			for _, a := range appts {
				rows = append(rows, []string{
					strconv.FormatInt(a.ID, 10), a.Date, a.Time, a.ServiceType, a.Technician, a.Status,
				})
			}
			return c.emit(appts, []string{"ID", "Date", "Time", "Service", "Technician", "Status"}, rows)
		},
	}
}

func (c *cli) customersAddressesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addresses <id>",
		Short: "List and manage a customer's addresses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			addrs, err := c.app.KeyBot.Customers.Addresses(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(addrs))
			for _, a := range addrs {
				rows = append(rows, []string{
					strconv.FormatInt(a.ID, 10), a.Address, a.City, a.State, a.Zipcode, yesNo(a.IsPrimary),
				})
			}
			return c.emit(addrs, []string{"ID", "Address", "City", "State", "Zip", "Primary"}, rows)
		},
	}

	var addr keybot.Address
	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.AddAddress(cmd.Context(), id, addr); err != nil {
				return err
			}
			return c.done("Address", "address added")
		},
	}
	add.Flags().StringVar(&addr.Address, "street", "", "street address")
	add.Flags().StringVar(&addr.City, "city", "", "city")
	add.Flags().StringVar(&addr.State, "state", "", "state")
	add.Flags().StringVar(&addr.Zipcode, "zip", "", "zip code")
	add.Flags().BoolVar(&addr.IsPrimary, "primary", false, "make this the primary address")
	_ = add.MarkFlagRequired("street")

	remove := &cobra.Command{
		Use:   "delete <id> <address-id>",
		Short: "Delete an address",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, addressID, err := parseIDPair(args, "address id")
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.DeleteAddress(cmd.Context(), id, addressID); err != nil {
				return err
			}
			return c.done("Address", "address deleted")
		},
	}

	primary := &cobra.Command{
		Use:   "primary <id> <address-id>",
		Short: "Make an address the primary one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, addressID, err := parseIDPair(args, "address id")
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.SetPrimaryAddress(cmd.Context(), id, addressID); err != nil {
				return err
			}
			return c.done("Address", "primary address updated")
		},
	}

	cmd.AddCommand(add, remove, primary)
	return cmd
}

func (c *cli) customersNotesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes <id>",
		Short: "List and manage a customer's notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			notes, err := c.app.KeyBot.Customers.Notes(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(notes))
			for _, n := range notes {
				rows = append(rows, []string{strconv.FormatInt(n.ID, 10), n.CreatedAt, n.CreatedBy, n.Content})
			}
			return c.emit(notes, []string{"ID", "Created", "By", "Note"}, rows)
		},
	}

	add := &cobra.Command{
		Use:   "add <id> <text>...",
		Short: "Add a note",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.AddNote(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			return c.done("Note", "note added")
		},
	}

	edit := &cobra.Command{
		Use:   "edit <id> <note-id> <text>...",
		Short: "Replace a note's text",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, noteID, err := parseIDPair(args, "note id")
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.UpdateNote(cmd.Context(), id, noteID, strings.Join(args[2:], " ")); err != nil {
				return err
			}
			return c.done("Note", "note updated")
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id> <note-id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, noteID, err := parseIDPair(args, "note id")
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.DeleteNote(cmd.Context(), id, noteID); err != nil {
				return err
			}
			return c.done("Note", "note deleted")
		},
	}

	cmd.AddCommand(add, edit, remove)
	return cmd
}

func (c *cli) customersFilesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files <id>",
		Short: "List and manage a customer's files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("customer id", args[0])
			if err != nil {
				return err
			}
			files, err := c.app.KeyBot.Customers.Files(cmd.Context(), id)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(files))
			for _, f := range files {
				rows = append(rows, []string{
					strconv.FormatInt(f.ID, 10), f.Filename, f.FileType, strconv.FormatInt(f.FileSize, 10), f.UploadedAt,
				})
			}
			return c.emit(files, []string{"ID", "File", "Type", "Bytes", "Uploaded"}, rows)
		},
	}

	remove := &cobra.Command{
		Use:   "delete <id> <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, fileID, err := parseIDPair(args, "file id")
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Customers.DeleteFile(cmd.Context(), id, fileID); err != nil {
				return err
			}
			return c.done("File", "file deleted")
		},
	}

	cmd.AddCommand(remove)
	return cmd
}

func parseIDPair(args []string, second string) (int64, int64, error) {
	id, err := parseID("customer id", args[0])
	if err != nil {
		return 0, 0, err
	}
	other, err := parseID(second, args[1])
	if err != nil {
		return 0, 0, err
	}
	return id, other, nil
}
