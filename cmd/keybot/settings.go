package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/keybot/keybot/internal/keybot"
)

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show and save business settings",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.app.KeyBot.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			return c.emit(s, []string{"Setting", "Value"}, settingsRows(s))
		},
	}

	var file string
	save := &cobra.Command{
		Use:   "save",
		Short: "Replace settings with a JSON document",
		Example: `  keybot settings get -o json > settings.json
  keybot settings save --file settings.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := readSettings(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Settings.Save(cmd.Context(), s); err != nil {
				return err
			}
			return c.done("Settings", "settings saved")
		},
	}
	save.Flags().StringVarP(&file, "file", "f", "-", "settings JSON file, - for stdin")

	set := &cobra.Command{
		Use:   "set <path=value>...",
		Short: "Change individual settings",
		Long: `Change individual settings by JSON path. String settings take the value
as written; other settings take it as JSON (numbers, booleans, arrays).`,
		Example: `  keybot settings set calendarSettings.working_hours.start=08:00
  keybot settings set pricingSettings.emergency_fee=75 twilioSettings.enabled=true`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := c.app.KeyBot.Settings.Get(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := patchSettings(current, args)
			if err != nil {
				return err
			}
			if err := c.app.KeyBot.Settings.Save(cmd.Context(), updated); err != nil {
				return err
			}
			return c.done("Settings", fmt.Sprintf("%d setting(s) updated", len(args)))
		},
	}

	cmd.AddCommand(get, save, set)
	return cmd
}

// patchSettings applies path=value assignments to s through its JSON form.
func patchSettings(s keybot.Settings, assignments []string) (keybot.Settings, error) {
	doc, err := json.Marshal(s)
	if err != nil {
		return keybot.Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	for _, a := range assignments {
		path, value, ok := strings.Cut(a, "=")
		path = strings.TrimSpace(path)
		if !ok || path == "" {
			return keybot.Settings{}, fmt.Errorf("invalid assignment %q (want path=value)", a)
		}
		cur := gjson.GetBytes(doc, path)
		if !cur.Exists() {
			return keybot.Settings{}, fmt.Errorf("unknown setting %q", path)
		}
		if cur.Type != gjson.String && gjson.Valid(value) {
			doc, err = sjson.SetRawBytes(doc, path, []byte(value))
		} else {
			doc, err = sjson.SetBytes(doc, path, value)
		}
		if err != nil {
			return keybot.Settings{}, fmt.Errorf("set %s: %w", path, err)
		}
	}
	var out keybot.Settings
	if err := json.Unmarshal(doc, &out); err != nil {
		return keybot.Settings{}, fmt.Errorf("apply settings: %w", err)
	}
	return out, nil
}

func readSettings(stdin io.Reader, path string) (keybot.Settings, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return keybot.Settings{}, fmt.Errorf("open settings: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}
	s := keybot.DefaultSettings()
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return keybot.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// settingsRows flattens the parts of Settings worth reading at a glance.
// Secrets are not printed.
func settingsRows(s keybot.Settings) [][]string {
	techs := make([]string, 0, len(s.Calendar.Technicians))
	for _, t := range s.Calendar.Technicians {
		techs = append(techs, t.Name)
	}
	return [][]string{
		{"Twilio enabled", yesNo(s.Twilio.Enabled)},
		{"Twilio number", s.Twilio.PhoneNumber},
		{"Email enabled", yesNo(s.Email.Enabled)},
		{"Sender email", s.Email.SenderEmail},
		{"SMTP server", s.Email.SMTPServer + ":" + strconv.Itoa(s.Email.SMTPPort)},
		{"Working hours", s.Calendar.WorkingHours.Start + "-" + s.Calendar.WorkingHours.End},
		{"Default duration", strconv.Itoa(s.Calendar.DefaultAppointmentDuration) + "m"},
		{"Technicians", strings.Join(techs, ", ")},
		{"Recording", yesNo(s.Recording.RecordingEnabled) + " (" + s.Recording.StorageProvider + ")"},
		{"Markup", strconv.FormatFloat(s.Pricing.DefaultMarkupPercentage, 'f', -1, 64) + "%"},
		{"Minimum price", money(s.Pricing.MinimumPrice)},
		{"Emergency fee", money(s.Pricing.EmergencyFee)},
		{"After-hours fee", money(s.Pricing.AfterHoursFee)},
		{"Key types", strings.Join(s.Custom.KeyTypes, ", ")},
		{"Service types", strings.Join(s.Custom.ServiceTypes, ", ")},
	}
}
