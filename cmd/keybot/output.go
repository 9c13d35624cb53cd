package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/keybot/keybot/internal/api"
	"github.com/keybot/keybot/internal/ui"
)

// emit prints v as JSON, or as a table in text mode.
func (c *cli) emit(v any, headers []string, rows [][]string) error {
	if c.output == "json" {
		return c.printJSON(v)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(c.stdout, "No results")
		return err
	}
	_, err := fmt.Fprintln(c.stdout, ui.RenderTable(c.app.Theme, headers, rows))
	return err
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// done reports a successful mutation the same way failures are reported.
func (c *cli) done(title, msg string) error {
	if c.output == "json" {
		return c.printJSON(map[string]any{"success": true, "message": msg})
	}
	ui.NewToastNotifier(c.stdout, c.app.Theme).Notify(api.Toast{Level: api.LevelSuccess, Title: title, Message: msg})
	return nil
}

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	return id, nil
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// shortTime renders API timestamps as local "2006-01-02 15:04", falling back
// to the raw value.
func shortTime(raw string, parsed time.Time) string {
	if parsed.IsZero() {
		return raw
	}
	return parsed.Local().Format("2006-01-02 15:04")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
