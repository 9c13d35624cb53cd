package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keybot/keybot/internal/api"
	"github.com/keybot/keybot/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, c := newRootCmd(os.Stdout, os.Stderr)
	defer c.close()
	if err := root.ExecuteContext(ctx); err != nil {
		// API failures were already shown as a toast.
		if ae, ok := api.AsError(err); !ok || ae.Kind == api.KindCanceled {
			fmt.Fprintf(os.Stderr, "keybot: %v\n", err)
		}
		return 1
	}
	return 0
}

// cli carries state shared by every subcommand.
type cli struct {
	opts   app.Options
	output string
	stdout io.Writer
	stderr io.Writer
	app    *app.App
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{stdout: stdout, stderr: stderr}
	c.opts.Stderr = stderr

	root := &cobra.Command{
		Use:           "keybot",
		Short:         "KeyBot dashboard client",
		Long:          "Command line client for the KeyBot locksmith dashboard API.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}
			if c.output != "text" && c.output != "json" {
				return fmt.Errorf("invalid output format %q (text, json)", c.output)
			}
			a, err := app.New(c.opts)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.opts.ConfigPath, "config", "", "config file (default ~/.config/keybot/config.toml)")
	flags.StringVar(&c.opts.LogLevel, "log-level", "", "override log level (debug, info, warn, error)")
	flags.StringVarP(&c.output, "output", "o", "text", "output format (text, json)")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.getCmd(),
		c.customersCmd(),
		c.quotesCmd(),
		c.appointmentsCmd(),
		c.settingsCmd(),
		c.recordingCmd(),
		c.pricingCmd(),
		c.callsCmd(),
		c.uploadCmd(),
		c.dashboardCmd(),
		c.logsCmd(),
	)
	return root, c
}

// skipsApp reports whether cmd runs without loading config, as help and
// shell completion do.
func skipsApp(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		switch cmd.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return true
		}
	}
	return false
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		fmt.Fprintf(c.stderr, "keybot: close log: %v\n", err)
	}
	c.app = nil
}
