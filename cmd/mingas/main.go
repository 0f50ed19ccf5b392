// Package main provides the mingas binary: the API server, its store
// maintenance commands and a terminal client for the API.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"mingas-api/internal/client"
	"mingas-api/internal/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "mingas"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	a := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := a.rootCmd().Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// errReported marks a failure already printed to the user.
var errReported = errors.New("reported")

// app carries what every command shares.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	cfg *config.Config

	configPath string
	addr       string
	dsn        string
	logLevel   string
	apiURL     string
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, now: time.Now}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Community sustainability events (mingas)",
		Long: `mingas schedules community sustainability events and tracks who
registers for them.

"mingas serve" runs the JSON API; the events, participants and members
commands talk to a running API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML, default "+config.DefaultConfigFile+" if present)")
	flags.StringVar(&a.addr, "addr", "", "HTTP listen address")
	flags.StringVar(&a.dsn, "dsn", "", "SQLite DSN")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.apiURL, "api-url", "", "Base URL of the mingas API")

	cmd.AddCommand(
		a.serveCmd(),
		a.migrateCmd(),
		a.seedCmd(),
		a.eventsCmd(),
		a.participantsCmd(),
		a.membersCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// loadConfig resolves file, then environment, then flags.
func (a *app) loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = a.addr
	}
	if flags.Changed("dsn") {
		cfg.Database.DSN = a.dsn
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("api-url") {
		cfg.Client.BaseURL = a.apiURL
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.Client.BaseURL, client.WithTimeout(a.cfg.Client.Timeout))
}
