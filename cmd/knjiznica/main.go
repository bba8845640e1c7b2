// Command knjiznica runs the library web application.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/knjiznica/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. The configuration is loaded from the
// environment first and then overridden by any flag given explicitly.
func newRootCmd() *cobra.Command {
	cfg := &config.Config{}
	var closeLog func()

	root := &cobra.Command{
		Use:           "knjiznica",
		Short:         "Library catalog, lending and reporting",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			applyFlags(cmd, loaded, cfg)
			*cfg = *loaded

			closeLog, err = setupLogger(cfg.LogPath)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if closeLog != nil {
				closeLog()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.DBPath, "db", "d", "", "SQLite database path (default knjiznica.sqlite3)")
	pf.StringVarP(&cfg.LogPath, "log", "l", "", "log file path (default: stdout/stderr only)")
	addServeFlags(root, cfg)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server, creating the database if it is missing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), cfg)
		},
	}
	addServeFlags(serveCmd, cfg)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new database with a librarian account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runInit(cfg)
		},
	}
	initCmd.Flags().StringVarP(&cfg.AdminUser, "user", "u", "", "librarian username (default admin)")
	initCmd.Flags().StringVar(&cfg.AdminEmail, "email", "", "librarian email (default admin@localhost)")

	root.AddCommand(serveCmd, initCmd, newUseraddCmd(cfg))
	return root
}

func addServeFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	f.StringVarP(&cfg.Addr, "addr", "a", "", "listen address (default :8080)")
	f.StringVarP(&cfg.AdminUser, "user", "u", "", "librarian username on first run (default admin)")
	f.StringVar(&cfg.AdminEmail, "email", "", "librarian email on first run (default admin@localhost)")
	f.Int64Var(&cfg.FinePerDay, "fine", -1, "daily late fine in cents (default: keep stored rate)")
	f.BoolVar(&cfg.CookieSecure, "secure-cookies", false, "mark cookies Secure (serve behind HTTPS)")
}

// applyFlags copies every flag the user set from flagged into loaded.
func applyFlags(cmd *cobra.Command, loaded, flagged *config.Config) {
	set := func(name string, apply func()) {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("db", func() { loaded.DBPath = flagged.DBPath })
	set("log", func() { loaded.LogPath = flagged.LogPath })
	set("addr", func() { loaded.Addr = flagged.Addr })
	set("user", func() { loaded.AdminUser = flagged.AdminUser })
	set("email", func() { loaded.AdminEmail = flagged.AdminEmail })
	set("fine", func() { loaded.FinePerDay = flagged.FinePerDay })
	set("secure-cookies", func() { loaded.CookieSecure = flagged.CookieSecure })
}

func runInit(cfg *config.Config) error {
	if _, err := os.Stat(cfg.DBPath); err == nil {
		return fmt.Errorf("database %s already exists", cfg.DBPath)
	}

	database, password, err := initDatabase(cfg.DBPath, cfg.AdminUser, cfg.AdminEmail)
	if err != nil {
		return err
	}
	database.Close()

	printInitResult(cfg.DBPath, cfg.AdminUser, cfg.AdminEmail, password)
	return nil
}
