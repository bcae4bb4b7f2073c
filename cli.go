package main

import (
	"community-bot/bot"
	"community-bot/config"
	"community-bot/handlers"
	"community-bot/metrics"
	"community-bot/model"
	"community-bot/rulestore"
	"community-bot/utils/database"
	"community-bot/web"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
	appName = "community-bot"
	// cliActor is recorded as the author of changes made from the command line.
	cliActor = "cli"
)

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Discord community bot: rules, punishments and tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if configPath != "" {
				os.Setenv("CONFIG_FILE", configPath)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML or JSON)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Connect to Discord and run the bot (default)",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBot()
			},
		},
		backupCmd(),
		expireCmd(),
		rulesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

func openStore() (*model.Config, *sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Init(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing database: %w", err)
	}
	return cfg, db, nil
}

// offline builds the services without a Discord session.
func offline() (*bot.Services, func(), error) {
	cfg, db, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	svc := bot.NewServices(cfg, db, nil, nil)
	return svc, func() { db.Close() }, nil
}

func runBot() error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	if err := config.ValidateBot(cfg); err != nil {
		return err
	}

	m := metrics.New()
	b, err := bot.New(cfg, db, m)
	if err != nil {
		return fmt.Errorf("error creating bot: %w", err)
	}
	handlers.Register(b)
	defer b.Close()

	var srv *web.Server
	if cfg.HTTPAddr != "" {
		srv = web.New(cfg.HTTPAddr, b.Services, db, m)
		srv.Start()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	runErr := b.Run(ctx)

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Status server shutdown: %v", err)
		}
	}
	return runErr
}

func backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a SQLite backup and prune old ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := offline()
			if err != nil {
				return err
			}
			defer closeDB()

			path, err := svc.Maintenance.BackupDatabase(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
			return nil
		},
	}
}

func expireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expire",
		Short: "Run one violation expiry sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := offline()
			if err != nil {
				return err
			}
			defer closeDB()

			report, err := svc.Maintenance.SweepExpired(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d records, %d failures\n", report.Expired, len(report.Failures))
			return nil
		},
	}
}

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Import or export the rule database",
	}

	var format string
	export := &cobra.Command{
		Use:   "export [file]",
		Short: "Export categories and rules as JSON or YAML (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := offline()
			if err != nil {
				return err
			}
			defer closeDB()
			if err := svc.Rules.SeedDefaults(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
				if format == "" {
					format = rulestore.FormatFromPath(args[0])
				}
			}
			if format == "" {
				format = rulestore.FormatJSON
			}
			n, err := svc.Rules.Export(cmd.Context(), out, format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d rules\n", n)
			return nil
		},
	}
	export.Flags().StringVarP(&format, "format", "f", "", "Output format: json or yaml")

	importCmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import categories and rules; existing rule ids are skipped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := offline()
			if err != nil {
				return err
			}
			defer closeDB()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			report, err := svc.Rules.Import(cmd.Context(), f, rulestore.FormatFromPath(args[0]), cliActor)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rules and %d categories, skipped %d existing: %v\n",
				report.Imported, report.Categories, len(report.Skipped), report.Skipped)
			return nil
		},
	}

	cmd.AddCommand(export, importCmd)
	return cmd
}
