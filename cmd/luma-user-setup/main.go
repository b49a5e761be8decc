package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bkryza/luma-user-setup-example/config"
	"github.com/bkryza/luma-user-setup-example/pipeline"
	"github.com/bkryza/luma-user-setup-example/records"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "luma-user-setup",
		Short: "Batch provisioning of basic-auth accounts in Onedata with LUMA storage mappings",
		Long: `Provisions a batch of basic-auth user accounts in an Onedata zone based on
a configured UID range and login prefix, adds each account to a shared data
space, registers UID/GID storage mappings in LUMA and writes the generated
credentials to <prefix>_accounts.csv and a local ledger.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			logrus.SetOutput(os.Stdout)
			logrus.SetFormatter(&logrus.TextFormatter{
				DisableColors: true,
				FullTimestamp: true,
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFile,
		"path to the YAML configuration file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd(&configPath))
	cmd.AddCommand(newListCmd(&configPath))

	return cmd
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "provision the configured UID range end to end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			store, err := records.NewStore(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open ledger %s: %w", cfg.DatabasePath, err)
			}
			defer store.Close()

			if err := store.Migrate(); err != nil {
				return fmt.Errorf("migrate ledger %s: %w", cfg.DatabasePath, err)
			}

			return pipeline.New(cfg, store).Run(cmd.Context())
		},
	}
}

func newListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list [login]",
		Short: "list accounts recorded in the local ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(*configPath)
			if err != nil {
				return err
			}

			store, err := records.NewStore(cfg.DatabasePath, true)
			if err != nil {
				return fmt.Errorf("open ledger %s: %w", cfg.DatabasePath, err)
			}
			defer store.Close()

			var entries []records.LedgerEntry
			if len(args) == 1 {
				entry, err := store.GetAccountByLogin(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				entries = []records.LedgerEntry{entry}
			} else {
				entries, err = store.GetAccounts(cmd.Context())
				if err != nil {
					return err
				}
			}

			for _, entry := range entries {
				fmt.Printf("%d\t%s\t%s\t%s\t%s\n", entry.UID, entry.Login, entry.UserID,
					entry.RunID, entry.CreatedAt.Format(time.RFC3339))
			}
			return nil
		},
	}
}
