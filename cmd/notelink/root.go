package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/notelink"
)

var (
	verbose bool
	cfgFile string

	flagOwner   string
	flagGateway string
	flagDB      string
	flagBackend string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notelink",
	Short: "Note/label store with swappable remote and local backends",
	Long: `notelink keeps notes and labels consistent across a remote document
store and a local SQLite cache. Labels and notes reference each other in both
directions; the synchronizer keeps the two sides in agreement.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.notelink.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagOwner, "owner", "", "Owner id (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagGateway, "gateway", "", "Sync gateway websocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Local SQLite file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Active backend: remote or local")
}

// newApp assembles the app from config file and flag overrides.
func newApp(ctx context.Context) (*notelink.App, error) {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	if flagOwner != "" {
		cfg.Owner = flagOwner
	}
	if flagGateway != "" {
		cfg.Gateway = flagGateway
	}
	if flagDB != "" {
		cfg.LocalDB = flagDB
	}
	if flagBackend != "" {
		cfg.Backend = flagBackend
	}

	opts := []notelink.Option{
		notelink.WithOwner(cfg.Owner),
		notelink.WithLogger(slog.Default()),
	}
	if cfg.Gateway != "" {
		opts = append(opts, notelink.WithGateway(cfg.Gateway))
	}
	if cfg.LocalDB != "" {
		opts = append(opts, notelink.WithLocalStore(cfg.LocalDB))
	}
	if cfg.Backend != "" {
		opts = append(opts, notelink.WithInitialBackend(notelink.BackendKind(cfg.Backend)))
	}
	return notelink.New(ctx, opts...)
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
