package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gnemet/LayoutForge/internal/config"
	"github.com/gnemet/LayoutForge/internal/extract"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfg        *config.Config
	tablesFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "layoutforge",
		Short:         "Extract slide layouts and blocks from Figma designs",
		Long:          "LayoutForge walks a Figma document, detects slide frames and their z-index tagged blocks, resolves slide palettes and emits SQL-ready layout records.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&tablesFile, "tables", "", "YAML file merged over the built-in extraction tables (default $TABLES_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log extraction progress")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("layoutforge version %s\n", version)
		},
	}

	rootCmd.AddCommand(newExtractCmd(), newWatchCmd(), newServeCmd(), versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		color.New(color.FgRed).Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadTables resolves the tables file from the flag or the configuration
// and applies the configured canvas size.
func loadTables() (*extract.Tables, error) {
	path := tablesFile
	if path == "" {
		path = cfg.Application.TablesFile
	}
	tables, err := config.LoadTables(path)
	if err != nil {
		return nil, err
	}
	cfg.Extraction.ApplyOverrides(tables)
	return tables, nil
}

// cliLogger implements extract.Logger with colored terminal output.
type cliLogger struct{}

func (cliLogger) Printf(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(os.Stderr, format+"\n", args...)
}

func engineLogger() extract.Logger {
	if verbose {
		return cliLogger{}
	}
	return nil
}
