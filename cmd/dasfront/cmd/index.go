package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/index"
)

var dbPath string

var indexCmd = &cobra.Command{
	Use:   "index FILE...",
	Short: "Store declarations in the index",
	Long: `Parse the files and record their declarations and diagnostics as a new
run of the SQLite index (default path from index.path in the config).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().StringVar(&dbPath, "db", "", "index database (default from config)")
	rootCmd.AddCommand(indexCmd)
}

func openIndex() (*index.Store, error) {
	path := dbPath
	if path == "" {
		path = cfg.Index.Path
	}
	return index.Open(path, logger)
}

func runIndex(cmd *cobra.Command, args []string) error {
	results, err := parseAll(cmd.Context(), cfg, args)
	if err != nil {
		return err
	}
	store, err := openIndex()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.BeginRun()
	if err != nil {
		return err
	}
	for _, res := range results {
		if _, err := store.AddUnit(run, res.Path, res.Program, res.Diagnostics); err != nil {
			return err
		}
	}
	logger.Info("index updated", slog.String("run", run.ID), slog.Int("files", run.Files))
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d files, %d diagnostics\n", run.ID, run.Files, run.Diagnostics)
	return nil
}
