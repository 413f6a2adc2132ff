package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/config"
	"github.com/btouchard/dasfront/internal/logging"
)

var (
	cfgFile string
	verbose bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "dasfront",
	Short: "Parser front end for .das sources",
	Long: `dasfront parses .das compilation units into a syntax tree and reports
structured diagnostics.

Commands:
  parse    - print the tree of one unit
  check    - report diagnostics for many units
  tokens   - list the tokens of one unit
  resolve  - follow require chains and list unresolved names
  index    - store declarations in a SQLite index
  find     - look a name up in the index
  watch    - re-parse units as they change`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (.toml, .yaml or .jsonc)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads the configuration and builds the logger before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", slog.String("file", cfgFile))
	return nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
