package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/compiler/comments"
	"github.com/btouchard/dasfront/internal/compiler/dump"
	"github.com/btouchard/dasfront/internal/config"
	"github.com/btouchard/dasfront/internal/watch"
)

// errDiagnostics makes the process exit 1 once the diagnostics were printed.
var errDiagnostics = errors.New("diagnostics reported")

var dumpTree bool

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse one unit",
	Long: `Parse one unit and print a summary of its declarations, or the whole
tree with --dump. Diagnostics follow the output.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&dumpTree, "dump", false, "print the syntax tree")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	res := parseFile(cfg, args[0])
	if res.Err != nil {
		return res.Err
	}
	out := cmd.OutOrStdout()
	if dumpTree {
		fmt.Fprint(out, dump.Program(res.Program))
	} else {
		printSummary(out, res)
	}
	if renderResult(out, res) > 0 {
		return errDiagnostics
	}
	return nil
}

// parseFile parses one unit with the configured options. With --verbose every
// declaration is also logged through the comment-reader hooks.
func parseFile(c *config.Config, path string) watch.Result {
	opts := c.ParserOptions(path)
	if verbose && logger != nil {
		opts.Comments = comments.NewLogger(logger)
	}
	return watch.ParseFile(path, opts)
}

func printSummary(w io.Writer, res watch.Result) {
	prog := res.Program
	module := prog.Module.Name
	if module == "" {
		module = "-"
	}
	fmt.Fprintf(w, "module:     %s\n", module)
	fmt.Fprintf(w, "requires:   %d\n", len(prog.Requires))
	fmt.Fprintf(w, "structures: %d\n", len(prog.Structures))
	fmt.Fprintf(w, "enums:      %d\n", len(prog.Enums))
	fmt.Fprintf(w, "aliases:    %d\n", len(prog.Aliases))
	fmt.Fprintf(w, "globals:    %d\n", len(prog.Globals))
	fmt.Fprintf(w, "functions:  %d\n", len(prog.Functions))
	fmt.Fprintf(w, "generics:   %d\n", len(prog.Generics))
}
