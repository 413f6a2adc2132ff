package cmd

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/btouchard/dasfront/internal/config"
	"github.com/btouchard/dasfront/internal/watch"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Report diagnostics for many units",
	Long: `Parse every file concurrently, one parser per file, and print the
diagnostics grouped by file. Exits 1 when any file has diagnostics.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	results, err := parseAll(cmd.Context(), cfg, args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	total := 0
	for _, res := range results {
		total += renderResult(out, res)
	}
	if total > 0 {
		fmt.Fprintln(out, summaryStyle.Render(fmt.Sprintf("%d diagnostics in %d files", total, len(results))))
		return errDiagnostics
	}
	return nil
}

// parseAll parses paths concurrently and returns the results in argument order.
// A file that cannot be read stops the whole batch.
func parseAll(ctx context.Context, c *config.Config, paths []string) ([]watch.Result, error) {
	results := make([]watch.Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := parseFile(c, path)
			if res.Err != nil {
				return res.Err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// renderResult prints the diagnostics of one file and returns how many there were.
func renderResult(w io.Writer, res watch.Result) int {
	if len(res.Diagnostics) == 0 {
		fmt.Fprintf(w, "%s %s\n", pathStyle.Render(res.Path), okStyle.Render("ok"))
		return 0
	}
	fmt.Fprintln(w, pathStyle.Render(res.Path))
	for _, d := range res.Diagnostics {
		fmt.Fprintf(w, "  %s %s %s\n",
			posStyle.Render(fmt.Sprintf("%d:%d", d.Span.Line, d.Span.Column)),
			kindStyle.Render(d.Kind.String()+":"),
			d.Message)
	}
	return len(res.Diagnostics)
}
