package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Re-parse units as they change",
	Long: `Parse every .das file under DIR, then re-parse files as they are written
and print their diagnostics. Stops on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	w := watch.New(args[0], cfg.Watch.Debounce.Duration, cfg.ParserOptions, logger)
	return w.Run(ctx, func(res watch.Result) {
		if res.Err != nil {
			printError("parse failed", res.Err)
			return
		}
		renderResult(out, res)
	})
}
