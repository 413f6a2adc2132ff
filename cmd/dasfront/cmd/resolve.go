package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/compiler/resolver"
)

var basePath string

var resolveCmd = &cobra.Command{
	Use:   "resolve FILE",
	Short: "Follow require chains",
	Long: `Load a unit and every module it requires, then list the type and parent
names that no loaded unit declares. Modules are looked up next to the
requiring file, then under --base.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().StringVar(&basePath, "base", ".", "module search root")
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	res := resolver.New(basePath, cfg.ParserOptions(""))
	_, errs := res.Resolve(args[0])

	unresolved := 0
	for _, u := range res.Units() {
		fmt.Fprintf(out, "%s (%d diagnostics)\n", pathStyle.Render(u.Path), len(u.Diagnostics))
		for _, ref := range res.Unresolved(u) {
			fmt.Fprintf(out, "  %s unresolved %s %s (from %s)\n",
				posStyle.Render(fmt.Sprintf("%d:%d", ref.Span.Line, ref.Span.Column)), ref.Kind, ref.Name, ref.From)
			unresolved++
		}
	}
	for _, e := range errs {
		fmt.Fprintln(out, kindStyle.Render(e))
	}
	if len(errs) > 0 {
		return errors.New("require resolution failed")
	}
	if unresolved > 0 {
		return fmt.Errorf("%d unresolved names", unresolved)
	}
	return nil
}
