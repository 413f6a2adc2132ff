package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runID string

var findCmd = &cobra.Command{
	Use:   "find NAME",
	Short: "Look a name up in the index",
	Long: `Look a declaration up in the latest index run, or in --run. The name may
be qualified with its module: math::Vec.`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	findCmd.Flags().StringVar(&dbPath, "db", "", "index database (default from config)")
	findCmd.Flags().StringVar(&runID, "run", "", "run identifier (default: latest)")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	store, err := openIndex()
	if err != nil {
		return err
	}
	defer store.Close()

	id := runID
	if id == "" {
		run, err := store.LatestRun()
		if err != nil {
			return err
		}
		if run == nil {
			return fmt.Errorf("index is empty")
		}
		id = run.ID
	}

	units, err := store.Units(id)
	if err != nil {
		return err
	}
	paths := make(map[uint]string, len(units))
	for _, u := range units {
		paths[u.ID] = u.Path
	}

	decls, err := store.Find(id, args[0])
	if err != nil {
		return err
	}
	if len(decls) == 0 {
		return fmt.Errorf("%s not found", args[0])
	}
	out := cmd.OutOrStdout()
	for _, d := range decls {
		fmt.Fprintf(out, "%s:%d:%d %s %s %s\n", paths[d.UnitID], d.Line, d.Column, d.Kind, d.Name, d.Signature)
	}
	return nil
}
