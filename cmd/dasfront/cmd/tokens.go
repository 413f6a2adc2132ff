package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/btouchard/dasfront/internal/compiler/lexer"
	"github.com/btouchard/dasfront/internal/compiler/token"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE",
	Short: "List the tokens of one unit",
	Long: `List the tokens of one unit with their positions. Reader macro bodies
are not expanded: only the parser knows the registered macros.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading file: %w", err)
	}
	printTokens(cmd.OutOrStdout(), lexer.NewFile(args[0], string(data)))
	return nil
}

func printTokens(w io.Writer, l *lexer.Lexer) {
	for {
		tok := l.NextToken()
		fmt.Fprintf(w, "%-8s %-14s %q\n", fmt.Sprintf("%d:%d", tok.Span.Line, tok.Span.Column), tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			return
		}
	}
}
