package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pthm/csel/pkg/compiler"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite <pattern>...",
	Short: "Show how regex patterns are anchored to path tokens",
	Long: `Show the pattern each =~ comparison binds after it is anchored to a
brace-delimited path token. Unanchored patterns must match a whole token.`,
	Example: `  csel rewrite 'woof' '^woof' '^woof$'`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderRewrites(cmd.OutOrStdout(), args)
		return nil
	},
}

func renderRewrites(w io.Writer, patterns []string) {
	width := 0
	for _, p := range patterns {
		width = max(width, len(p))
	}
	for _, p := range patterns {
		_, _ = fmt.Fprintf(w, "%-*s  ->  %s\n", width, p, compiler.RewritePathRegex(p))
	}
}
