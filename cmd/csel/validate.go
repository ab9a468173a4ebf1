package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/pkg/selector"
)

var validateAllow []string

var validateCmd = &cobra.Command{
	Use:   "validate <expression>",
	Short: "Validate an expression",
	Long: `Parse an expression and check that it only references allowed properties.

The allow-list comes from --allow, then compiler.allowed_properties in
csel.yaml, then the built-in content selector properties. A trailing ".*"
allows any sub-property.`,
	Example: `  # Validate against the default allow-list
  csel validate 'format == "maven2" && coordinate.groupId == "org.apache"'

  # Validate against a custom allow-list
  csel validate --allow format --allow name 'name =^ "log"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		node, err := selector.Parse(args[0])
		if err != nil {
			return cli.ExpressionError("parsing expression", err)
		}
		if err := selector.ValidateProperties(node, allowedProperties(validateAllow)); err != nil {
			return cli.ExpressionError("validating expression", err)
		}

		if !quiet {
			renderValidation(cmd.OutOrStdout(), node)
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringArrayVar(&validateAllow, "allow", nil, "allowed property or prefix pattern (repeatable)")
}

func renderValidation(w io.Writer, node selector.Node) {
	_, _ = fmt.Fprintf(w, "Expression is valid: %s\n", selector.Format(node))
	_, _ = fmt.Fprintf(w, "Properties: %s\n", strings.Join(selector.Properties(node), ", "))
}
