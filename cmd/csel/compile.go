package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/pthm/csel/internal/cli"
	"github.com/pthm/csel/pkg/compiler"
	"github.com/pthm/csel/pkg/selector"
)

var (
	compileAliases             []string
	compileParameterPrefix     string
	compileParameterNamePrefix string
	compilePropertyPrefix      string
	compileOutput              string
	compileValidate            bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <expression>",
	Short: "Compile an expression to SQL",
	Long: `Compile a CSEL expression to a SQL filter fragment and its parameters.

Aliases map logical properties to columns. The built-in search table aliases
are applied first, then those from csel.yaml, then --alias flags.`,
	Example: `  # Compile with the default aliases
  csel compile 'format == "maven2" && path =~ "^/org/apache/.*"'

  # Use pgx named arguments
  csel compile --parameter-prefix @ 'name =^ "commons"'

  # Map a property to a qualified column
  csel compile --alias format=c.tsv_format 'format == "npm"'

  # Emit YAML
  csel compile --output yaml 'version != "1.0"'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := cfg.CompilerOptions()
		if err != nil {
			return cli.ConfigError("compiler configuration", err)
		}
		opts, err = applyCompileFlags(opts, cmd)
		if err != nil {
			return cli.ConfigError("compiler flags", err)
		}

		node, err := selector.Parse(args[0])
		if err != nil {
			return cli.ExpressionError("parsing expression", err)
		}
		if compileValidate {
			if err := selector.ValidateProperties(node, allowedProperties(nil)); err != nil {
				return cli.ExpressionError("validating expression", err)
			}
		}

		frag, err := compiler.GenerateFilter(node, opts)
		if err != nil {
			return cli.ExpressionError("compiling expression", err)
		}

		switch compileOutput {
		case "text":
			renderFragmentText(cmd.OutOrStdout(), frag)
			return nil
		case "yaml":
			return renderFragmentYAML(cmd.OutOrStdout(), frag)
		default:
			return cli.ConfigError(fmt.Sprintf("unknown output format %q (want text or yaml)", compileOutput), nil)
		}
	},
}

func init() {
	f := compileCmd.Flags()
	f.StringArrayVar(&compileAliases, "alias", nil, "property alias as property=column (repeatable)")
	f.StringVar(&compileParameterPrefix, "parameter-prefix", "", "token placed before parameter names, e.g. : or @")
	f.StringVar(&compileParameterNamePrefix, "parameter-name-prefix", "", "prefix of generated parameter names")
	f.StringVar(&compilePropertyPrefix, "property-prefix", "", "qualifier for properties without an alias")
	f.StringVarP(&compileOutput, "output", "o", "text", "output format: text or yaml")
	f.BoolVar(&compileValidate, "validate", false, "reject properties outside the allow-list")
}

// applyCompileFlags overlays explicitly set flags onto opts.
func applyCompileFlags(opts compiler.Options, cmd *cobra.Command) (compiler.Options, error) {
	flags := cmd.Flags()
	if flags.Changed("parameter-prefix") {
		opts.ParameterPrefix = compileParameterPrefix
	}
	if flags.Changed("parameter-name-prefix") {
		opts.ParameterNamePrefix = compileParameterNamePrefix
	}
	if flags.Changed("property-prefix") {
		opts.PropertyPrefix = compilePropertyPrefix
	}
	for _, a := range compileAliases {
		property, column, err := parseAlias(a)
		if err != nil {
			return opts, err
		}
		opts = opts.WithAlias(property, column)
	}
	return opts, nil
}

// parseAlias splits a property=column flag value.
func parseAlias(s string) (property, column string, err error) {
	property, column, ok := strings.Cut(s, "=")
	property = strings.TrimSpace(property)
	column = strings.TrimSpace(column)
	if !ok || property == "" || column == "" {
		return "", "", fmt.Errorf("invalid alias %q (want property=column)", s)
	}
	return property, column, nil
}

// allowedProperties resolves the property allow-list: flag > config > default.
func allowedProperties(flagValues []string) []string {
	if len(flagValues) > 0 {
		return flagValues
	}
	if cfg != nil && len(cfg.Compiler.AllowedProperties) > 0 {
		return cfg.Compiler.AllowedProperties
	}
	return selector.DefaultAllowedProperties
}

func renderFragmentText(w io.Writer, frag compiler.Fragment) {
	st := newStyles(w)

	_, _ = fmt.Fprintln(w, st.heading.Render("SQL:"))
	_, _ = fmt.Fprintf(w, "  %s\n", frag.SQL)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, st.heading.Render("Parameters:"))
	if len(frag.Params) == 0 {
		_, _ = fmt.Fprintln(w, st.muted.Render("  (none)"))
		return
	}
	for _, p := range frag.Params {
		_, _ = fmt.Fprintf(w, "  %s = %s\n", p.Name, formatValue(p.Value))
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprint(v)
	}
}

// fragmentDocument is the YAML shape of a compiled fragment.
type fragmentDocument struct {
	SQL        string              `json:"sql"`
	Parameters []parameterDocument `json:"parameters"`
}

type parameterDocument struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func renderFragmentYAML(w io.Writer, frag compiler.Fragment) error {
	doc := fragmentDocument{
		SQL:        frag.SQL,
		Parameters: make([]parameterDocument, len(frag.Params)),
	}
	for i, p := range frag.Params {
		doc.Parameters[i] = parameterDocument{Name: p.Name, Value: p.Value}
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return cli.GeneralError("encoding yaml", err)
	}
	_, err = w.Write(out)
	return err
}
