package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/karstdb/karst/internal/schema"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// ValidateResult holds the validation output.
type ValidateResult struct {
	Classes []ClassInfo `json:"classes"`
}

// ClassInfo describes one compiled class.
type ClassInfo struct {
	Name   string            `json:"name"`
	Table  string            `json:"table"`
	Fields map[string]string `json:"fields"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <schema-dir>",
		Short: "Compile and validate a CUE schema directory",
		Long: `Compile CUE class declarations and report what they declare.

Examples:
  karst validate ./schema
  karst validate ./schema --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, cmd, args[0])
		},
	}

	return cmd
}

func runValidate(opts *ValidateOptions, cmd *cobra.Command, dir string) error {
	sch, err := schema.LoadDir(dir)
	if err != nil {
		var ce *schema.CompileError
		if errors.As(err, &ce) {
			return WrapExitError(ExitFailure, "schema validation failed", err)
		}
		return WrapExitError(ExitCommandError, "failed to load schema", err)
	}

	classes := sch.Classes()
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })

	result := ValidateResult{}
	for _, c := range classes {
		result.Classes = append(result.Classes, ClassInfo{
			Name:   c.Name,
			Table:  c.Table,
			Fields: c.Fields,
		})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(result)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d class(es):\n", len(result.Classes))
	for _, c := range result.Classes {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%s)\n", c.Name, c.Table)
		names := make([]string, 0, len(c.Fields))
		for name := range c.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "    %s: %s\n", name, c.Fields[name])
		}
	}
	return nil
}
