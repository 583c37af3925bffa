package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// GetOptions holds flags for the get command.
type GetOptions struct {
	*RootOptions
	SchemaDir string
}

// GetResult is a single field lookup.
type GetResult struct {
	Class string    `json:"class"`
	Key   int64     `json:"key"`
	Field string    `json:"field"`
	Value ValueInfo `json:"value"`
}

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <db> <class> <key> <field>",
		Short: "Read one mixed field value from an object",
		Long: `Look up a single object field, decode the stored value and print it.

Examples:
  karst get ./karst.db Person 1 name
  karst get ./karst.db Person 1 spouse --schema ./schema --format json`,
		Args:          cobra.ExactArgs(4),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "CUE schema directory (enables static resolution)")

	return cmd
}

func runGet(opts *GetOptions, cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	dbPath, class, field := args[0], args[1], args[3]

	key, err := strconv.ParseInt(args[2], 10, 64)
	if err != nil {
		return NewExitError(ExitFailure, "key must be an integer")
	}

	sess, err := openSession(dbPath, opts.SchemaDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	obj, err := sess.Get(ctx, class, key)
	if err != nil {
		return WrapExitError(ExitFailure, "object lookup failed", err)
	}
	v, err := obj.Mixed(ctx, field)
	if err != nil {
		return WrapExitError(ExitFailure, "field lookup failed", err)
	}

	result := GetResult{Class: class, Key: key, Field: field, Value: valueInfo(v)}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", renderText(result.Value))
	return nil
}
