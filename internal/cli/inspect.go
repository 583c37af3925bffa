package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/karstdb/karst/internal/schema"
	"github.com/karstdb/karst/internal/session"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	SchemaDir string
}

// InspectResult holds the full database dump.
type InspectResult struct {
	Tables []TableDump `json:"tables"`
}

// TableDump describes one table and its objects.
type TableDump struct {
	Table   string       `json:"table"`
	Class   string       `json:"class"`
	Objects []ObjectDump `json:"objects"`
}

// ObjectDump describes one object and its set fields.
type ObjectDump struct {
	Key    int64                `json:"key"`
	Fields map[string]ValueInfo `json:"fields"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <db>",
		Short: "Dump every object and mixed field value in a database",
		Long: `Walk all tables and objects, decoding each stored field value.

Without --schema the database is opened dynamically and object
references resolve by table name. With --schema, declared classes
resolve statically.

Examples:
  karst inspect ./karst.db
  karst inspect ./karst.db --schema ./schema --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "CUE schema directory (enables static resolution)")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command, dbPath string) error {
	ctx := context.Background()

	sess, err := openSession(dbPath, opts.SchemaDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	tables, err := sess.Tables(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list tables", err)
	}

	result := InspectResult{}
	for _, table := range tables {
		dump := TableDump{Table: table, Class: schema.ClassNameForTable(table)}
		objs, err := sess.ObjectsInTable(ctx, table)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list objects", err)
		}
		for _, obj := range objs {
			od := ObjectDump{Key: obj.Key(), Fields: map[string]ValueInfo{}}
			names, err := obj.FieldNames(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list fields", err)
			}
			for _, name := range names {
				v, err := obj.Mixed(ctx, name)
				if err != nil {
					return WrapExitError(ExitCommandError, fmt.Sprintf("failed to decode %s[%d].%s", table, obj.Key(), name), err)
				}
				od.Fields[name] = valueInfo(v)
			}
			dump.Objects = append(dump.Objects, od)
		}
		result.Tables = append(result.Tables, dump)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(result)
	}

	for _, dump := range result.Tables {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", dump.Table, dump.Class)
		for _, od := range dump.Objects {
			fmt.Fprintf(cmd.OutOrStdout(), "  [%d]\n", od.Key)
			// Field names were listed sorted; re-walk in that order.
			for _, name := range sortedFieldNames(od.Fields) {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s: %s\n", name, renderText(od.Fields[name]))
			}
		}
	}
	return nil
}

// openSession opens a typed session when a schema directory is given,
// dynamic otherwise.
func openSession(dbPath, schemaDir string) (*session.Session, error) {
	if schemaDir == "" {
		sess, err := session.OpenDynamic(dbPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		return sess, nil
	}
	sch, err := schema.LoadDir(schemaDir)
	if err != nil {
		return nil, WrapExitError(ExitFailure, "failed to load schema", err)
	}
	sess, err := session.OpenTyped(dbPath, sch)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return sess, nil
}
