package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/karstdb/karst/internal/mixed"
	"github.com/karstdb/karst/internal/packed"
	"github.com/karstdb/karst/internal/session"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	SchemaDir string
}

// FixtureFile is the on-disk YAML fixture format.
type FixtureFile struct {
	Objects []FixtureObject `yaml:"objects"`
}

// FixtureObject declares one object to create and its field values.
type FixtureObject struct {
	Class  string                  `yaml:"class"`
	Fields map[string]FixtureValue `yaml:"fields"`
}

// FixtureValue is a tagged fixture scalar: exactly one member is set.
type FixtureValue struct {
	Null     *bool             `yaml:"null"`
	Bool     *bool             `yaml:"bool"`
	Int      *int64            `yaml:"int"`
	Float    *float32          `yaml:"float"`
	Double   *float64          `yaml:"double"`
	String   *string           `yaml:"string"`
	Binary   *string           `yaml:"binary"`  // hex
	Date     *string           `yaml:"date"`    // RFC 3339
	Decimal  *string           `yaml:"decimal"` // decimal text
	ObjectID *string           `yaml:"objectID"`
	UUID     *string           `yaml:"uuid"`
	Object   *FixtureObjectRef `yaml:"object"`
}

// FixtureObjectRef points at another fixture object by its position in
// the objects list.
type FixtureObjectRef struct {
	Index int `yaml:"index"`
}

// LoadResult reports what was created.
type LoadResult struct {
	Objects []LoadedObject `json:"objects"`
}

// LoadedObject reports one created object.
type LoadedObject struct {
	Class  string `json:"class"`
	Key    int64  `json:"key"`
	Fields int    `json:"fields"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <db> <fixtures.yaml>",
		Short: "Create objects and field values from a YAML fixture file",
		Long: `Load a YAML fixture into a database. All objects are created first,
then fields are written, so fixtures can reference each other by list
index regardless of declaration order.

Examples:
  karst load ./karst.db ./fixtures.yaml
  karst load ./karst.db ./fixtures.yaml --schema ./schema`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.SchemaDir, "schema", "", "CUE schema directory (enables static resolution)")

	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command, dbPath, fixturePath string) error {
	ctx := context.Background()

	raw, err := os.ReadFile(fixturePath)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read fixture file", err)
	}
	var fixture FixtureFile
	if err := yaml.Unmarshal(raw, &fixture); err != nil {
		return WrapExitError(ExitFailure, "failed to parse fixture file", err)
	}

	sess, err := openSession(dbPath, opts.SchemaDir)
	if err != nil {
		return err
	}
	defer sess.Close()

	// First pass: create every object so references by index resolve.
	created := make([]*session.Object, len(fixture.Objects))
	for i, fo := range fixture.Objects {
		obj, err := sess.Create(ctx, fo.Class)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to create objects[%d]", i), err)
		}
		created[i] = obj
	}

	// Second pass: write fields.
	result := LoadResult{}
	for i, fo := range fixture.Objects {
		for name, fv := range fo.Fields {
			v, err := fixtureValue(fv, created)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("objects[%d].%s", i, name), err)
			}
			if err := created[i].SetMixed(ctx, name, v); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("objects[%d].%s", i, name), err)
			}
		}
		result.Objects = append(result.Objects, LoadedObject{
			Class:  fo.Class,
			Key:    created[i].Key(),
			Fields: len(fo.Fields),
		})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.JSON(result)
	}
	for _, lo := range result.Objects {
		fmt.Fprintf(cmd.OutOrStdout(), "created %s[%d] (%d fields)\n", lo.Class, lo.Key, lo.Fields)
	}
	return nil
}

// fixtureValue converts one fixture scalar into a mixed value.
func fixtureValue(fv FixtureValue, created []*session.Object) (*mixed.Value, error) {
	switch {
	case fv.Null != nil && *fv.Null:
		return mixed.Null(), nil
	case fv.Bool != nil:
		return mixed.FromBool(*fv.Bool), nil
	case fv.Int != nil:
		return mixed.FromInt(*fv.Int), nil
	case fv.Float != nil:
		return mixed.FromFloat32(*fv.Float), nil
	case fv.Double != nil:
		return mixed.FromFloat64(*fv.Double), nil
	case fv.String != nil:
		return mixed.FromString(*fv.String), nil
	case fv.Binary != nil:
		b, err := hex.DecodeString(*fv.Binary)
		if err != nil {
			return nil, fmt.Errorf("invalid binary hex: %w", err)
		}
		return mixed.FromBinary(b), nil
	case fv.Date != nil:
		t, err := time.Parse(time.RFC3339, *fv.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		return mixed.FromTime(t), nil
	case fv.Decimal != nil:
		d, _, err := apd.NewFromString(*fv.Decimal)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal: %w", err)
		}
		return mixed.FromDecimal(d), nil
	case fv.ObjectID != nil:
		oid, err := packed.ObjectIDFromHex(*fv.ObjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid objectID: %w", err)
		}
		return mixed.FromObjectID(oid), nil
	case fv.UUID != nil:
		u, err := uuid.Parse(*fv.UUID)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid: %w", err)
		}
		return mixed.FromUUID(u), nil
	case fv.Object != nil:
		idx := fv.Object.Index
		if idx < 0 || idx >= len(created) {
			return nil, fmt.Errorf("object index %d out of range", idx)
		}
		return mixed.FromObject(created[idx]), nil
	default:
		return nil, fmt.Errorf("no value set")
	}
}
