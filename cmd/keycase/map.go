package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	keycase "github.com/SimonDaKappa/go-keycase"
)

type mapFlags struct {
	to     string
	from   string
	output string
	indent int
	strict bool
}

// apply copies the flags set on the command line over cfg.
func (f *mapFlags) apply(cmd *cobra.Command, cfg *Config) {
	if cmd.Flags().Changed("to") {
		cfg.To = f.to
	}
	if cmd.Flags().Changed("from") {
		cfg.From = f.from
	}
	if cmd.Flags().Changed("output") {
		cfg.Output = f.output
	}
	if cmd.Flags().Changed("indent") {
		cfg.Indent = f.indent
	}
	if cmd.Flags().Changed("strict") {
		cfg.Strict = f.strict
	}
}

func newMapCmd(root *rootOptions) *cobra.Command {
	flags := &mapFlags{}

	cmd := &cobra.Command{
		Use:   "map [file]",
		Short: "Rewrite the keys of a JSON document",
		Long: `Reads a JSON document from file, or from stdin when no file is given,
rewrites every object key into the --to format and writes the result to
stdout. Keys that do not follow the --from format are reported on stderr.

Example:
  echo '{"first_name": "Ann"}' | keycase map --to camel --from snake`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := root.cfg
			flags.apply(cmd, cfg)
			if err := cfg.validate(); err != nil {
				return err
			}
			return runMap(cmd, cfg, args)
		},
	}

	cmd.Flags().StringVar(&flags.to, "to", "", "Target case format (default camel)")
	cmd.Flags().StringVar(&flags.from, "from", "", "Expected source case format; keys are not validated when empty")
	cmd.Flags().StringVarP(&flags.output, "output", "o", outputJSON, "Output encoding: json or yaml")
	cmd.Flags().IntVar(&flags.indent, "indent", 2, "Indentation width; 0 writes compact JSON")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Exit with an error when any key or value is reported")

	return cmd
}

func runMap(cmd *cobra.Command, cfg *Config, args []string) error {
	log := logger
	if log == nil {
		log = zap.NewNop()
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	opts, err := cfg.MapperOptions()
	if err != nil {
		return err
	}
	opts.Logger = log

	m, err := keycase.New(opts)
	if err != nil {
		return err
	}

	result, err := m.MapJSON(data)
	if err != nil {
		return fmt.Errorf("failed to map input: %w", err)
	}

	if err := writeValue(cmd.OutOrStdout(), result.Value, cfg); err != nil {
		return err
	}

	for _, e := range result.Errors {
		fmt.Fprintln(cmd.ErrOrStderr(), e.Error())
		if e.Type == keycase.UnparseableValue {
			if ce := log.Check(zap.DebugLevel, "Unparseable value"); ce != nil {
				ce.Write(zap.String("path", e.Path), zap.String("value", spew.Sdump(e.Value)))
			}
		}
	}

	log.Debug("Mapped document",
		zap.Stringer("to", m.ToCase()),
		zap.Stringer("from", m.FromCase()),
		zap.Int("errors", len(result.Errors)),
	)

	if cfg.Strict && len(result.Errors) > 0 {
		return fmt.Errorf("%d key or value errors reported", len(result.Errors))
	}
	return nil
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeValue(w io.Writer, value any, cfg *Config) error {
	switch cfg.Output {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		if cfg.Indent > 0 {
			enc.SetIndent(cfg.Indent)
		}
		node, err := keycase.YAMLNode(value)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		var (
			out []byte
			err error
		)
		if cfg.Indent > 0 {
			out, err = json.MarshalIndent(value, "", strings.Repeat(" ", cfg.Indent))
		} else {
			out, err = json.Marshal(value)
		}
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
}
