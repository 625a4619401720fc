// Command keycase rewrites the keys of JSON documents between case formats
// and runs a demo server for the HTTP body transform.
package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	keycase "github.com/SimonDaKappa/go-keycase"
)

// logger is built by the root command before any subcommand runs.
var logger *zap.Logger

// rootOptions carries the persistent flags and the loaded config to the
// subcommands.
type rootOptions struct {
	verbose    bool
	configPath string
	cfg        *Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "keycase",
		Short: "Convert JSON keys between camelCase, snake_case and friends",
		Long: `keycase rewrites every object key of a JSON document into a target case
format and reports keys that do not follow the expected source format.

Supported formats: lower, camel, snake, pascal, kebab.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			opts.cfg, err = LoadConfig(opts.configPath)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")

	root.AddCommand(newMapCmd(opts))
	root.AddCommand(newServeCmd(opts))
	root.AddCommand(newFormatsCmd())
	root.AddCommand(newDetectCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newFormatsCmd lists the registered case formats
func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the supported case formats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := keycase.DefaultRegistry()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FORMAT\tVALIDATES")
			for _, f := range reg.Formats() {
				_, err := reg.Validator(f)
				fmt.Fprintf(tw, "%s\t%t\n", f, err == nil)
			}
			return tw.Flush()
		},
	}
}

// newDetectCmd reports the first case format each key conforms to
func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "detect [key...]",
		Short:   "Detect the case format of keys",
		Example: `  keycase detect userName user_name UserName`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, key := range args {
				format, ok := keycase.DetectCaseFormat(key)
				if !ok {
					fmt.Fprintf(tw, "%s\t-\n", key)
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\n", key, format)
			}
			return tw.Flush()
		},
	}
}
