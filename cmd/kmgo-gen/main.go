// Command kmgo-gen writes typed path accessors for structs marked kmgo:data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kinfkong/kmgo/internal/gen"
)

var (
	tag     string
	all     bool
	output  string
	debug   bool
	verbose bool
	timeout time.Duration

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "kmgo-gen [flags] <packages>",
	Short: "Generate typed document paths for mapped structs",
	Long: `kmgo-gen loads the given packages and, for every struct whose doc comment
carries the kmgo:data directive, writes a path type with one accessor per
stored field. Field names are resolved from bson tags, or from bson and then
json tags with --tag json.

Example:
  //go:generate go run github.com/kinfkong/kmgo/cmd/kmgo-gen .`,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: generate,
}

func init() {
	rootCmd.Flags().StringVar(&tag, "tag", "bson", "struct tags stored names come from: bson or json")
	rootCmd.Flags().BoolVar(&all, "all", false, "generate every exported struct, marked or not")
	rootCmd.Flags().StringVarP(&output, "out", "o", gen.DefaultOutput, "output file name, or a path when one package is given")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "dump the collected types to stderr")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "generation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func generate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := gen.Config{Tag: tag, All: all, Output: output}
	if debug {
		cfg.Dump = os.Stderr
	}
	g, err := gen.New(cfg, logger)
	if err != nil {
		return err
	}

	results, err := g.Run(ctx, "", args...)
	if err != nil {
		return err
	}
	changed := 0
	for _, r := range results {
		if r.Changed {
			changed++
		}
	}
	logger.Debug("done", zap.Int("packages", len(results)), zap.Int("changed", changed))
	return nil
}
