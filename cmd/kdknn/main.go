// Command kdknn runs exact k-nearest-neighbor prediction and lookup over
// CSV datasets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kdknn/internal/config"
)

// cliState holds the values bound to the command-line flags.
type cliState struct {
	cfgFile string
	flags   config.Config
}

// NewRootCmd creates the kdknn command tree.
func NewRootCmd() *cobra.Command {
	s := &cliState{flags: config.Default()}

	rootCmd := &cobra.Command{
		Use:   "kdknn",
		Short: "Exact k-nearest-neighbor search over CSV data",
		Long: `kdknn builds a k-d tree over a training CSV and answers k-nearest-neighbor
queries for every row of a test CSV, either as classification/regression
predictions or as raw neighbor lists.

Files ending in .gz, .zst or .lz4 are decompressed transparently.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version(),
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&s.cfgFile, "config", "", "YAML config file (flags override its values)")
	pf.StringVar(&s.flags.Train, "train", "", "training CSV")
	pf.StringVar(&s.flags.Test, "test", "", "query CSV")
	pf.StringVar(&s.flags.Out, "out", "", "output file (default stdout)")
	pf.IntVar(&s.flags.K, "k", s.flags.K, "number of neighbors")
	pf.Float64Var(&s.flags.P, "p", s.flags.P, "Minkowski exponent (1 = Manhattan, 2 = Euclidean, +Inf = Chebyshev)")
	pf.IntVar(&s.flags.Workers, "workers", 0, "batch search goroutines (default GOMAXPROCS)")
	pf.StringVar(&s.flags.LogLevel, "log-level", s.flags.LogLevel, "log level: debug, info, warn, error")

	rootCmd.AddCommand(PredictCmd(s))
	rootCmd.AddCommand(NeighborsCmd(s))
	rootCmd.AddCommand(VersionCmd())

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
