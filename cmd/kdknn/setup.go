package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/internal/config"
	"github.com/hupe1980/kdknn/internal/dataset"
	"github.com/hupe1980/kdknn/resource"
)

// resolveConfig layers defaults, the config file and explicitly set flags.
func (s *cliState) resolveConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if s.cfgFile != "" {
		var err error
		if cfg, err = config.Load(s.cfgFile); err != nil {
			return cfg, err
		}
	}

	set := cmd.Flags().Changed
	if set("train") {
		cfg.Train = s.flags.Train
	}
	if set("test") {
		cfg.Test = s.flags.Test
	}
	if set("out") {
		cfg.Out = s.flags.Out
	}
	if set("k") {
		cfg.K = s.flags.K
	}
	if set("p") {
		cfg.P = s.flags.P
	}
	if set("workers") {
		cfg.Workers = s.flags.Workers
	}
	if set("log-level") {
		cfg.LogLevel = s.flags.LogLevel
	}
	if set("mode") {
		cfg.Mode = s.flags.Mode
	}
	if set("labeled") {
		cfg.Labeled = s.flags.Labeled
	}

	return cfg, cfg.Validate()
}

// indexOptions translates the configuration into kdknn options.
func indexOptions(cmd *cobra.Command, cfg config.Config) ([]kdknn.Option, error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	ctrl := resource.NewController(resource.Config{
		MemoryLimitBytes: cfg.Limits.MemoryBytes,
		MaxSearchWorkers: cfg.Limits.SearchWorkers,
		QueriesPerSecond: cfg.Limits.QueriesPerSecond,
		QueryBurst:       cfg.Limits.QueryBurst,
	})

	return []kdknn.Option{
		kdknn.WithLogger(kdknn.NewTextLoggerTo(cmd.ErrOrStderr(), level)),
		kdknn.WithWorkers(cfg.Workers),
		kdknn.WithResourceController(ctrl),
	}, nil
}

// loadInputs reads the training and query matrices and checks that their
// widths agree.
func loadInputs(cfg config.Config, labeled bool) (train, test *dataset.Matrix, err error) {
	train, err = dataset.Load(cfg.Train, dataset.ReadOptions{Labeled: labeled})
	if err != nil {
		return nil, nil, err
	}
	test, err = dataset.Load(cfg.Test, dataset.ReadOptions{})
	if err != nil {
		return nil, nil, err
	}
	if test.Cols != train.Cols {
		return nil, nil, &kdknn.ErrDimensionMismatch{Expected: train.Cols, Actual: test.Cols}
	}
	return train, test, nil
}

// writeOutput streams the result to stdout or to path, compressed by
// file extension.
func writeOutput(cmd *cobra.Command, path string, write func(w io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := dataset.NewWriter(f, dataset.CompressionFromPath(path))
	if err != nil {
		return err
	}
	if err := write(w); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return f.Close()
}
