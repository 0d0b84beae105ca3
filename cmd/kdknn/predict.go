package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/internal/config"
)

// PredictCmd creates the predict command.
func PredictCmd(s *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict a label for every query row",
		Long: `Fit a classifier or regressor on the training CSV, whose last column is the
label, and write one prediction per query row.`,
		Example: `  kdknn predict --train iris.csv --test queries.csv --k 5
  kdknn predict --train houses.csv.zst --test q.csv --mode regress --p 1 --out pred.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runPredict(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&s.flags.Mode, "mode", s.flags.Mode, "prediction mode: classify or regress")

	return cmd
}

// model is the part of Classifier and Regressor the command needs.
type model interface {
	Fit(points []float32, rows, cols int, labels []float32) error
	Close() int
}

func runPredict(cmd *cobra.Command, cfg config.Config) error {
	opts, err := indexOptions(cmd, cfg)
	if err != nil {
		return err
	}

	train, test, err := loadInputs(cfg, true)
	if err != nil {
		return err
	}

	var (
		m       model
		predict func() ([]float32, error)
	)
	switch cfg.Mode {
	case config.ModeRegress:
		reg, err := kdknn.NewRegressor(cfg.K, float32(cfg.P), opts...)
		if err != nil {
			return err
		}
		m = reg
		predict = func() ([]float32, error) { return reg.Predict(cmd.Context(), test.Data, test.Rows) }
	default:
		clf, err := kdknn.NewClassifier(cfg.K, float32(cfg.P), opts...)
		if err != nil {
			return err
		}
		m = clf
		predict = func() ([]float32, error) { return clf.Predict(cmd.Context(), test.Data, test.Rows) }
	}

	if err := m.Fit(train.Data, train.Rows, train.Cols, train.Labels); err != nil {
		return fmt.Errorf("fit %s: %w", cfg.Train, err)
	}
	defer m.Close()

	pred, err := predict()
	if err != nil {
		return fmt.Errorf("predict %s: %w", cfg.Test, err)
	}

	return writeOutput(cmd, cfg.Out, func(w io.Writer) error {
		bw := bufio.NewWriter(w)
		for _, v := range pred {
			bw.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
			bw.WriteByte('\n')
		}
		return bw.Flush()
	})
}
