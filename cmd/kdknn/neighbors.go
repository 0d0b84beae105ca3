package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/kdknn"
	"github.com/hupe1980/kdknn/internal/config"
)

// NeighborsCmd creates the neighbors command.
func NeighborsCmd(s *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "List the k nearest training rows of every query row",
		Long: `Build an index over the training CSV and print query_row,rank,id,distance
for the k nearest training rows of every query row, nearest first.`,
		Example: `  kdknn neighbors --train points.csv --test queries.csv --k 3
  kdknn neighbors --train labeled.csv.gz --labeled --test q.csv --p +Inf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := s.resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runNeighbors(cmd, cfg)
		},
	}

	cmd.Flags().BoolVar(&s.flags.Labeled, "labeled", false, "training CSV carries a label in its last column")

	return cmd
}

func runNeighbors(cmd *cobra.Command, cfg config.Config) error {
	opts, err := indexOptions(cmd, cfg)
	if err != nil {
		return err
	}

	train, test, err := loadInputs(cfg, cfg.Labeled)
	if err != nil {
		return err
	}

	idx, err := kdknn.Build(train.Data, train.Rows, train.Cols, float32(cfg.P), opts...)
	if err != nil {
		return fmt.Errorf("build %s: %w", cfg.Train, err)
	}
	defer idx.Release()

	k := cfg.K
	if k > idx.Len() {
		return fmt.Errorf("%w: k=%d, %d training rows", kdknn.ErrInvalidK, k, idx.Len())
	}

	results, err := idx.SearchBatch(cmd.Context(), test.Data, test.Rows, k)
	if err != nil {
		return err
	}

	return writeOutput(cmd, cfg.Out, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"query_row", "rank", "id", "distance"}); err != nil {
			return err
		}
		for q, res := range results {
			for rank, n := range res {
				rec := []string{
					strconv.Itoa(q),
					strconv.Itoa(rank + 1),
					strconv.FormatUint(uint64(n.ID), 10),
					strconv.FormatFloat(float64(n.Distance), 'g', -1, 32),
				}
				if err := cw.Write(rec); err != nil {
					return err
				}
			}
		}
		cw.Flush()
		return cw.Error()
	})
}
