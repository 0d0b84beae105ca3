package kdknn

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// SearchBatch runs Search for each of the rows queries stored row-major in
// queries and returns one result slice per query, in query order.
//
// Queries are split into contiguous chunks across at most WithWorkers
// goroutines. Workers check ctx before each query and stop issuing new
// ones once it is canceled; a query already running is never interrupted.
// When the resource controller has a query rate limit, each query waits
// on it first.
func (idx *Index) SearchBatch(ctx context.Context, queries []float32, rows, k int) ([][]Neighbor, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	start := time.Now()
	workers := 0

	res, err := idx.searchBatch(ctx, queries, rows, k, &workers)

	idx.opts.metricsCollector.RecordBatch(rows, time.Since(start), err)
	idx.log.WithK(k).LogBatch(ctx, rows, workers, time.Since(start), err)

	if err != nil {
		return nil, err
	}
	return res, nil
}

func (idx *Index) searchBatch(ctx context.Context, queries []float32, rows, k int, workers *int) ([][]Neighbor, error) {
	if idx.tree == nil {
		return nil, ErrReleased
	}
	if rows < 0 || len(queries) != rows*idx.dim {
		return nil, &ErrShapeMismatch{Rows: rows, Cols: idx.dim, Len: len(queries)}
	}
	if k < 1 || k > idx.tree.Len() {
		return nil, ErrInvalidK
	}
	if err := checkFinite(queries); err != nil {
		return nil, err
	}

	out := make([][]Neighbor, rows)
	if rows == 0 {
		return out, ctx.Err()
	}

	*workers = min(idx.opts.workers, rows)
	chunk := (rows + *workers - 1) / *workers
	ctrl := idx.opts.controller

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < rows; lo += chunk {
		hi := min(lo+chunk, rows)

		g.Go(func() error {
			if err := ctrl.AcquireWorker(gctx); err != nil {
				return err
			}
			defer ctrl.ReleaseWorker()

			sc := idx.pool.Get()
			defer idx.pool.Put(sc)

			for i := lo; i < hi; i++ {
				// WaitQuery also reports cancellation when no limit is set.
				if err := ctrl.WaitQuery(gctx); err != nil {
					return err
				}
				q := queries[i*idx.dim : (i+1)*idx.dim]
				out[i] = idx.tree.Search(sc, q, k, make([]Neighbor, 0, k))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
