// Package distance provides Minkowski distance calculations over float32 vectors.
//
// # Supported Exponents
//
//   - p = 1: Manhattan (city-block) distance
//   - p = 2: Euclidean distance
//   - p = +Inf: Chebyshev (max-coordinate) distance
//   - any other p > 0: general Minkowski distance
//
// Every per-dimension difference is taken in absolute value before it is
// raised to p, so fractional exponents are well defined.
//
// # Usage
//
//	d := distance.Minkowski(a, b, 2)
//
//	fn, err := distance.New(1.5)
//	if err != nil {
//	    return err
//	}
//	d = fn(a, b)
package distance
