// Package testutil provides testing utilities for svmgo.
//
// This package is intended for use in tests, examples and benchmarks only.
// It provides a seeded thread-safe RNG and generators for small labelled
// datasets with a known structure.
//
// # Datasets
//
//	rng := testutil.NewRNG(seed)
//	x, y := rng.GaussianClusters([][]float32{{0, 0}, {5, 5}}, 20, 0.3)
//	x, y = rng.NoisyLine(20, 2, 0, 0.01)
//	x, y = testutil.XOR()
//
// # Scoring
//
//	acc := testutil.Accuracy(predicted, y)
//	mse := testutil.MeanSquaredError(predicted, y)
package testutil
