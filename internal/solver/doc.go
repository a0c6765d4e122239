// Package solver implements the Sequential Minimal Optimization (SMO) solver
// for the dual problems of the supported SVM formulations.
//
// The solver iteration is shared; the per-formulation behaviour is a
// Formulation with three policies:
//
//	SelectWorkingSet  pick the maximal KKT-violating pair (i, j)
//	ComputeBias       derive rho (and r for nu formulations) after convergence
//	AdjustRow         turn a raw kernel row into a row of Q
//
// # Formulations
//
//   - C-SVC:     maximal violating pair, standard bias, label-signed rows
//   - Nu-SVC:    four-quadrant pair, nu bias, label-signed rows
//   - One-class: maximal violating pair, standard bias, plain rows
//   - Eps-SVR:   maximal violating pair, standard bias, mirrored rows
//   - Nu-SVR:    four-quadrant pair, nu bias, mirrored rows
//
// Regression problems optimise 2n variables over n samples. Kernel rows are
// cached per sample (index i mod n) and the positive and negated copies are
// materialised into a scratch buffer.
//
// A solve ends in one of three states: Converged, IterationLimitReached or
// Diverged. Only Diverged is an error (ErrNumericOverflow); an iteration-capped
// solution is returned with its status for the caller to judge.
package solver
