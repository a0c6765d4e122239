// Package kernel provides the kernel functions used to train and evaluate
// support vector machines.
//
// A kernel Evaluator computes the similarity between one query vector and a
// batch of vectors laid out row-major in a single flat slice:
//
//	ev, err := kernel.New(kernel.Params{Type: kernel.RBF, Gamma: 0.5})
//	if err != nil { ... }
//	out := make([]float32, n)
//	ev.Calc(query, batch, dim, out)
//
// # Kernel Types
//
//   - Linear: x·y
//   - Poly: (gamma·x·y + coef0)^degree
//   - RBF: exp(-gamma·‖x-y‖²)
//   - Sigmoid: tanh(gamma·x·y + coef0)
//   - Chi2: exp(-gamma·Σ (x_k-y_k)²/(x_k+y_k))
//   - Intersection: Σ min(x_k, y_k)
//
// Every evaluator clamps its outputs to MaxValue so that products formed by
// the solver cannot overflow float32.
//
// Accelerated backends can be plugged into training and prediction by
// implementing Evaluator. They must agree with the CPU evaluator within
// floating-point tolerance.
package kernel
