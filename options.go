package svmgo

import (
	"log/slog"
	"runtime"

	"github.com/hupe1980/svmgo/internal/cache"
	"github.com/hupe1980/svmgo/kernel"
	"github.com/hupe1980/svmgo/resource"
)

// DefaultSeed seeds the cross-validation shuffle unless WithSeed is given.
const DefaultSeed int64 = -1

// KernelFactory builds the kernel evaluator for a set of kernel parameters.
// kernel.New is the default CPU implementation.
type KernelFactory func(p kernel.Params) (kernel.Evaluator, error)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	resource         *resource.Controller
	parallelism      int
	kernelFactory    KernelFactory
	cacheMinBytes    int64
	cacheMaxBytes    int64
	seed             int64
	strict           bool
}

// Option configures a Trainer, or a Model loaded from storage.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := svmgo.NewJSONLogger(slog.LevelInfo)
//	tr, _ := svmgo.NewTrainer(params, svmgo.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &svmgo.BasicMetricsCollector{}
//	tr, _ := svmgo.NewTrainer(params, svmgo.WithMetricsCollector(metrics))
//	// ... train ...
//	stats := metrics.GetStats()
//	fmt.Printf("Sub-problems: %d, avg iterations: %d\n", stats.SolveCount, stats.SolveAvgIterations)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithResourceController shares memory, worker and IO budgets across
// trainers. Row caches are charged against its memory limit, every binary
// sub-problem holds one of its worker slots, and Save, Encode and LoadModel
// wait for its IO limit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithParallelism bounds the number of class-pair sub-problems and
// cross-validation folds trained concurrently. Values below 1 select 1.
// Defaults to runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = max(n, 1)
	}
}

// WithKernelEvaluator replaces the CPU kernel evaluator, e.g. with an
// accelerator-backed implementation. Results must match the reference
// formulas within floating-point tolerance.
func WithKernelEvaluator(f KernelFactory) Option {
	return func(o *options) {
		o.kernelFactory = f
	}
}

// WithCacheBudget sets the lower and upper byte bounds of each sub-problem's
// kernel row cache. Zero keeps the respective default.
func WithCacheBudget(minBytes, maxBytes int64) Option {
	return func(o *options) {
		if minBytes > 0 {
			o.cacheMinBytes = minBytes
		}
		if maxBytes > 0 {
			o.cacheMaxBytes = maxBytes
		}
	}
}

// WithSeed seeds the cross-validation shuffle of TrainAuto.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithStrictConvergence makes training fail with ErrIterationLimit when a
// sub-problem stops at the iteration cap instead of converging.
// By default such models are kept and report Converged() == false.
func WithStrictConvergence() Option {
	return func(o *options) {
		o.strict = true
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		parallelism:      runtime.GOMAXPROCS(0),
		kernelFactory:    kernel.New,
		cacheMinBytes:    cache.DefaultMinBytes,
		cacheMaxBytes:    cache.DefaultMaxBytes,
		seed:             DefaultSeed,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.kernelFactory == nil {
		o.kernelFactory = kernel.New
	}
	if o.cacheMaxBytes < o.cacheMinBytes {
		o.cacheMaxBytes = o.cacheMinBytes
	}
	return o
}

func (o *options) cacheConfig() cache.RowConfig {
	return cache.RowConfig{
		MinBytes:   o.cacheMinBytes,
		MaxBytes:   o.cacheMaxBytes,
		Controller: o.resource,
	}
}
