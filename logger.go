package svmgo

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with svmgo-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithParams adds the SVM and kernel type to the logger.
func (l *Logger) WithParams(p Params) *Logger {
	return &Logger{
		Logger: l.Logger.With("svm_type", p.Type.String(), "kernel", p.KernelType.String()),
	}
}

// WithPair adds a class pair to the logger.
func (l *Logger) WithPair(classI, classJ int) *Logger {
	return &Logger{
		Logger: l.Logger.With("pair", []int{classI, classJ}),
	}
}

// WithFold adds a cross-validation fold index to the logger.
func (l *Logger) WithFold(fold int) *Logger {
	return &Logger{
		Logger: l.Logger.With("fold", fold),
	}
}

// LogTrain logs a completed training run.
func (l *Logger) LogTrain(ctx context.Context, samples, supportVectors int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"samples", samples,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training completed",
			"samples", samples,
			"support_vectors", supportVectors,
			"elapsed", elapsed,
		)
	}
}

// LogSolve logs the outcome of one sub-problem.
// A solve that stopped at the iteration cap is logged as a warning.
func (l *Logger) LogSolve(ctx context.Context, iterations int, status string, obj, rho float64, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "solve failed",
			"iterations", iterations,
			"status", status,
			"error", err,
		)
	case status != "converged":
		l.WarnContext(ctx, "solve stopped before convergence",
			"iterations", iterations,
			"status", status,
			"obj", obj,
			"rho", rho,
		)
	default:
		l.DebugContext(ctx, "solve completed",
			"iterations", iterations,
			"obj", obj,
			"rho", rho,
		)
	}
}

// LogCrossValidation logs one cross-validation fold.
func (l *Logger) LogCrossValidation(ctx context.Context, fold, trainCount, testCount int, foldError float64, err error) {
	if err != nil {
		l.WarnContext(ctx, "cross-validation fold failed",
			"fold", fold,
			"train", trainCount,
			"test", testCount,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "cross-validation fold completed",
			"fold", fold,
			"train", trainCount,
			"test", testCount,
			"fold_error", foldError,
		)
	}
}

// LogGridPoint logs the evaluation of one hyperparameter grid point.
// A failed grid point is skipped, so it is logged as a warning.
func (l *Logger) LogGridPoint(ctx context.Context, p Params, validationError float64, err error) {
	if err != nil {
		l.WarnContext(ctx, "grid point skipped",
			"C", p.C,
			"gamma", p.Gamma,
			"p", p.P,
			"nu", p.Nu,
			"coef0", p.Coef0,
			"degree", p.Degree,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "grid point evaluated",
			"C", p.C,
			"gamma", p.Gamma,
			"p", p.P,
			"nu", p.Nu,
			"coef0", p.Coef0,
			"degree", p.Degree,
			"validation_error", validationError,
		)
	}
}

// LogPredict logs a prediction batch.
func (l *Logger) LogPredict(ctx context.Context, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "predict failed",
			"count", count,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "predict completed",
			"count", count,
		)
	}
}

// LogSave logs a model write.
func (l *Logger) LogSave(ctx context.Context, name string, size int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model saved",
			"name", name,
			"bytes", size,
		)
	}
}

// LogLoad logs a model read.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "model load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "model loaded",
			"name", name,
		)
	}
}
