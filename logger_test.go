package svmgo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(buf *bytes.Buffer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: level}))
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelDebug).WithParams(DefaultParams()).WithPair(1, 2).WithFold(3)

	l.LogSolve(context.Background(), 12, "converged", -1.5, 0.25, nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "solve completed", rec["msg"])
	assert.Equal(t, "C_SVC", rec["svm_type"])
	assert.Equal(t, "RBF", rec["kernel"])
	assert.Equal(t, []any{1.0, 2.0}, rec["pair"])
	assert.Equal(t, 3.0, rec["fold"])
	assert.Equal(t, 12.0, rec["iterations"])
}

func TestLogger_Levels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	l := newBufferLogger(&buf, slog.LevelDebug)

	l.LogSolve(ctx, 1000, "iteration_limit", 0, 0, nil)
	l.LogGridPoint(ctx, DefaultParams(), 0, errors.New("boom"))
	l.LogTrain(ctx, 10, 0, 0, errors.New("boom"))
	l.LogSave(ctx, "m.svm", 42, nil)

	recs := decodeLines(t, &buf)
	require.Len(t, recs, 4)
	assert.Equal(t, "WARN", recs[0]["level"])
	assert.Equal(t, "WARN", recs[1]["level"])
	assert.Equal(t, "grid point skipped", recs[1]["msg"])
	assert.Equal(t, "ERROR", recs[2]["level"])
	assert.Equal(t, "boom", recs[2]["error"])
	assert.Equal(t, "INFO", recs[3]["level"])
	assert.Equal(t, 42.0, recs[3]["bytes"])
}

func TestLogger_TrainerIntegration(t *testing.T) {
	var buf bytes.Buffer
	trainer, err := NewTrainer(DefaultParams(), WithLogger(newBufferLogger(&buf, slog.LevelInfo)))
	require.NoError(t, err)

	_, err = trainer.Train(context.Background(), xorDataset(t))
	require.NoError(t, err)

	recs := decodeLines(t, &buf)
	require.NotEmpty(t, recs)
	last := recs[len(recs)-1]
	assert.Equal(t, "training completed", last["msg"])
	assert.Equal(t, 4.0, last["samples"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
