package errors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error", err: nil, expected: 0},
		{name: "validation", err: ValidationError("unknown target").Build(), expected: 2},
		{name: "config", err: ConfigError("bad config").Build(), expected: 7},
		{name: "download", err: DownloadError("truncated").Build(), expected: 8},
		{name: "git", err: GitError("push rejected").Build(), expected: 8},
		{name: "process", err: ProcessError("npm install failed").Build(), expected: 11},
		{name: "timeout", err: TimeoutError("java timed out").Build(), expected: 11},
		{name: "patch", err: PatchError("invalid json").Build(), expected: 11},
		{name: "internal", err: InternalError("boom").Build(), expected: 10},
		{name: "unclassified", err: errors.New("unknown error"), expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var logBuf, out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logBuf, nil))
	adapter := NewCLIErrorAdapter(true, logger)
	adapter.out = &out
	var code int
	adapter.exit = func(c int) { code = c }

	err := ProcessError("command failed").
		WithContext("step", "build").
		WithContext("command", "npm run build").
		WithCause(errors.New("exit status 2")).
		Build()
	adapter.HandleError(err)

	assert.Equal(t, 11, code)
	assert.Contains(t, out.String(), "command=npm run build")
	assert.Contains(t, out.String(), "exit status 2")
	assert.Contains(t, logBuf.String(), "step=build")
	assert.Contains(t, logBuf.String(), "category=process")
}

func TestCLIErrorAdapter_HandleNil(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, nil)
	called := false
	adapter.exit = func(int) { called = true }
	adapter.HandleError(nil)
	assert.False(t, called)
}
