package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "clientgen.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		assert.True(t, exists)
		assert.Equal(t, "clientgen.yaml", file)
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryConfig))
		assert.False(t, err.CanRetry())
		assert.True(t, err.IsFatal())
	})

	t.Run("Detected through wrapping", func(t *testing.T) {
		inner := PatchError("cannot parse").WithContext("path", "package.json").Build()
		wrapped := fmt.Errorf("step update_peers: %w", inner)

		classified, ok := AsClassified(wrapped)
		require.True(t, ok)
		assert.Equal(t, CategoryPatch, classified.Category())
		assert.Equal(t, CategoryPatch, GetCategory(wrapped))
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	})
}

func TestErrorBuilder(t *testing.T) {
	originalErr := errors.New("connection reset")
	err := WrapError(originalErr, CategoryDownload, "download failed").
		WithSeverity(SeverityWarning).
		WithContext("url", "https://example.com/a.jar").
		WithContext("bytes", 42).
		Build()

	assert.Equal(t, CategoryDownload, err.Category())
	assert.Equal(t, SeverityWarning, err.Severity())
	assert.ErrorIs(t, err, originalErr)
	assert.Equal(t, "[download:warning] download failed bytes=42 url=https://example.com/a.jar: connection reset", err.Error())
}

func TestErrorContextMerge(t *testing.T) {
	base := ErrorContext{"a": 1, "b": 2}
	merged := base.Merge(ErrorContext{"b": 3})
	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 3, merged["b"])
	assert.Equal(t, 2, base["b"], "merge must not mutate the receiver")

	var empty ErrorContext
	assert.Equal(t, base, empty.Merge(base))
}

func TestWithContextCopies(t *testing.T) {
	orig := GitError("push failed").Build()
	withCmd := orig.WithContext("command", "git push")

	_, ok := orig.Context().Get("command")
	assert.False(t, ok)
	cmd, _ := withCmd.Context().GetString("command")
	assert.Equal(t, "git push", cmd)
	assert.True(t, errors.Is(withCmd, orig))
}
