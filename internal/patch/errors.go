package patch

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
)

// ParseError reports a file that is not valid JSON.
type ParseError struct {
	Path   string
	Offset int64
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("%s: invalid JSON at offset %d: %v", e.Path, e.Offset, e.Err)
	}
	return fmt.Sprintf("%s: invalid JSON: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError re-decodes raw with encoding/json to report where parsing stopped.
func newParseError(path string, raw []byte) *ParseError {
	var v any
	err := json.Unmarshal(raw, &v)
	if err == nil {
		err = stderrors.New("document rejected by validator")
	}
	pe := &ParseError{Path: path, Err: err}
	var syn *json.SyntaxError
	if stderrors.As(err, &syn) {
		pe.Offset = syn.Offset
	}
	return pe
}

// ShapeError reports a value that a transform required but did not find.
type ShapeError struct {
	Path string
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("expected %s at %q", e.Want, e.Path)
}
