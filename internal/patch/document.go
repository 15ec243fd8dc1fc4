package patch

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

var prettyOptions = &pretty.Options{Width: 0, Prefix: "", Indent: "  ", SortKeys: false}

// Document is a mutable view of a JSON file addressed with gjson-style paths.
// Use Key to build paths from raw key names.
type Document struct {
	raw []byte
}

// NewDocument wraps raw JSON. It returns a *ParseError when raw is not valid JSON.
func NewDocument(raw []byte) (*Document, error) {
	if !gjson.ValidBytes(raw) {
		return nil, newParseError("", raw)
	}
	return &Document{raw: append([]byte(nil), raw...)}, nil
}

// Key joins raw key names into an escaped path, so package names such as
// "zone.js" or "@angular/core" address a single key.
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = gjson.Escape(p)
	}
	return strings.Join(escaped, ".")
}

// Get returns the value at path. The empty path addresses the whole document.
func (d *Document) Get(path string) gjson.Result {
	if path == "" {
		path = "@this"
	}
	return gjson.GetBytes(d.raw, path)
}

// Exists reports whether path is present.
func (d *Document) Exists(path string) bool {
	return d.Get(path).Exists()
}

// String returns the string at path or a *ShapeError when it is missing or not a string.
func (d *Document) String(path string) (string, error) {
	r := d.Get(path)
	if !r.Exists() || r.Type != gjson.String {
		return "", &ShapeError{Path: path, Want: "string"}
	}
	return r.String(), nil
}

// Strings returns the string elements of the array at path. Missing paths yield nil.
func (d *Document) Strings(path string) ([]string, error) {
	r := d.Get(path)
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsArray() {
		return nil, &ShapeError{Path: path, Want: "array"}
	}
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out, nil
}

// Keys returns the member names of the object at path in document order.
func (d *Document) Keys(path string) []string {
	r := d.Get(path)
	if !r.IsObject() {
		return nil
	}
	var keys []string
	r.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

// Set stores value at path, creating intermediate objects as needed.
func (d *Document) Set(path string, value any) error {
	out, err := sjson.SetBytes(d.raw, path, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	d.raw = out
	return nil
}

// Delete removes path. Deleting a missing path is a no-op.
func (d *Document) Delete(path string) error {
	if !d.Exists(path) {
		return nil
	}
	out, err := sjson.DeleteBytes(d.raw, path)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	d.raw = out
	return nil
}

// Bytes returns the formatted document.
func (d *Document) Bytes() []byte {
	return Format(d.raw)
}

// Format renders JSON with two-space indentation, preserving key order.
func Format(raw []byte) []byte {
	return pretty.PrettyOptions(raw, prettyOptions)
}
