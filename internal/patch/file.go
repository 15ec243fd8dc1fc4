package patch

import (
	"bytes"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

// JSONTransform edits a document in place.
type JSONTransform func(doc *Document) error

// TextTransform maps file content to new content.
type TextTransform func(content string) (string, error)

// JSON applies transform to the JSON file at path. It reports whether the file changed.
func JSON(path string, transform JSONTransform) (bool, error) {
	raw, mode, err := read(path)
	if err != nil {
		return false, err
	}

	doc, err := NewDocument(raw)
	if err != nil {
		pe := newParseError(path, raw)
		return false, errors.PatchError("file is not valid JSON").
			WithContext("path", path).
			WithCause(pe).
			Build()
	}

	if err := transform(doc); err != nil {
		return false, errors.PatchError("patch transform failed").
			WithContext("path", path).
			WithCause(err).
			Build()
	}

	return write(path, raw, doc.Bytes(), mode)
}

// Text applies transform to the text file at path. It reports whether the file changed.
func Text(path string, transform TextTransform) (bool, error) {
	raw, mode, err := read(path)
	if err != nil {
		return false, err
	}

	out, err := transform(string(raw))
	if err != nil {
		return false, errors.PatchError("patch transform failed").
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	return write(path, raw, []byte(out), mode)
}

func read(path string) ([]byte, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, 0, errors.FileSystemError("expected generated file is missing").
				WithContext("path", path).
				WithCause(err).
				Build()
		}
		return nil, 0, errors.WrapError(err, errors.CategoryFileSystem, "cannot stat file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.WrapError(err, errors.CategoryFileSystem, "cannot read file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return raw, info.Mode().Perm(), nil
}

// write replaces path with out unless it equals the original content.
func write(path string, original, out []byte, mode fs.FileMode) (bool, error) {
	if bytes.Equal(original, out) {
		return false, nil
	}
	if err := WriteFileAtomic(path, out, mode); err != nil {
		return false, errors.WrapError(err, errors.CategoryFileSystem, "cannot write patched file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return true, nil
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it into place.
func WriteFileAtomic(path string, data []byte, mode fs.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
