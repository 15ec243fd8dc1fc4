package patch

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

const manifest = `{
  "name": "employee-client",
  "version": "1.0.3",
  "scripts": {
    "build": "typings install && tsc --outDir dist/",
    "postInstall": "npm run build"
  },
  "peerDependencies": {
    "@angular/core": "^2.0.0",
    "zone.js": "^0.6.17"
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJSONPreservesUnrelatedFieldsAndOrder(t *testing.T) {
	path := writeTemp(t, "package.json", manifest)

	changed, err := JSON(path, func(doc *Document) error {
		return doc.Delete("scripts.postInstall")
	})
	require.NoError(t, err)
	assert.True(t, changed)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := NewDocument(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "version", "scripts", "peerDependencies"}, doc.Keys(""))
	assert.Equal(t, []string{"build"}, doc.Keys("scripts"))
	assert.Equal(t, "^0.6.17", doc.Get(Key("peerDependencies", "zone.js")).String())
}

func TestJSONIdempotent(t *testing.T) {
	path := writeTemp(t, "package.json", manifest)
	transform := func(doc *Document) error {
		return doc.Set(Key("peerDependencies", "@angular/core"), "^4.0.0")
	}

	_, err := JSON(path, transform)
	require.NoError(t, err)
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	changed, err := JSON(path, transform)
	require.NoError(t, err)
	assert.False(t, changed)
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
	assert.Equal(t, "^4.0.0", gjson.GetBytes(second, Key("peerDependencies", "@angular/core")).String())
}

func TestJSONStableFormatting(t *testing.T) {
	path := writeTemp(t, "tsconfig.json", `{"compilerOptions":{"lib":["es2015","dom"],"target":"es5"}}`)

	_, err := JSON(path, func(*Document) error { return nil })
	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"compilerOptions\": {\n    "), "got %q", raw)
	assert.Equal(t, string(Format(raw)), string(raw))
}

func TestJSONParseError(t *testing.T) {
	path := writeTemp(t, "package.json", `{"name": "broken",}`)

	_, err := JSON(path, func(*Document) error { t.Fatal("transform must not run"); return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryPatch))

	var pe *ParseError
	require.True(t, stderrors.As(err, &pe))
	assert.Equal(t, path, pe.Path)
	assert.Positive(t, pe.Offset)
}

func TestJSONMissingFile(t *testing.T) {
	_, err := JSON(filepath.Join(t.TempDir(), "missing.json"), func(*Document) error { return nil })
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryFileSystem))
}

func TestJSONTransformErrorLeavesFile(t *testing.T) {
	path := writeTemp(t, "package.json", manifest)

	_, err := JSON(path, func(doc *Document) error {
		_, err := doc.String("scripts.prepublish")
		return err
	})
	require.Error(t, err)

	var se *ShapeError
	require.True(t, stderrors.As(err, &se))
	raw, _ := os.ReadFile(path)
	assert.Equal(t, manifest, string(raw))
}

func TestDocumentHelpers(t *testing.T) {
	doc, err := NewDocument([]byte(`{"exclude":["typings/a.d.ts","src/**"],"n":1}`))
	require.NoError(t, err)

	got, err := doc.Strings("exclude")
	require.NoError(t, err)
	assert.Equal(t, []string{"typings/a.d.ts", "src/**"}, got)

	missing, err := doc.Strings("files")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = doc.Strings("n")
	assert.Error(t, err)

	require.NoError(t, doc.Delete("not.there"))
	require.NoError(t, doc.Set("compilerOptions.lib", []string{"dom"}))
	assert.Equal(t, "dom", doc.Get("compilerOptions.lib.0").String())
}

func TestNewDocumentInvalid(t *testing.T) {
	_, err := NewDocument([]byte(`not json`))
	var pe *ParseError
	assert.True(t, stderrors.As(err, &pe))
}

func TestTextPatch(t *testing.T) {
	path := writeTemp(t, "index.ts", "export * from './api/api';\n")

	changed, err := Text(path, func(s string) (string, error) { return s + "export * from './api.module';\n", nil })
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = Text(path, func(s string) (string, error) { return s, nil })
	require.NoError(t, err)
	assert.False(t, changed)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "mode survives the atomic rename")

	_, err = Text(path, func(string) (string, error) { return "", stderrors.New("nope") })
	assert.True(t, errors.HasCategory(err, errors.CategoryPatch))
}

func TestReplaceIdentifier(t *testing.T) {
	src := strings.Join([]string{
		"import { OpaqueToken } from '@angular/core';",
		"export const BASE_PATH = new OpaqueToken('basePath');",
		"export const COLLECTION_FORMATS = new OpaqueToken('f');",
		"export class OpaqueToken {}",
		"export class OpaqueTokenFactory {}",
		"const _OpaqueToken = x.OpaqueToken$;",
	}, "\n")

	out, n := ReplaceIdentifier(src, "OpaqueToken", "InjectionToken")
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, strings.Count(out, "InjectionToken"))
	assert.Contains(t, out, "export class OpaqueTokenFactory {}")
	assert.Contains(t, out, "const _OpaqueToken = x.OpaqueToken$;")

	again, n := ReplaceIdentifier(out, "OpaqueToken", "InjectionToken")
	assert.Zero(t, n)
	assert.Equal(t, out, again)

	same, n := ReplaceIdentifier("abc", "", "x")
	assert.Zero(t, n)
	assert.Equal(t, "abc", same)
}
