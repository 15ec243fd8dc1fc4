package generator

import (
	_ "embed"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
	"git.home.luguber.info/inful/clientgen/internal/logfields"
)

//go:embed assets/api.module.ts
var defaultAPIModule []byte

//go:embed assets/npmignore
var defaultNPMIgnore []byte

// templateSet holds the bytes injected into the generated tree.
type templateSet struct {
	apiModule []byte
	npmIgnore []byte
}

// loadTemplates resolves each template from its configured override path, falling
// back to the embedded default when no override is set.
func loadTemplates(t config.Templates) (templateSet, error) {
	apiModule, err := readTemplate("api_module", t.APIModule, defaultAPIModule)
	if err != nil {
		return templateSet{}, err
	}
	npmIgnore, err := readTemplate("npmignore", t.NPMIgnore, defaultNPMIgnore)
	if err != nil {
		return templateSet{}, err
	}
	return templateSet{apiModule: apiModule, npmIgnore: npmIgnore}, nil
}

func readTemplate(kind, path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	// #nosec G304 -- template path comes from the operator's config file
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError("cannot read template override").
			WithContext("template", kind).
			WithContext("path", path).
			WithCause(err).
			Build()
	}
	slog.Debug("Loaded template override", slog.String("template", kind), logfields.Path(path))
	return b, nil
}
