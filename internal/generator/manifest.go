package generator

import (
	"strings"

	"git.home.luguber.info/inful/clientgen/internal/config"
	"git.home.luguber.info/inful/clientgen/internal/patch"
)

const (
	typingsInstallPrefix = "typings install && "
	prepublishCommand    = "npm run build"
	apiModuleExport      = "export * from './api.module';"
)

// tsconfigLib is the compilerOptions.lib set required by the InjectionToken API.
var tsconfigLib = []string{"es2015", "es2015.iterable", "dom"}

// fixBuildScripts removes the typings bootstrap from package.json scripts and
// builds the package before it is published.
func fixBuildScripts(doc *patch.Document) error {
	for _, k := range []string{"postInstall", "postinstall"} {
		if err := doc.Delete(patch.Key("scripts", k)); err != nil {
			return err
		}
	}
	build := patch.Key("scripts", "build")
	if cmd, err := doc.String(build); err == nil && strings.Contains(cmd, typingsInstallPrefix) {
		if err := doc.Set(build, strings.Replace(cmd, typingsInstallPrefix, "", 1)); err != nil {
			return err
		}
	}
	return doc.Set(patch.Key("scripts", "prepublishOnly"), prepublishCommand)
}

// fixTSConfig drops typings excludes, lets the package build in place and pins lib.
func fixTSConfig(doc *patch.Document) error {
	excl, err := doc.Strings("exclude")
	if err != nil {
		return err
	}
	if excl != nil {
		kept := make([]string, 0, len(excl))
		for _, e := range excl {
			if !strings.HasPrefix(e, "typings/") {
				kept = append(kept, e)
			}
		}
		if len(kept) != len(excl) {
			if err := doc.Set("exclude", kept); err != nil {
				return err
			}
		}
	}
	if err := doc.Delete(patch.Key("compilerOptions", "outDir")); err != nil {
		return err
	}
	return doc.Set(patch.Key("compilerOptions", "lib"), tsconfigLib)
}

// setRepository points the manifest repository field at repo.
func setRepository(repo config.Repository) patch.JSONTransform {
	return func(doc *patch.Document) error {
		if err := doc.Set(patch.Key("repository", "type"), repo.Type); err != nil {
			return err
		}
		return doc.Set(patch.Key("repository", "url"), repo.URL)
	}
}

// updatePeers overwrites peerDependencies entries that are already declared.
// Dependencies not listed as peers are never added.
func updatePeers(deps config.DependencyVersionMap) patch.JSONTransform {
	return func(doc *patch.Document) error {
		declared := make(map[string]bool)
		for _, k := range doc.Keys("peerDependencies") {
			declared[k] = true
		}
		for _, d := range deps.Sorted() {
			if !declared[d.Name] {
				continue
			}
			if err := doc.Set(patch.Key("peerDependencies", d.Name), d.Version); err != nil {
				return err
			}
		}
		return nil
	}
}

// renameDeprecatedSymbol replaces whole OpaqueToken identifiers with InjectionToken.
func renameDeprecatedSymbol(content string) (string, error) {
	out, _ := patch.ReplaceIdentifier(content, "OpaqueToken", "InjectionToken")
	return out, nil
}

// appendModuleExport adds the api.module re-export unless a line already carries it.
func appendModuleExport(content string) (string, error) {
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == apiModuleExport {
			return content, nil
		}
	}
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	return content + apiModuleExport + "\n", nil
}
