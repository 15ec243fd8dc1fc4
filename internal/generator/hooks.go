package generator

import (
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/clientgen/internal/foundation/errors"
)

// Hooks selects the format-specific steps of a pipeline. Steps shared by every
// npm-based format are always present.
type Hooks struct {
	Name string
	// RenameDeprecatedSymbol rewrites OpaqueToken to InjectionToken in variables.ts.
	RenameDeprecatedSymbol bool
	// InjectAPIModule writes api.module.ts, re-exports it and adds .npmignore.
	InjectAPIModule bool
}

var (
	hooksMu sync.RWMutex
	hooks   = map[string]Hooks{}
)

// RegisterHooks adds a hook set. The first registration for a name wins.
func RegisterHooks(h Hooks) {
	if h.Name == "" {
		return
	}
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if _, ok := hooks[h.Name]; !ok {
		hooks[h.Name] = h
	}
}

// LookupHooks returns the hook set registered under name.
func LookupHooks(name string) (Hooks, error) {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	h, ok := hooks[name]
	if !ok {
		return Hooks{}, errors.ConfigError("unknown hook set").
			WithContext("hooks", name).
			WithContext("available", strings.Join(hookNamesLocked(), ",")).
			Build()
	}
	return h, nil
}

// HookNames lists registered hook sets in sorted order.
func HookNames() []string {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return hookNamesLocked()
}

func hookNamesLocked() []string {
	names := make([]string, 0, len(hooks))
	for n := range hooks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterHooks(Hooks{Name: "angular2", RenameDeprecatedSymbol: true, InjectAPIModule: true})
	RegisterHooks(Hooks{Name: "typescript"})
}
