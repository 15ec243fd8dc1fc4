// Package build is the canonical execution path for generation runs. The CLI and
// the daemon both route through Service, which wires configuration into the
// generator, the git publisher, run history and metrics.
package build
