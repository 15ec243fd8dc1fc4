// Package daemon keeps one target regenerated on a fixed interval. Runs never
// overlap; a config edit that changes the generated output triggers an
// immediate run with the new configuration.
package daemon
