// Package generator turns a GenerationTarget into a generated, patched and built
// client tree. It owns the ordered step list and the per-format hooks; execution,
// state tracking and reporting are delegated to the pipeline package.
package generator
