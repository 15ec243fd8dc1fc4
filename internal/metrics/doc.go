// Package metrics records pipeline step and run metrics.
//
// Components receive a Recorder and default to NoopRecorder, so metric calls need
// no nil checks. PrometheusRecorder backs the interface with client_golang
// collectors registered on a private registry; one-shot CLI runs export it with
// WriteTextfile for the node_exporter textfile collector.
//
// Observer adapts a Recorder to pipeline.Observer:
//
//	rec := metrics.NewPrometheusRecorder(reg)
//	gen, _ := generator.New(target, runner, cache, generator.WithObserver(metrics.NewObserver(rec)))
package metrics
