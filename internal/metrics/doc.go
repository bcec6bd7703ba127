// Package metrics provides the metrics hooks of the generation pipeline.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so no nil checks are needed:
//
//	orch := generator.New(generator.WithRecorder(metrics.NoopRecorder{}))
//
// The CLI activates PrometheusRecorder when --metrics-file is given and dumps
// the registry in the Prometheus text format after the run:
//
//	rec := metrics.NewPrometheusRecorder(prometheus.NewRegistry())
//	defer rec.WriteTextfile(path)
package metrics
