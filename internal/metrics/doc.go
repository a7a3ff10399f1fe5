// Package metrics provides per-run Prometheus counters for calibcat.
//
// A run owns its registry. The CLI writes it out in the node-exporter
// textfile format once the run completes.
package metrics
