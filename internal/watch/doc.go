// Package watch re-runs calibration assembly when the configuration file
// or a watched data directory changes.
//
// Events are debounced so that copying a batch of files triggers one run.
// Each run reports the directories the next round should watch, which keeps
// the watch list in step with edits to the configuration.
package watch
