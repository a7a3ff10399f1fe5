// Package main hosts the calibcat CLI entrypoint and command graph.
//
// The Cobra-based command tree loads a calibration catalog configuration,
// then either runs the full assembly (run, watch) or stops after one stage
// so the catalog can be debugged: discover lists candidate files, keywords
// lists the header keywords filters will read, check validates the file and
// the paths it names. init scaffolds a sample configuration.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
