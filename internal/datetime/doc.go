// Package datetime parses the free-text timestamps found in FITS headers and
// calibration configuration files.
//
// Some instruments write four fractional-second digits where only three are
// representable. Parse retries such values with the last character dropped,
// which truncates rather than rounds, so header values and configuration
// values land on the same millisecond.
package datetime
