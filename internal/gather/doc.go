// Package gather computes which header keywords a configuration needs and
// reads them from each candidate file with a single header read per file.
package gather
