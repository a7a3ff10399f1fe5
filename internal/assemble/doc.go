// Package assemble runs a calibration catalog end to end.
//
// Assemble discovers candidate files per category, reads the primary header
// of every distinct candidate once, filters each file per category and
// pushes the frames of accepted files into a calibdata.Data aggregate. The
// region of interest of each category is resolved against the first file
// opened for it; later files of that category must share its two leading
// dimensions. All I/O is sequential. Cancellation is observed between files.
package assemble
