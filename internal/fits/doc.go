// Package fits is the file-format boundary of calibcat.
//
// It defines the header keyword token grammar shared with configuration
// parsing, reads primary headers for keyword gathering, and opens image
// units to expose their dimensions and rectangular pixel regions. FileReader
// implements Reader on top of github.com/astrogo/fitsio; tests substitute an
// in-memory Reader.
package fits
