// Package preflight provides readiness checks for the filesystem paths a
// calibration catalog depends on.
//
// These checks run in two contexts:
//   - "calibcat check" prints every result and exits non-zero on failure.
//   - "calibcat run" logs failed checks as warnings and continues, since
//     discovery already tolerates unreadable subtrees.
//
// Each category contributes either one directory check (its effective dir)
// or one file check per explicit files entry.
package preflight
