// Package calibdata accumulates calibration frames into per-category,
// per-exposure-time running statistics.
//
// Each bucket keeps the frame count and a per-pixel running mean and
// variance (Welford's update), so memory stays constant in the number of
// frames. Categories remember the light sources they combine; Prune drops
// buckets, categories and sources that ended up with no frames.
package calibdata
