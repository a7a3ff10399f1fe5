// Package config models and parses calibcat's calibration catalog
// configuration.
//
// A Config holds global settings, global header filters and an ordered set
// of categories. Each Category may override any shared setting; a field left
// unset reads through to the owning Config at access time, so later changes
// to the Config (such as an ROI overwrite) are visible to every category that
// inherits. Filters never inherit: callers merge global and category filters
// explicitly.
//
// Parse turns a rawtree mapping into a validated Config. Keys that look like
// header keywords become filters; lower-case keys must name a known setting.
// Always obtain configurations through Parse or Load so downstream code sees
// normalized paths, typed values and consistent errors.
package config
