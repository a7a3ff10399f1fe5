// Package rawtree models the generic settings tree produced by configuration
// loaders before any typed interpretation happens.
//
// A Node is a tagged union over null, string, integer, float, boolean,
// timestamp, complex, list and ordered mapping values. LoadYAML, LoadTOML and
// LoadJSON build trees from their respective text formats so the config
// parser sees one shape regardless of where settings came from.
package rawtree
