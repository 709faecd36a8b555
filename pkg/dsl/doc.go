// Package dsl provides a fluent builder for constructing workflow graphs in
// code, as an alternative to the YAML pipeline format in pkg/schema.
package dsl
