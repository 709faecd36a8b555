// Package schema defines the declarative YAML pipeline format: state fields
// with their update policies, nodes by kind, edges with optional conditions,
// and an optional aggregate-report block. A parsed Pipeline compiles into a
// domain.Schema and a domain.Graph via a node-kind registry.
package schema
