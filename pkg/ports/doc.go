// Package ports defines the boundary interfaces of the engine: the external
// collaborators node bodies call into (LLM, search, notifier), the progress
// sink, and the run store. Adapters live under pkg/adapters; the engine core
// only ever depends on these interfaces.
package ports
