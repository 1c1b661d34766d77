// Package observe provides observability primitives for query fetch execution.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into the client facade's
// fetch/mutation pipeline via Middleware.
package observe
