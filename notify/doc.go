// Package notify implements the batching/deferred-delivery layer every
// other package in asyncache routes its listener and cache-event
// notifications through.
//
// Two levers compose: Batch groups everything scheduled during a
// synchronous block of work so listeners see one coalesced wave of
// notifications instead of one per intermediate state change, and Schedule
// defers a single callback to the async worker when called outside a
// Batch scope. Both dispatchers are replaceable so an embedding UI
// framework can fold notification delivery into its own batched-update
// primitive.
package notify
