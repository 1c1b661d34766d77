// Package mutation implements the one-shot write lifecycle: Mutation runs
// a single mutationFn through the same retry.Retryer entry uses, Cache
// tracks every mutation built and resumes paused ones strictly FIFO on
// reconnect, and Observer projects one mutation's state plus boolean
// convenience flags to a subscriber.
package mutation
