// Package entry owns the per-key cache record (Entry) and its keyed index
// (Cache). An Entry is a small reducer over fetch/success/error actions; it
// is the only writer of its own State, wraps its fetches in a
// retry.Retryer, and applies structural sharing (ReplaceData) so untouched
// subtrees of a value stay reference-stable across fetches. Cache maps key
// hashes to Entries, fans out focus/online events, and runs garbage
// collection once an entry has no observers and sits idle past its
// cacheTime.
package entry
