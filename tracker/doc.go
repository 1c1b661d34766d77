// Package tracker implements the two boolean environment signals the
// client reacts to: window-focus and network-online state. Each is a
// subscriber fan-out over a mutable boolean, with a pluggable event source
// so an embedding environment can drive it from real OS/runtime signals
// instead of manual Set calls.
package tracker
