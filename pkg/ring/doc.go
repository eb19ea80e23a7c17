// Package ring provides a bounded, concurrent-safe ring buffer.
//
// The buffer keeps the most recent N items; pushing into a full buffer
// evicts the oldest item. It backs the rolling error history and the
// sync outcome history of the rotation engine.
//
// Usage:
//
//	r := ring.New[string](20)
//	r.Push("first")
//	items := r.Items() // oldest first
//
// Thread Safety:
//
// All operations are thread-safe and guarded by a single mutex.
package ring
