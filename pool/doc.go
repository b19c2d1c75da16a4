// Package pool
// Author: momentics <momentics@gmail.com>
//
// Statically bounded buffer pool for packet storage.
// A BufferPool owns one contiguous arena split into N same-size slots and a free
// list of slot indices. Allocation of several slots is all-or-nothing, so callers
// growing a chain never observe a half-grown state.
// The pool is not safe for concurrent use; it runs on the stack's single
// run-to-completion goroutine. See bufferpool.go, arena_linux.go for details.
package pool
