// Package message
// Author: momentics <momentics@gmail.com>
//
// Packet buffers for a low-power mesh stack.
//
// A Message is a variable-length packet stored in a chain of fixed-size slots
// taken from a pool.BufferPool, plus a metadata record. Messages live in a fixed
// arena owned by a Pool; queue linkage is expressed as arena indices together
// with an explicit tag naming the container that currently holds the message.
//
// Two queue disciplines move messages between layers: MessageQueue (FIFO) and
// PriorityQueue (priority-major, FIFO-minor). Both are created by, and
// registered with, the Pool so that it can reclaim buffers from low priority
// queued traffic when the slot array is exhausted.
//
// Nothing in this package is safe for concurrent use. All calls are expected to
// come from the single goroutine running the protocol stack.
package message
