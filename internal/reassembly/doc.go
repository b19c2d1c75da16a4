// Package reassembly
// Author: momentics <momentics@gmail.com>
//
// Fragment reassembly list for inbound datagrams. Partially reassembled
// messages wait in a FIFO keyed by datagram tag; a once-per-second Tick counts
// their timeouts down and frees the ones that expire.
package reassembly
