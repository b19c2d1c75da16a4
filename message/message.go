// File: message/message.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Message metadata record and accessors.

package message

import "github.com/momentics/meshbuf/api"

const noLink int32 = -1

type queueKind uint8

const (
	notQueued queueKind = iota
	inFIFO
	inPriority
)

// queueTag names the container currently holding a message.
type queueTag struct {
	kind  queueKind
	id    int
	class api.Priority // meaningful for inPriority only
}

// Message is a packet stored as a chain of pool slots plus metadata.
// Handles point into the Pool arena and are invalid after Free.
type Message struct {
	pool  *Pool
	index int32
	inUse bool

	chain    []api.BufferID
	reserved int
	length   int
	offset   int

	typ      api.MessageType
	subType  api.SubType
	priority api.Priority

	next, prev int32
	queue      queueTag
	enqueueSeq uint64

	directTx     bool
	txSuccess    bool
	doNotEvict   bool
	linkSecurity bool

	childMask   ChildMask
	rss         RSSAverager
	datagramTag uint32
	timeout     uint8
	meshDest    uint16
	panID       uint16
	channel     uint8

	timeSync          bool
	timeSyncSeq       uint8
	networkTimeOffset int64
}

// Pool returns the pool the message was allocated from.
func (m *Message) Pool() *Pool { return m.pool }

// Free returns the message and its buffers to the pool.
func (m *Message) Free() { m.pool.Free(m) }

// Length returns the number of payload bytes.
func (m *Message) Length() int { return m.length }

// Reserved returns the header bytes still available for Prepend.
func (m *Message) Reserved() int { return m.reserved }

// BufferCount returns the number of slots in the chain.
func (m *Message) BufferCount() int { return len(m.chain) }

// Offset returns the read/parse cursor.
func (m *Message) Offset() int { return m.offset }

// SetOffset moves the cursor to an absolute payload position.
func (m *Message) SetOffset(offset int) error {
	if offset < 0 || offset > m.length {
		return api.ErrInvalidArgs.WithContext("offset", offset).WithContext("length", m.length)
	}
	m.offset = offset
	return nil
}

// MoveOffset shifts the cursor by delta, which may be negative.
func (m *Message) MoveOffset(delta int) error {
	return m.SetOffset(m.offset + delta)
}

// Type returns what the message carries.
func (m *Message) Type() api.MessageType { return m.typ }

// SetType changes what the message carries.
func (m *Message) SetType(t api.MessageType) { m.typ = t }

// SubType returns the protocol purpose of the message.
func (m *Message) SubType() api.SubType { return m.subType }

// SetSubType records the protocol purpose of the message.
func (m *Message) SetSubType(s api.SubType) { m.subType = s }

// IsSubTypeMLE reports whether the subtype is one of the MLE family.
func (m *Message) IsSubTypeMLE() bool { return m.subType.IsMLE() }

// Priority returns the service level used for queueing and reclamation.
func (m *Message) Priority() api.Priority { return m.priority }

// DatagramTag returns the fragmentation tag, zero when unset.
func (m *Message) DatagramTag() uint32 { return m.datagramTag }

// SetDatagramTag records the fragmentation tag.
func (m *Message) SetDatagramTag(tag uint32) { m.datagramTag = tag }

// MeshDest returns the RLOC16 of the mesh-header destination.
func (m *Message) MeshDest() uint16 { return m.meshDest }

// SetMeshDest records the RLOC16 of the mesh-header destination.
func (m *Message) SetMeshDest(rloc16 uint16) { m.meshDest = rloc16 }

// PanID returns the IEEE 802.15.4 destination PAN.
func (m *Message) PanID() uint16 { return m.panID }

// SetPanID records the destination PAN.
func (m *Message) SetPanID(id uint16) { m.panID = id }

// Channel returns the transmit channel.
func (m *Message) Channel() uint8 { return m.channel }

// SetChannel records the transmit channel.
func (m *Message) SetChannel(ch uint8) { m.channel = ch }

// Timeout returns the remaining reassembly lifetime in seconds.
func (m *Message) Timeout() uint8 { return m.timeout }

// SetTimeout sets the reassembly lifetime in seconds.
func (m *Message) SetTimeout(seconds uint8) { m.timeout = seconds }

// DirectTransmission reports whether the message awaits direct transmission.
func (m *Message) DirectTransmission() bool { return m.directTx }

// SetDirectTransmission marks the message for direct transmission.
func (m *Message) SetDirectTransmission() { m.directTx = true }

// ClearDirectTransmission clears the direct transmission mark.
func (m *Message) ClearDirectTransmission() { m.directTx = false }

// TxSuccess reports whether the last transmission was acknowledged.
func (m *Message) TxSuccess() bool { return m.txSuccess }

// SetTxSuccess records the outcome of the last transmission.
func (m *Message) SetTxSuccess(ok bool) { m.txSuccess = ok }

// DoNotEvict reports whether reclamation must skip this message.
func (m *Message) DoNotEvict() bool { return m.doNotEvict }

// SetDoNotEvict shields the message from reclamation.
func (m *Message) SetDoNotEvict(v bool) { m.doNotEvict = v }

// LinkSecurityEnabled reports whether link-layer security applies.
func (m *Message) LinkSecurityEnabled() bool { return m.linkSecurity }

// SetLinkSecurityEnabled toggles link-layer security.
func (m *Message) SetLinkSecurityEnabled(v bool) { m.linkSecurity = v }

// IsTimeSync reports whether the message carries a time sync header.
func (m *Message) IsTimeSync() bool { return m.timeSync }

// SetTimeSync marks the message as carrying a time sync header.
func (m *Message) SetTimeSync(v bool) { m.timeSync = v }

// TimeSyncSeq returns the time sync sequence number.
func (m *Message) TimeSyncSeq() uint8 { return m.timeSyncSeq }

// SetTimeSyncSeq records the time sync sequence number.
func (m *Message) SetTimeSyncSeq(seq uint8) { m.timeSyncSeq = seq }

// NetworkTimeOffset returns the offset to network time in microseconds.
func (m *Message) NetworkTimeOffset() int64 { return m.networkTimeOffset }

// SetNetworkTimeOffset records the offset to network time in microseconds.
func (m *Message) SetNetworkTimeOffset(d int64) { m.networkTimeOffset = d }

// DecrementTimeout counts the reassembly timer down by one, stopping at zero.
func (m *Message) DecrementTimeout() {
	if m.timeout > 0 {
		m.timeout--
	}
}

// AddRSS folds a received signal strength sample (dBm) into the average.
func (m *Message) AddRSS(rss int8) error { return m.rss.Add(rss) }

// AverageRSS returns the averaged signal strength or RSSInvalid.
func (m *Message) AverageRSS() int8 { return m.rss.Average() }

// RSSAverager exposes the averager for inspection.
func (m *Message) RSSAverager() RSSAverager { return m.rss }

// SetPriority changes the priority level. A message held by a PriorityQueue is
// moved to the tail of its new class in the same step.
func (m *Message) SetPriority(p api.Priority) error {
	if !p.Valid() {
		return api.ErrInvalidArgs.WithContext("priority", p)
	}
	if m.priority == p {
		return nil
	}
	if m.queue.kind == inPriority {
		pq := m.pool.prios[m.queue.id]
		pq.unlink(m)
		m.priority = p
		pq.link(m)
		return nil
	}
	m.priority = p
	return nil
}

// MessageQueue returns the FIFO holding the message, or nil.
func (m *Message) MessageQueue() *MessageQueue {
	if m.queue.kind != inFIFO {
		return nil
	}
	return m.pool.fifos[m.queue.id]
}

// PriorityQueue returns the priority queue holding the message, or nil.
func (m *Message) PriorityQueue() *PriorityQueue {
	if m.queue.kind != inPriority {
		return nil
	}
	return m.pool.prios[m.queue.id]
}

// IsQueued reports whether any queue holds the message.
func (m *Message) IsQueued() bool { return m.queue.kind != notQueued }

// Next returns the message following m in its queue, or nil at the end.
func (m *Message) Next() *Message {
	switch m.queue.kind {
	case inFIFO:
		if m.index == m.pool.fifos[m.queue.id].tail {
			return nil
		}
	case inPriority:
		if m == m.pool.prios[m.queue.id].Tail() {
			return nil
		}
	default:
		return nil
	}
	return m.pool.at(m.next)
}
