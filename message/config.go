// File: message/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package message

import "github.com/momentics/meshbuf/api"

// MaxLength bounds reserved header plus payload of a single message.
const MaxLength = 0xffff

// Config carries the pool-wide parameters fixed at startup.
type Config struct {
	NumBuffers     int // total slots in the pool
	BufferSize     int // bytes per slot including bookkeeping
	BufferOverhead int // bookkeeping bytes carried by every slot
	HeadOverhead   int // metadata bytes carried by the first slot of a message
	ChildMaskBits  int // width of the per-destination pending vector

	DefaultPriority     api.Priority
	DefaultLinkSecurity bool
}

// DefaultConfig mirrors the stock build of the stack.
func DefaultConfig() Config {
	return Config{
		NumBuffers:          44,
		BufferSize:          128,
		BufferOverhead:      8,
		HeadOverhead:        48,
		ChildMaskBits:       10,
		DefaultPriority:     api.PriorityNormal,
		DefaultLinkSecurity: true,
	}
}

// BufferDataSize is the payload capacity of a non-head slot.
func (c Config) BufferDataSize() int { return c.BufferSize - c.BufferOverhead }

// HeadDataSize is the payload capacity of the head slot.
func (c Config) HeadDataSize() int { return c.BufferDataSize() - c.HeadOverhead }

// BuffersFor returns the minimum chain length able to hold total bytes.
func (c Config) BuffersFor(total int) int {
	head := c.HeadDataSize()
	if total <= head {
		return 1
	}
	body := c.BufferDataSize()
	return 1 + (total-head+body-1)/body
}

// Validate rejects geometries that cannot hold any payload.
func (c Config) Validate() error {
	switch {
	case c.NumBuffers <= 0:
		return api.ErrInvalidArgs.WithContext("numBuffers", c.NumBuffers)
	case c.BufferOverhead < 0 || c.HeadOverhead < 0:
		return api.ErrInvalidArgs.WithContext("overhead", c.BufferOverhead+c.HeadOverhead)
	case c.HeadDataSize() <= 0:
		return api.ErrInvalidArgs.WithContext("bufferSize", c.BufferSize)
	case c.ChildMaskBits < 0:
		return api.ErrInvalidArgs.WithContext("childMaskBits", c.ChildMaskBits)
	case !c.DefaultPriority.Valid():
		return api.ErrInvalidArgs.WithContext("defaultPriority", c.DefaultPriority)
	}
	return nil
}

// Settings override the per-message defaults at creation time.
type Settings struct {
	LinkSecurity bool
	Priority     api.Priority
}
