// File: message/rss.go
// Author: momentics <momentics@gmail.com>
//
// Received signal strength averaging across the frames of one message.

package message

import "github.com/momentics/meshbuf/api"

// RSSInvalid is reported when no sample has been added.
const RSSInvalid int8 = 127

const (
	rssPrecisionShift = 3
	rssPrecision      = 1 << rssPrecisionShift
	rssCoeffShift     = 3
)

// RSSAverager keeps an arithmetic mean over the first 8 samples and an
// exponentially weighted moving average afterwards. Values are stored as
// positive multiples of 1/8 dB.
type RSSAverager struct {
	average uint16
	count   uint8
}

// Add folds a sample in dBm. Positive values are clamped to 0.
func (r *RSSAverager) Add(rss int8) error {
	if rss == RSSInvalid {
		return api.ErrInvalidArgs.WithContext("rss", rss)
	}
	if rss > 0 {
		rss = 0
	}
	v := uint16(-int16(rss)) << rssPrecisionShift
	if r.count < 1<<rssCoeffShift {
		r.count++
	}
	r.average = uint16((uint32(r.average)*uint32(r.count-1) + uint32(v)) / uint32(r.count))
	return nil
}

// Average returns the mean in dBm rounded half away from zero, or RSSInvalid.
func (r RSSAverager) Average() int8 {
	if r.count == 0 {
		return RSSInvalid
	}
	avg := -int16(r.average >> rssPrecisionShift)
	if r.average&(rssPrecision-1) >= rssPrecision/2 {
		avg--
	}
	return int8(avg)
}

// Count returns the number of samples weighed in, saturating at 8.
func (r RSSAverager) Count() int { return int(r.count) }

// Reset forgets all samples.
func (r *RSSAverager) Reset() { *r = RSSAverager{} }
