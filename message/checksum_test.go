package message_test

import (
	"testing"

	"github.com/momentics/meshbuf/api"
	"github.com/momentics/meshbuf/message"
)

func TestChecksumUint16_EndAroundCarry(t *testing.T) {
	if got := message.ChecksumUint16(0xffff, 0x0001); got != 0x0001 {
		t.Errorf("Expected 0x0001, got %#04x", got)
	}
	if got := message.ChecksumUint16(0x1234, 0x0001); got != 0x1235 {
		t.Errorf("Expected 0x1235, got %#04x", got)
	}
	if got := message.ChecksumBytes(0, []byte{0x01, 0x02, 0x03}); got != 0x0402 {
		t.Errorf("Expected 0x0402 for odd trailing byte, got %#04x", got)
	}
}

func TestUpdateChecksum_MatchesFlatBuffer(t *testing.T) {
	p := newPool(t, smallConfig(32))
	m := mustNew(t, p, 5, api.PriorityNormal)
	data := pattern(77, 0x3c)
	if err := m.Append(data); err != nil {
		t.Fatalf("Append: %v", err)
	}

	for _, r := range [][2]int{{0, 77}, {1, 30}, {8, 9}, {13, 64}, {70, 100}} {
		end := min(r[0]+r[1], len(data))
		flat := data[r[0]:end]
		if r[0]&1 == 1 {
			// A range starting at an odd offset begins with a low byte.
			flat = append([]byte{0}, flat...)
		}
		want := message.ChecksumBytes(0x1111, flat)
		if got := m.UpdateChecksum(0x1111, r[0], r[1]); got != want {
			t.Errorf("range %v: expected %#04x, got %#04x", r, want, got)
		}
	}
}

func TestUpdateChecksum_SplitsCompose(t *testing.T) {
	p := newPool(t, smallConfig(32))
	m := mustNew(t, p, 3, api.PriorityNormal)
	if err := m.Append(pattern(90, 0xa5)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	whole := m.UpdateChecksum(0, 0, 90)

	for split := 0; split <= 90; split++ {
		forward := m.UpdateChecksum(m.UpdateChecksum(0, 0, split), split, 90-split)
		backward := m.UpdateChecksum(m.UpdateChecksum(0, split, 90-split), 0, split)
		if forward != whole || backward != whole {
			t.Errorf("split %d: whole %#04x forward %#04x backward %#04x", split, whole, forward, backward)
		}
	}
}

func TestUpdateChecksum_OddSplit(t *testing.T) {
	p := newPool(t, smallConfig(8))
	m := mustNew(t, p, 0, api.PriorityNormal)
	if err := m.Append([]byte{1, 2, 3, 4, 5, 6, 7, 8}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	whole := m.UpdateChecksum(0, 0, 8)
	if whole != 0x1014 {
		t.Errorf("Expected 0x1014, got %#04x", whole)
	}
	if got := m.UpdateChecksum(m.UpdateChecksum(0, 0, 3), 3, 5); got != whole {
		t.Errorf("Expected %#04x for 3/5 split, got %#04x", whole, got)
	}
	sum := uint16(0)
	for off := 0; off < 8; off++ {
		sum = m.UpdateChecksum(sum, off, 1)
	}
	if sum != whole {
		t.Errorf("Expected %#04x folding byte by byte, got %#04x", whole, sum)
	}
}

func TestChecksum_AnySplitComposes(t *testing.T) {
	p := newPool(t, smallConfig(32))
	m := mustNew(t, p, 0, api.PriorityNormal)
	check(t, m.Append(pattern(61, 0x17)))
	whole := m.UpdateChecksum(0, 0, 61)

	for a := 0; a <= 61; a++ {
		for _, b := range []int{a, min(a+3, 61), min(a+8, 61), 61} {
			var c message.Checksum
			c.AddMessage(m, 0, a)
			c.AddMessage(m, a, b-a)
			c.AddMessage(m, b, 61-b)
			if c.Sum16() != whole {
				t.Fatalf("splits %d/%d: expected %#04x, got %#04x", a, b, whole, c.Sum16())
			}
		}
	}
}

func TestChecksum_HeaderPlusPayload(t *testing.T) {
	p := newPool(t, smallConfig(32))
	m := mustNew(t, p, 0, api.PriorityNormal)
	payload := pattern(33, 0x44)
	check(t, m.Append(payload))
	header := []byte{0xfe, 0x80, 0x00, 0x00, 0x00, 0x11, 0x00}

	flat := message.ChecksumBytes(0, append(append([]byte{}, header...), payload...))

	c := message.NewChecksum(0)
	if _, err := c.Write(header); err != nil {
		t.Fatalf("Write: %v", err)
	}
	c.AddMessage(m, 0, m.Length())
	if c.Sum16() != flat {
		t.Errorf("Expected %#04x, got %#04x", flat, c.Sum16())
	}

	var v message.Checksum
	v.AddUint16(0xfe80)
	if v.Sum16() != message.ChecksumUint16(0, 0xfe80) {
		t.Errorf("AddUint16 mismatch: %#04x", v.Sum16())
	}
}
