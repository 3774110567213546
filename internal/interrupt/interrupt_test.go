package interrupt

import "testing"

func TestPackedRegisters(t *testing.T) {
	l := New()
	l.WriteIE(0xFF)
	if got := l.ReadIE(); got != 0x1F {
		t.Fatalf("IE got %02x want 1f", got)
	}
	l.WriteIF(0x05)
	if got := l.ReadIF(); got != 0xE5 {
		t.Fatalf("IF got %02x want e5", got)
	}
	if !l.Pending(VBlank) || !l.Pending(Timer) || l.Pending(Serial) {
		t.Fatalf("pending decode wrong for IF=05")
	}
}

func TestRequestAndPriority(t *testing.T) {
	l := New()
	l.Request(Joypad)
	l.Request(Timer)
	if l.Ready() {
		t.Fatalf("Ready with nothing enabled")
	}
	l.WriteIE(uint8(Joypad | Timer))
	s, ok := l.Next()
	if !ok || s != Timer {
		t.Fatalf("Next got %v,%v want timer", s, ok)
	}
	l.Acknowledge(s)
	s, ok = l.Next()
	if !ok || s != Joypad {
		t.Fatalf("Next got %v,%v want joypad", s, ok)
	}
	l.Acknowledge(s)
	if _, ok := l.Next(); ok {
		t.Fatalf("Next still reports a source after acknowledging all")
	}
}

func TestVectors(t *testing.T) {
	want := map[Source]uint16{VBlank: 0x40, LCDStat: 0x48, Timer: 0x50, Serial: 0x58, Joypad: 0x60}
	for s, v := range want {
		if got := s.Vector(); got != v {
			t.Fatalf("%v vector got %04x want %04x", s, got, v)
		}
	}
}
