package bitcursor

import "testing"

func TestMSBReadAcrossBytes(t *testing.T) {
	// 0b10110010 0b11110000 -> read 12 bits MSB-first: 1011 0010 1111 = 0xB2F
	m := NewMSB([]byte{0xB2, 0xF0})
	v, err := m.Read(12)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v != 0xB2F {
		t.Errorf("expected 0xB2F, got 0x%X", v)
	}
}

func TestMSBReadReversed(t *testing.T) {
	// bits read in order 1,0,1,1 -> reversed output has first bit as LSB: 1101 = 0xD
	m := NewMSB([]byte{0xB0})
	v, err := m.ReadReversed(4)
	if err != nil {
		t.Fatalf("ReadReversed failed: %v", err)
	}
	if v != 0xD {
		t.Errorf("expected 0xD, got 0x%X", v)
	}
}

func TestMSBAlignToByte(t *testing.T) {
	m := NewMSB([]byte{0xFF, 0xAA})
	if _, err := m.Read(3); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	m.AlignToByte()
	if m.BytePos() != 1 {
		t.Errorf("expected byte pos 1 after align, got %d", m.BytePos())
	}
	v, err := m.Read(8)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v != 0xAA {
		t.Errorf("expected 0xAA, got 0x%X", v)
	}
}

func TestMSBTruncated(t *testing.T) {
	m := NewMSB([]byte{0xFF})
	if _, err := m.Read(9); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestLSBReadWithinByte(t *testing.T) {
	// 0b00000101 -> first 3 bits LSB-first: 1,0,1 -> value 0b101 = 5
	l := NewLSB([]byte{0x05})
	v, err := l.Read(3)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v != 5 {
		t.Errorf("expected 5, got %d", v)
	}
}

func TestLSBReadAcrossBytes(t *testing.T) {
	l := NewLSB([]byte{0xFF, 0x01})
	v, err := l.Read(9)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if v != 0x1FF {
		t.Errorf("expected 0x1FF, got 0x%X", v)
	}
}

func TestLSBAlignAndReadByte(t *testing.T) {
	l := NewLSB([]byte{0x05, 0xAB})
	if _, err := l.Read(3); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	l.AlignToByte()
	b, err := l.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte failed: %v", err)
	}
	if b != 0xAB {
		t.Errorf("expected 0xAB, got 0x%X", b)
	}
}
