package bytecursor

import "testing"

func TestU32LittleEndian(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03, 0x04})
	v, err := c.U32()
	if err != nil {
		t.Fatalf("U32 failed: %v", err)
	}
	if v != 0x04030201 {
		t.Errorf("expected 0x04030201, got 0x%X", v)
	}
}

func TestI8Signed(t *testing.T) {
	c := New([]byte{0xFF})
	v, err := c.I8()
	if err != nil {
		t.Fatalf("I8 failed: %v", err)
	}
	if v != -1 {
		t.Errorf("expected -1, got %d", v)
	}
}

func TestTruncatedRead(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	if _, err := c.U32(); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestIntByteSizeString(t *testing.T) {
	// totalSize=6 (1 len byte + 4 "name" + 1 pad byte), strLen=4, "name", pad 1.
	data := []byte{6, 0, 0, 0, 4, 'n', 'a', 'm', 'e', 0xAA}
	c := New(data)
	s, err := c.IntByteSizeString()
	if err != nil {
		t.Fatalf("IntByteSizeString failed: %v", err)
	}
	if s != "name" {
		t.Errorf("expected %q, got %q", "name", s)
	}
	if c.Pos() != len(data) {
		t.Errorf("expected cursor at %d, got %d", len(data), c.Pos())
	}
}

func TestIntStringNonPositiveLenIsEmpty(t *testing.T) {
	data := []byte{0, 0, 0, 0}
	c := New(data)
	s, err := c.IntString()
	if err != nil {
		t.Fatalf("IntString failed: %v", err)
	}
	if s != "" {
		t.Errorf("expected empty string, got %q", s)
	}
}

func TestByteSizeStringPadsToFixedLen(t *testing.T) {
	data := []byte{3, 'a', 'b', 'c', 0xAA, 0xAA}
	c := New(data)
	s, err := c.ByteSizeString(5)
	if err != nil {
		t.Fatalf("ByteSizeString failed: %v", err)
	}
	if s != "abc" {
		t.Errorf("expected %q, got %q", "abc", s)
	}
	if c.Pos() != 6 {
		t.Errorf("expected cursor at 6, got %d", c.Pos())
	}
}

func TestByteSizeStringMissingDeclaredBytes(t *testing.T) {
	// strLen=5 but only 3 payload bytes follow; fixedLen=5 means readLen=5.
	data := []byte{5, 'a', 'b', 'c'}
	c := New(data)
	if _, err := c.ByteSizeString(5); err != ErrTruncated {
		t.Fatalf("expected ErrTruncated reading declared-but-absent bytes, got %v", err)
	}
}
