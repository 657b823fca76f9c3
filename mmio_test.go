// mmio_test.go - MMIO router and RAM tests

package main

import "testing"

type fakeEndpoint struct {
	lastOffset uint32
	lastWidth  int
	lastValue  uint64
}

func (f *fakeEndpoint) Read(offset uint32, width int) (uint64, error) {
	f.lastOffset, f.lastWidth = offset, width
	return 0x1234, nil
}

func (f *fakeEndpoint) Write(offset uint32, width int, value uint64) error {
	f.lastOffset, f.lastWidth, f.lastValue = offset, width, value
	return nil
}

func TestRouterRejectsOverlap(t *testing.T) {
	r := NewRouter()
	ep := &fakeEndpoint{}
	if err := r.Register(0x1000, 0x100, ep); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	if err := r.Register(0x1050, 0x10, ep); err == nil {
		t.Errorf("overlapping registration should fail")
	}
	if err := r.Register(0x1100, 0x10, ep); err != nil {
		t.Errorf("non-overlapping registration should succeed: %v", err)
	}
}

func TestRouterOffsetsRelativeToRegion(t *testing.T) {
	r := NewRouter()
	ep := &fakeEndpoint{}
	if err := r.Register(0x2000, 0x100, ep); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := r.Read(0x2010, 4); !ok || err != nil {
		t.Fatalf("expected a serviced read, ok=%v err=%v", ok, err)
	}
	if ep.lastOffset != 0x10 {
		t.Errorf("endpoint should see a region-relative offset, got %#x", ep.lastOffset)
	}
	if _, ok, _ := r.Read(0x3000, 4); ok {
		t.Errorf("unregistered address should not be serviced")
	}
}

func TestRouterUnregister(t *testing.T) {
	r := NewRouter()
	ep := &fakeEndpoint{}
	_ = r.Register(0x4000, 0x10, ep)
	r.Unregister(0x4000)
	if _, ok, _ := r.Read(0x4000, 1); ok {
		t.Errorf("unregistered region should no longer be serviced")
	}
}

func TestRAMReadWriteBigEndian(t *testing.T) {
	ram := NewRAM(256)
	if err := ram.Write(0x10, 4, 0x01020304); err != nil {
		t.Fatal(err)
	}
	v, err := ram.Read(0x10, 4)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0x01020304 {
		t.Errorf("Read(4) = %#x, want 0x01020304", v)
	}
	b, _ := ram.Read(0x10, 1)
	if b != 0x01 {
		t.Errorf("first byte of a big-endian word should be the MSB, got %#x", b)
	}
}

func TestRAMOutOfBounds(t *testing.T) {
	ram := NewRAM(16)
	if _, err := ram.Read(15, 4); err == nil {
		t.Errorf("read crossing the end of RAM should fail")
	}
	if err := ram.Write(15, 4, 0); err == nil {
		t.Errorf("write crossing the end of RAM should fail")
	}
}

func TestRAMUnsupportedWidth(t *testing.T) {
	ram := NewRAM(16)
	if _, err := ram.Read(0, 3); err != ErrUnsupportedWidth {
		t.Errorf("width 3 should be ErrUnsupportedWidth, got %v", err)
	}
}
