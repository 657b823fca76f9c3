// mmio.go - MMIO region table and routing substrate

package main

import (
	"encoding/binary"
	"fmt"
)

// Endpoint is implemented by anything registered into the MMIO router. Read
// and Write are parameterised by a region-relative offset and an access
// width in {1,2,4,8}; width 8 is optional, and an endpoint that does not
// support it returns ErrUnsupportedWidth.
type Endpoint interface {
	Read(offset uint32, width int) (uint64, error)
	Write(offset uint32, width int, value uint64) error
}

// ErrUnsupportedWidth is returned by an Endpoint when asked for an access
// width it cannot service (spec.md §4.6: "the router must report 'unsupported
// access width'").
var ErrUnsupportedWidth = fmt.Errorf("mmio: unsupported access width")

// region is one registered MMIO range, ordered by registration.
type region struct {
	start, length uint32
	endpoint      Endpoint
}

func (r region) end() uint32 { return r.start + r.length } // exclusive

func (r region) contains(addr uint32) bool {
	return addr >= r.start && addr < r.end()
}

// Router is the ordered, non-overlapping registry mapping guest-physical
// ranges to device endpoints (spec.md §3 "MMIO region table").
//
// Registration happens once at machine construction and is released at
// teardown (spec.md §3 lifecycle invariant); the router is not safe for
// concurrent registration against concurrent lookups, matching the
// single-dispatch-thread ownership model of spec.md §5.
type Router struct {
	regions []region
}

// NewRouter returns an empty MMIO router.
func NewRouter() *Router { return &Router{} }

// Register adds a new MMIO region. It fails if the new range overlaps any
// already-registered region (spec.md §3 invariant).
func (r *Router) Register(start, length uint32, ep Endpoint) error {
	newRegion := region{start: start, length: length, endpoint: ep}
	for _, existing := range r.regions {
		if start < existing.end() && newRegion.end() > existing.start {
			return fmt.Errorf("mmio: region [%#x,%#x) overlaps existing [%#x,%#x)",
				start, newRegion.end(), existing.start, existing.end())
		}
	}
	r.regions = append(r.regions, newRegion)
	return nil
}

// Unregister removes the region starting at start, if any (teardown path).
func (r *Router) Unregister(start uint32) {
	for i, reg := range r.regions {
		if reg.start == start {
			r.regions = append(r.regions[:i], r.regions[i+1:]...)
			return
		}
	}
}

// Lookup returns the region containing phys, or ok=false if none does.
func (r *Router) Lookup(phys uint32) (region, bool) {
	for _, reg := range r.regions {
		if reg.contains(phys) {
			return reg, true
		}
	}
	return region{}, false
}

// Read dispatches a read of the given width to the owning endpoint.
// ok is false if no region covers phys.
func (r *Router) Read(phys uint32, width int) (value uint64, ok bool, err error) {
	reg, found := r.Lookup(phys)
	if !found {
		return 0, false, nil
	}
	v, err := reg.endpoint.Read(phys-reg.start, width)
	return v, true, err
}

// Write dispatches a write of the given width to the owning endpoint.
func (r *Router) Write(phys uint32, width int, value uint64) (ok bool, err error) {
	reg, found := r.Lookup(phys)
	if !found {
		return false, nil
	}
	return true, reg.endpoint.Write(phys-reg.start, width, value)
}

// RAM is a flat, big-endian-addressed guest memory block. PowerPC is
// big-endian in this configuration (spec.md §4.2); values are presented to
// the host in natural machine order via encoding/binary.BigEndian so the
// core behaves identically regardless of host byte order.
type RAM struct {
	bytes []byte
}

// NewRAM allocates size bytes of guest physical RAM.
func NewRAM(size uint32) *RAM {
	return &RAM{bytes: make([]byte, size)}
}

func (m *RAM) Size() uint32 { return uint32(len(m.bytes)) }

func (m *RAM) Reset() {
	for i := range m.bytes {
		m.bytes[i] = 0
	}
}

func (m *RAM) Read(offset uint32, width int) (uint64, error) {
	if int(offset)+width > len(m.bytes) {
		return 0, fmt.Errorf("ram: read out of bounds at %#x width %d", offset, width)
	}
	b := m.bytes[offset:]
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(b)), nil
	case 8:
		return binary.BigEndian.Uint64(b), nil
	default:
		return 0, ErrUnsupportedWidth
	}
}

func (m *RAM) Write(offset uint32, width int, value uint64) error {
	if int(offset)+width > len(m.bytes) {
		return fmt.Errorf("ram: write out of bounds at %#x width %d", offset, width)
	}
	b := m.bytes[offset:]
	switch width {
	case 1:
		b[0] = byte(value)
	case 2:
		binary.BigEndian.PutUint16(b, uint16(value))
	case 4:
		binary.BigEndian.PutUint32(b, uint32(value))
	case 8:
		binary.BigEndian.PutUint64(b, value)
	default:
		return ErrUnsupportedWidth
	}
	return nil
}
