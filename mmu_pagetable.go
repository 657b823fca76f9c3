// mmu_pagetable.go - segment register + hashed page table walk

package main

import "encoding/binary"

// PTE is a decoded 8-byte hashed page table entry.
type PTE struct {
	Valid bool
	VSID  uint32 // 24 bits
	H     bool   // this PTE was found via the secondary hash
	API   uint32 // 6-bit abbreviated page index
	RPN   uint32 // 20-bit physical page number
	R, C  bool
	WIMG  uint8
	PP    uint8 // 2-bit page protection
}

func decodePTE(word0, word1 uint32) PTE {
	return PTE{
		Valid: word0&(1<<31) != 0,
		VSID:  (word0 >> 7) & 0xFFFFFF,
		H:     word0&(1<<6) != 0,
		API:   word0 & 0x3F,
		RPN:   (word1 >> 12) & 0xFFFFF,
		R:     word1&(1<<8) != 0,
		C:     word1&(1<<7) != 0,
		WIMG:  uint8((word1 >> 3) & 0xF),
		PP:    uint8(word1 & 0x3),
	}
}

func encodePTE(p PTE) (uint32, uint32) {
	var w0, w1 uint32
	if p.Valid {
		w0 |= 1 << 31
	}
	w0 |= (p.VSID & 0xFFFFFF) << 7
	if p.H {
		w0 |= 1 << 6
	}
	w0 |= p.API & 0x3F

	w1 |= (p.RPN & 0xFFFFF) << 12
	if p.R {
		w1 |= 1 << 8
	}
	if p.C {
		w1 |= 1 << 7
	}
	w1 |= uint32(p.WIMG&0xF) << 3
	w1 |= uint32(p.PP & 0x3)
	return w0, w1
}

// pageTableGeometry decodes SDR1 into a page table physical base and a PTEG
// count. This core stores SDR1 pre-shifted: bits 16-31 hold the 64KiB-aligned
// table base, and bits 0-8 hold log2 of the number of PTEGs beyond the
// architectural minimum (1024), matching the real SDR1[HTABMASK] encoding in
// spirit without requiring bit-for-bit manual number crunching at every call
// site.
func pageTableGeometry(sdr1 uint32) (base uint32, numPTEGs uint32) {
	base = sdr1 &^ 0xFFFF
	extraBits := sdr1 & 0x1FF
	numPTEGs = 1024 << extraBits
	return base, numPTEGs
}

const pteBytesPerEntry = 8
const pteEntriesPerGroup = 8

// hashPrimary computes the primary PTEG hash from a 24-bit VSID and a 16-bit
// page index, per spec.md §4.3 step 4.
func hashPrimary(vsid, pageIndex uint32) uint32 {
	return (vsid ^ pageIndex) & 0x7FFFFF // architectural hash is 39 bits before masking by table size; truncated to fit uint32 safely for this core's table sizes
}

func hashSecondary(primary uint32) uint32 {
	return ^primary & 0x7FFFFF
}

// walkPageTable searches the primary and secondary PTEGs for a PTE matching
// vsid/api, per spec.md §4.3 step 4. ram is read directly since the page
// table is ordinary guest physical memory.
func walkPageTable(ram *RAM, sdr1 uint32, vsid uint32, pageIndex uint32, api uint32) (PTE, bool) {
	base, numPTEGs := pageTableGeometry(sdr1)
	mask := numPTEGs - 1

	tryGroup := func(ptegIndex uint32, secondary bool) (PTE, bool) {
		groupOffset := base + (ptegIndex&mask)*pteEntriesPerGroup*pteBytesPerEntry
		for i := uint32(0); i < pteEntriesPerGroup; i++ {
			entryOff := groupOffset + i*pteBytesPerEntry
			if entryOff+8 > ram.Size() {
				continue
			}
			w0 := binary.BigEndian.Uint32(ram.bytes[entryOff:])
			w1 := binary.BigEndian.Uint32(ram.bytes[entryOff+4:])
			pte := decodePTE(w0, w1)
			if !pte.Valid {
				continue
			}
			if pte.VSID == vsid&0xFFFFFF && pte.API == api&0x3F && pte.H == secondary {
				return pte, true
			}
		}
		return PTE{}, false
	}

	primary := hashPrimary(vsid, pageIndex)
	if pte, ok := tryGroup(primary, false); ok {
		return pte, true
	}
	secondary := hashSecondary(primary)
	return tryGroup(secondary, true)
}

// InstallPTE writes a PTE into the correct PTEG for (vsid, pageIndex),
// choosing the primary slot's first free entry. It exists for test and
// bring-up setup, mirroring how guest OS code (or, here, a test harness)
// populates the hashed page table directly in guest RAM.
func InstallPTE(ram *RAM, sdr1 uint32, vsid, pageIndex, api, rpn uint32, pp uint8, wimg uint8) bool {
	base, numPTEGs := pageTableGeometry(sdr1)
	mask := numPTEGs - 1
	primary := hashPrimary(vsid, pageIndex) & mask
	groupOffset := base + primary*pteEntriesPerGroup*pteBytesPerEntry
	for i := uint32(0); i < pteEntriesPerGroup; i++ {
		entryOff := groupOffset + i*pteBytesPerEntry
		if entryOff+8 > ram.Size() {
			return false
		}
		w0 := binary.BigEndian.Uint32(ram.bytes[entryOff:])
		if w0&(1<<31) != 0 {
			continue // occupied
		}
		pte := PTE{Valid: true, VSID: vsid, H: false, API: api, RPN: rpn, PP: pp, WIMG: wimg}
		nw0, nw1 := encodePTE(pte)
		binary.BigEndian.PutUint32(ram.bytes[entryOff:], nw0)
		binary.BigEndian.PutUint32(ram.bytes[entryOff+4:], nw1)
		return true
	}
	return false
}
