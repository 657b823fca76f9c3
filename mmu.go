// mmu.go - address translation and the guest load/store fast path

package main

// MMU implements spec.md §4.3's translation procedure and the load/store
// bridge to RAM and MMIO. It is owned by the CPU and reached from both the
// instruction-fetch path and every memory-access handler.
type MMU struct {
	state *State
	ram   *RAM
	bus   *Router
	tlb   *translationCache
}

// NewMMU wires an MMU against the given architectural state, backing RAM,
// and MMIO router.
func NewMMU(state *State, ram *RAM, bus *Router) *MMU {
	return &MMU{state: state, ram: ram, bus: bus, tlb: newTranslationCache()}
}

// Protection, decoded from either a BAT hit or a PTE hit, answers whether a
// given intent is permitted.
type protection struct {
	pp   uint8 // page-protection bits (BAT ProtBits or PTE PP), architecture-encoded
	wimg uint8
}

func (p protection) writable() bool {
	// PP encoding (shared by BAT and PTE in this core): 0 = no access,
	// 1 or 2 = read/write, 3 = read-only.
	return p.pp == 1 || p.pp == 2
}

func (p protection) cachingInhibited() bool { return p.wimg&0x4 != 0 } // WIMG bit I

// Translate performs the full procedure of spec.md §4.3 for virtual address
// v under the given intent, returning the resulting physical address and
// protection, or an *Exception (DSI/ISI) if translation fails.
func (m *MMU) Translate(v uint32, intent Intent) (uint32, protection, *Exception) {
	priv := m.state.Privileged()

	translationEnabled := (intent == IntentFetch && m.state.msrBit(MSRBitIR)) ||
		(intent != IntentFetch && m.state.msrBit(MSRBitDR))
	if !translationEnabled {
		return v, protection{pp: 2, wimg: 0}, nil
	}

	key := tlbKey{vpn: v >> 12, intent: intent}
	val, err := m.tlb.resolveWithFill(key, func() (tlbValue, error) {
		return m.slowTranslate(v, intent, priv)
	})
	if err != nil {
		exc := err.(*Exception)
		return 0, protection{}, exc
	}
	phys := (val.physPage << 12) | (v & 0xFFF)
	return phys, protection{pp: val.prot, wimg: val.wimg}, nil
}

// slowTranslate performs the uncached BAT-then-segment-walk procedure. Its
// error return is always an *Exception, boxed as error so it can travel
// through translationCache.resolveWithFill's generic signature.
func (m *MMU) slowTranslate(v uint32, intent Intent, priv bool) (tlbValue, error) {
	bats := &m.state.DBAT
	if intent == IntentFetch {
		bats = &m.state.IBAT
	}
	if phys, prot, wimg, hit := batLookup(bats, v, priv); hit {
		return tlbValue{physPage: phys >> 12, prot: prot, wimg: wimg}, nil
	}

	segIdx := v >> 28
	seg := m.state.SR[segIdx]
	if seg.NX && intent == IntentFetch {
		return tlbValue{}, &Exception{Kind: ExcISI, Cause: DSICauseProtection}
	}

	pageIndex := (v >> 12) & 0xFFFF
	api := pageIndex >> 10

	pte, found := walkPageTable(m.ram, m.state.SDR1, seg.VSID, pageIndex, api)
	if !found {
		if intent == IntentFetch {
			return tlbValue{}, &Exception{Kind: ExcISI, Cause: DSICausePageFault}
		}
		return tlbValue{}, &Exception{Kind: ExcDSI, Cause: DSICausePageFault}
	}

	ptePprot := protection{pp: pte.PP}
	if intent == IntentStore && !ptePprot.writable() {
		return tlbValue{}, &Exception{Kind: ExcDSI, Cause: DSICauseProtection}
	}

	return tlbValue{physPage: pte.RPN, prot: pte.PP, wimg: pte.WIMG}, nil
}

// InvalidateAll drops every cached translation (tlbie, SR write, SDR1 write,
// BAT write).
func (m *MMU) InvalidateAll() { m.tlb.invalidateAll() }

// InvalidatePage drops the cached translation for one virtual page.
func (m *MMU) InvalidatePage(v uint32) { m.tlb.invalidatePage(v >> 12) }

// ---- load/store bridge ----

// routeReadPhys/routeWritePhys read or write width bytes at physical address phys, trying
// the MMIO router first and falling back to RAM, per spec.md §4.3 step 6.
func (m *MMU) routeReadPhys(phys uint32, width int) (uint64, error) {
	if v, ok, err := m.bus.Read(phys, width); ok {
		return v, err
	}
	return m.ram.Read(phys, width)
}

func (m *MMU) routeWritePhys(phys uint32, width int, value uint64) error {
	if ok, err := m.bus.Write(phys, width, value); ok {
		return err
	}
	return m.ram.Write(phys, width, value)
}

func crossesPage(addr uint32, width int) bool {
	if width <= 1 {
		return false
	}
	return addr>>12 != (addr+uint32(width)-1)>>12
}

// Load translates and reads a width-byte big-endian value from virtual
// address addr under the given intent (IntentLoad or IntentFetch).
func (m *MMU) Load(addr uint32, width int, intent Intent) (uint64, *Exception) {
	if !crossesPage(addr, width) {
		phys, prot, exc := m.Translate(addr, intent)
		if exc != nil {
			return 0, exc
		}
		if prot.cachingInhibited() && addr%uint32(width) != 0 {
			return 0, &Exception{Kind: ExcAlignment}
		}
		v, err := m.routeReadPhys(phys, width)
		if err != nil {
			return 0, &Exception{Kind: ExcMachineCheck}
		}
		return v, nil
	}

	// Splits the access into per-byte sub-accesses per spec.md §4.3's
	// unaligned-page-crossing rule; every byte is translated before any
	// byte is read, so a fault on the second half leaves no observable
	// read committed beyond what the host already fetched for the first.
	phyAddrs := make([]uint32, width)
	for i := 0; i < width; i++ {
		phys, _, exc := m.Translate(addr+uint32(i), intent)
		if exc != nil {
			return 0, exc
		}
		phyAddrs[i] = phys
	}
	buf := make([]byte, width)
	for i := 0; i < width; i++ {
		b, err := m.routeReadPhys(phyAddrs[i], 1)
		if err != nil {
			return 0, &Exception{Kind: ExcMachineCheck}
		}
		buf[i] = byte(b)
	}
	return bytesToUint(buf), nil
}

// Store translates and writes a width-byte big-endian value to virtual
// address addr.
func (m *MMU) Store(addr uint32, width int, value uint64) *Exception {
	if !crossesPage(addr, width) {
		phys, prot, exc := m.Translate(addr, IntentStore)
		if exc != nil {
			return exc
		}
		if !prot.writable() {
			return &Exception{Kind: ExcDSI, Cause: DSICauseProtection}
		}
		if prot.cachingInhibited() && addr%uint32(width) != 0 {
			return &Exception{Kind: ExcAlignment}
		}
		if err := m.routeWritePhys(phys, width, value); err != nil {
			return &Exception{Kind: ExcMachineCheck}
		}
		return nil
	}

	phyAddrs := make([]uint32, width)
	for i := 0; i < width; i++ {
		phys, prot, exc := m.Translate(addr+uint32(i), IntentStore)
		if exc != nil {
			return exc
		}
		if !prot.writable() {
			return &Exception{Kind: ExcDSI, Cause: DSICauseProtection}
		}
		phyAddrs[i] = phys
	}
	buf := uintToBytes(value, width)
	for i := 0; i < width; i++ {
		if err := m.routeWritePhys(phyAddrs[i], 1, uint64(buf[i])); err != nil {
			return &Exception{Kind: ExcMachineCheck}
		}
	}
	return nil
}

// FetchInstruction translates and reads the 4-byte instruction word at PC.
func (m *MMU) FetchInstruction(pc uint32) (uint32, *Exception) {
	if pc%4 != 0 {
		return 0, &Exception{Kind: ExcAlignment}
	}
	v, exc := m.Load(pc, 4, IntentFetch)
	if exc != nil {
		if exc.Kind == ExcDSI {
			exc.Kind = ExcISI
		}
		return 0, exc
	}
	return uint32(v), nil
}

func bytesToUint(b []byte) uint64 {
	var v uint64
	for _, x := range b {
		v = v<<8 | uint64(x)
	}
	return v
}

func uintToBytes(v uint64, width int) []byte {
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}

