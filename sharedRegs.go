package rpisdma

const (
	//Register Offsets shared between all channels. Bit n belongs to channel n.
	registerOffsetSdmaEnableSet0 uint32 = 0x020
	registerOffsetSdmaEnableClr0 uint32 = 0x028
	registerOffsetSdmaActive0    uint32 = 0x030
	registerOffsetSdmaBusy0      uint32 = 0x038
	registerOffsetSdmaErrInt0    uint32 = 0x040
	registerOffsetSdmaIntEnSet0  uint32 = 0x048
	registerOffsetSdmaIntEnClr0  uint32 = 0x050
	registerOffsetSdmaIntA0      uint32 = 0x058
	registerOffsetSdmaIntB0      uint32 = 0x060
	registerOffsetSdmaSetTrig0   uint32 = 0x070
)

//sharedRegisters accesses the channel bits of one channel inside the shared
//register bank. The set and clear registers ignore zero bits, so writing just
//the channel flag never disturbs other channels. Accessors are built per
//operation and never stored.
type sharedRegisters struct {
	w    regWindow
	flag uint32
}

func newSharedRegisters(w regWindow, flag uint32) sharedRegisters {
	return sharedRegisters{w: w, flag: flag}
}

//enable sets the channel enable bit.
func (r sharedRegisters) enable() {
	r.w.write32(registerOffsetSdmaEnableSet0, r.flag)
}

//disable clears the channel enable bit.
func (r sharedRegisters) disable() {
	r.w.write32(registerOffsetSdmaEnableClr0, r.flag)
}

//trigger requests a transfer start for the channel.
func (r sharedRegisters) trigger() {
	r.w.write32(registerOffsetSdmaSetTrig0, r.flag)
}

func (r sharedRegisters) isActive() bool {
	return r.w.read32(registerOffsetSdmaActive0)&r.flag != 0
}

func (r sharedRegisters) isBusy() bool {
	return r.w.read32(registerOffsetSdmaBusy0)&r.flag != 0
}

func (r sharedRegisters) enableInterrupts() {
	r.w.write32(registerOffsetSdmaIntEnSet0, r.flag)
}

func (r sharedRegisters) disableInterrupts() {
	r.w.write32(registerOffsetSdmaIntEnClr0, r.flag)
}

func (r sharedRegisters) errorInterruptFired() bool {
	return r.w.read32(registerOffsetSdmaErrInt0)&r.flag != 0
}

func (r sharedRegisters) aInterruptFired() bool {
	return r.w.read32(registerOffsetSdmaIntA0)&r.flag != 0
}

func (r sharedRegisters) bInterruptFired() bool {
	return r.w.read32(registerOffsetSdmaIntB0)&r.flag != 0
}

//resetFlags clears the error and both interrupt flags of the channel.
func (r sharedRegisters) resetFlags() {
	r.w.write32(registerOffsetSdmaErrInt0, r.flag)
	r.w.write32(registerOffsetSdmaIntA0, r.flag)
	r.w.write32(registerOffsetSdmaIntB0, r.flag)
}
