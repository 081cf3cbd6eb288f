package rpisdma

//simWindow is a plain register window backed by a map. It has no hardware
//semantics and serves as the window for private registers and the
//descriptor table in tests.
type simWindow map[uint32]uint32

func (w simWindow) read32(offset uint32) uint32 {
	return w[offset]
}

func (w simWindow) write32(offset uint32, value uint32) {
	w[offset] = value
}

//simBank simulates the SDMA register block. The shared registers follow the
//hardware contract: set registers ignore written zeros, flag registers clear
//bits written as one, and status registers are read only. Private channel
//registers behave like plain storage.
type simBank struct {
	ctrl     uint32
	intStat  uint32
	sramBase uint32
	enabled  uint32
	active   uint32
	busy     uint32
	errInt   uint32
	intEn    uint32
	intA     uint32
	intB     uint32
	trig     uint32
	private  map[uint32]uint32
}

func newSimBank() *simBank {
	return &simBank{private: make(map[uint32]uint32)}
}

func (b *simBank) read32(offset uint32) uint32 {
	switch offset {
	case registerOffsetSdmaCtrl:
		return b.ctrl
	case registerOffsetSdmaIntStat:
		return b.intStat
	case registerOffsetSdmaSramBase:
		return b.sramBase
	case registerOffsetSdmaEnableSet0, registerOffsetSdmaEnableClr0:
		return b.enabled
	case registerOffsetSdmaActive0:
		return b.active
	case registerOffsetSdmaBusy0:
		return b.busy
	case registerOffsetSdmaErrInt0:
		return b.errInt
	case registerOffsetSdmaIntEnSet0, registerOffsetSdmaIntEnClr0:
		return b.intEn
	case registerOffsetSdmaIntA0:
		return b.intA
	case registerOffsetSdmaIntB0:
		return b.intB
	case registerOffsetSdmaSetTrig0:
		return b.trig
	}
	return b.private[offset]
}

func (b *simBank) write32(offset uint32, value uint32) {
	switch offset {
	case registerOffsetSdmaCtrl:
		b.ctrl = value
	case registerOffsetSdmaIntStat, registerOffsetSdmaActive0, registerOffsetSdmaBusy0:
		//read only
	case registerOffsetSdmaSramBase:
		b.sramBase = value
	case registerOffsetSdmaEnableSet0:
		b.enabled |= value
	case registerOffsetSdmaEnableClr0:
		b.enabled &^= value
	case registerOffsetSdmaErrInt0:
		b.errInt &^= value
	case registerOffsetSdmaIntEnSet0:
		b.intEn |= value
	case registerOffsetSdmaIntEnClr0:
		b.intEn &^= value
	case registerOffsetSdmaIntA0:
		b.intA &^= value
	case registerOffsetSdmaIntB0:
		b.intB &^= value
	case registerOffsetSdmaSetTrig0:
		b.trig |= value
	default:
		b.private[offset] = value
	}
}

//newSimChannel returns a disabled handle for channel wired to bank, with the
//descriptor table placed in its own plain window.
func newSimChannel(bank *simBank, channel uint32) *Channel {
	return newChannel(channelCaps[channel], bank, simWindow{}, 0x3f000000)
}
