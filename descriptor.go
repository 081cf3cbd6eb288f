package rpisdma

import (
	"os"

	"github.com/DerLukas15/rpihardware"
	"github.com/DerLukas15/rpimemmap"
)

const (
	//word offsets within one transfer descriptor
	registerOffsetDescReserved uint32 = 0 * 4
	registerOffsetDescSrcEnd   uint32 = 1 * 4
	registerOffsetDescDstEnd   uint32 = 2 * 4
	registerOffsetDescLink     uint32 = 3 * 4

	//descriptorStride is the size of one descriptor. The hardware indexes the
	//table with channel*16.
	descriptorStride uint32 = 16

	//descriptorTableAlign is the alignment the engine requires for SRAMBASE.
	descriptorTableAlign uint32 = 512
)

var descriptorTableMem rpimemmap.MemMap //stores reference to the descriptor table

//initialize descriptor table storage
func initializeDescriptorTable() error {
	if descriptorTableMem != nil {
		return nil
	}
	if curHardware == nil {
		return ErrNoHardware
	}
	descriptorTableMem = rpimemmap.NewUncached(uint32(os.Getpagesize())) // page sized and page aligned, which covers the 512 byte alignment
	allocationFlags := rpimemmap.UncachedMemFlagDirect
	if curHardware.RPiType == rpihardware.RPiType1 {
		allocationFlags = 0xc
	}
	err := descriptorTableMem.Map(0, "", allocationFlags)
	if err != nil {
		return err
	}
	logOutput("SDMA descriptor table: " + descriptorTableMem.String())
	for ch := uint32(0); ch < channelCount; ch++ {
		base := ch * descriptorStride
		*rpimemmap.Reg32(descriptorTableMem, base+registerOffsetDescReserved) = 0
		*rpimemmap.Reg32(descriptorTableMem, base+registerOffsetDescSrcEnd) = 0
		*rpimemmap.Reg32(descriptorTableMem, base+registerOffsetDescDstEnd) = 0
		*rpimemmap.Reg32(descriptorTableMem, base+registerOffsetDescLink) = 0
	}
	return nil
}

//deallocates the descriptor table
func cleanupDescriptorTable() error {
	if descriptorTableMem == nil {
		return nil
	}
	err := descriptorTableMem.Unmap()
	if err != nil {
		return err
	}
	descriptorTableMem = nil
	return nil
}

//ChannelDescriptor is the transfer descriptor owned by one channel. The
//hardware reads it directly from memory once the channel is triggered.
/*
The descriptor holds the source and destination end addresses and an optional
link to a further descriptor. End addresses point to the LAST transferred
element of a buffer, not one past it, and have to be bus addresses.
*/
type ChannelDescriptor struct {
	w      regWindow
	offset uint32
	bus    uint32
}

//SetSourceEnd sets the bus address of the last element read by the transfer.
func (d *ChannelDescriptor) SetSourceEnd(busAddr uint32) {
	d.w.write32(d.offset+registerOffsetDescSrcEnd, busAddr)
}

//SetDestEnd sets the bus address of the last element written by the transfer.
func (d *ChannelDescriptor) SetDestEnd(busAddr uint32) {
	d.w.write32(d.offset+registerOffsetDescDstEnd, busAddr)
}

//SetLink sets the bus address of the next descriptor. 0 ends the chain.
func (d *ChannelDescriptor) SetLink(busAddr uint32) {
	d.w.write32(d.offset+registerOffsetDescLink, busAddr)
}

//Reset zeroes the whole descriptor.
func (d *ChannelDescriptor) Reset() {
	d.w.write32(d.offset+registerOffsetDescReserved, 0)
	d.w.write32(d.offset+registerOffsetDescSrcEnd, 0)
	d.w.write32(d.offset+registerOffsetDescDstEnd, 0)
	d.w.write32(d.offset+registerOffsetDescLink, 0)
}

//BusAddr returns the bus address of this descriptor for use as a link target.
func (d *ChannelDescriptor) BusAddr() uint32 {
	return d.bus + d.offset
}
