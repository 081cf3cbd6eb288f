package rpisdma

import (
	"github.com/DerLukas15/rpimemmap"
)

//regWindow is 32 bit register access into one mapped window.
//The hardware implementation is memWindow. Tests substitute their own.
type regWindow interface {
	read32(offset uint32) uint32
	write32(offset uint32, value uint32)
}

//memWindow accesses a live memory mapping.
type memWindow struct {
	mem rpimemmap.MemMap
}

func (w memWindow) read32(offset uint32) uint32 {
	return *rpimemmap.Reg32(w.mem, offset)
}

func (w memWindow) write32(offset uint32, value uint32) {
	*rpimemmap.Reg32(w.mem, offset) = value
}

//Register is a handle to a single 32 bit configuration register which is
//private to one channel. Read-modify-write through SetBits and ClearBits is
//safe because only the owning channel handle can reach the register.
type Register struct {
	w      regWindow
	offset uint32
}

//Get reads the current register value.
func (r *Register) Get() uint32 {
	return r.w.read32(r.offset)
}

//Set writes value to the register.
func (r *Register) Set(value uint32) {
	r.w.write32(r.offset, value)
}

//SetBits sets all bits of mask in the register.
func (r *Register) SetBits(mask uint32) {
	r.w.write32(r.offset, r.w.read32(r.offset)|mask)
}

//ClearBits clears all bits of mask in the register.
func (r *Register) ClearBits(mask uint32) {
	r.w.write32(r.offset, r.w.read32(r.offset)&^mask)
}
