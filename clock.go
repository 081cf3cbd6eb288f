package rpisdma

import (
	"os"

	"github.com/DerLukas15/rpimemmap"
	"github.com/pkg/errors"
)

const (
	registerSysconBusOffset uint32 = 0x00348000

	//register offsets
	registerOffsetSysconAhbClkCtrl uint32 = 0x080 // AHB bus clock gates
	registerOffsetSysconPresetCtrl uint32 = 0x088 // Peripheral resets. Writing 0 asserts, writing 1 releases

	//peripheral bits, identical in both registers
	registerValueSysconTimer uint32 = (1 << 25) // Match timer
	registerValueSysconSdma  uint32 = (1 << 29) // SDMA engine
)

var sysconRegisterMem rpimemmap.MemMap //stores reference to the syscon device

//enableBusClock opens the bus clock gate for a peripheral and cycles its reset.
func enableBusClock(peripheral uint32) error {
	if sysconRegisterMem == nil {
		return errors.Wrap(ErrNoSysconMap, "enable bus clock")
	}
	*rpimemmap.Reg32(sysconRegisterMem, registerOffsetSysconAhbClkCtrl) |= peripheral
	*rpimemmap.Reg32(sysconRegisterMem, registerOffsetSysconPresetCtrl) &= ^peripheral
	*rpimemmap.Reg32(sysconRegisterMem, registerOffsetSysconPresetCtrl) |= peripheral
	return nil
}

//disableBusClock closes the bus clock gate for a peripheral again.
func disableBusClock(peripheral uint32) error {
	if sysconRegisterMem == nil {
		return nil
	}
	*rpimemmap.Reg32(sysconRegisterMem, registerOffsetSysconAhbClkCtrl) &= ^peripheral
	return nil
}

//Initialize the syscon device and get virtual address
func initializeSyscon() error {
	if sysconRegisterMem != nil {
		//Already initialized
		logOutput("Syscon already initialized. Skipping")
		return nil
	}
	sysconRegisterMem = rpimemmap.NewPeripheral(uint32(os.Getpagesize()))
	err := sysconRegisterMem.Map(registerSysconBusOffset, rpimemmap.MemDevDefault, 0)
	if err != nil {
		return err
	}
	logOutput("Syscon: " + sysconRegisterMem.String())
	return nil
}

//cleanup the mapping to the syscon device
func cleanupSyscon() error {
	if sysconRegisterMem == nil {
		return nil
	}
	err := sysconRegisterMem.Unmap()
	if err != nil {
		return err
	}
	sysconRegisterMem = nil
	return nil
}
