package rpisdma

import (
	"fmt"
	"os"

	"github.com/DerLukas15/rpimemmap"
)

const (
	//Register Offsets
	registerOffsetSdmaCtrl     uint32 = 0x000
	registerOffsetSdmaIntStat  uint32 = 0x004
	registerOffsetSdmaSramBase uint32 = 0x008

	//Register values Ctrl
	registerValueSdmaCtrlEnable uint32 = (1 << 0)

	//Register values IntStat
	registerValueSdmaIntStatActiveInt    uint32 = (1 << 1)
	registerValueSdmaIntStatActiveErrInt uint32 = (1 << 2)

	registerSDMABusOffset uint32 = 0x00360000
)

//helper functions for the channel register block
var (
	registerOffsetSdmaChannel = func(ch uint32, r uint32) uint32 { //Adds channel specific offset to address
		return 0x400 + uint32(ch*0x10) + r
	}
)

const (
	//register offsets within one channel block
	registerOffsetSdmaCfg     uint32 = 0x0
	registerOffsetSdmaXferCfg uint32 = 0x8
)

var sdmaRegisterMem rpimemmap.MemMap //stores reference to the sdma device

//Initialize the sdma device
func initializeSdma(busOffset uint32, memDevice string) error {
	if sdmaRegisterMem != nil {
		//Already initialized
		logOutput("SDMA already initialized. Skipping")
		return nil
	}
	sdmaRegisterMem = rpimemmap.NewPeripheral(uint32(os.Getpagesize()))
	err := sdmaRegisterMem.Map(busOffset, memDevice, 0)
	if err != nil {
		return err
	}
	logOutput("SDMA: " + sdmaRegisterMem.String())
	return nil
}

//deallocate sdma device
func cleanupSdma() error {
	if sdmaRegisterMem == nil {
		return nil
	}
	err := sdmaRegisterMem.Unmap()
	if err != nil {
		return err
	}
	sdmaRegisterMem = nil
	return nil
}

//point the engine at the descriptor table. The address has to be 512 byte aligned.
func setSdmaSramBase(busAddr uint32) error {
	if sdmaRegisterMem == nil {
		return nil
	}
	*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaSramBase) = busAddr
	return nil
}

//master enable for the sdma engine
func enableSdma() error {
	if sdmaRegisterMem == nil {
		return nil
	}
	*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaCtrl) |= registerValueSdmaCtrlEnable
	return nil
}

//master disable for the sdma engine
func disableSdma() error {
	if sdmaRegisterMem == nil {
		return nil
	}
	*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaCtrl) &= ^registerValueSdmaCtrlEnable
	return nil
}

//prints status of the sdma device
func statusSdma() string {
	if sdmaRegisterMem == nil {
		return ""
	}
	var res string
	res += fmt.Sprintf("SDMA Status:\n")
	res += fmt.Sprintf("\tEnabled: %t\n", (*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaCtrl)&registerValueSdmaCtrlEnable != 0))
	res += fmt.Sprintf("\tInterrupt pending: %t\n", (*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaIntStat)&registerValueSdmaIntStatActiveInt != 0))
	res += fmt.Sprintf("\tError interrupt pending: %t\n", (*rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaIntStat)&registerValueSdmaIntStatActiveErrInt != 0))
	res += fmt.Sprintf("\tDescriptor table: 0x%08x\n", *rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaSramBase))
	res += fmt.Sprintf("\tEnabled channels: 0x%08x\n", *rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaEnableSet0))
	res += fmt.Sprintf("\tActive channels: 0x%08x\n", *rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaActive0))
	res += fmt.Sprintf("\tBusy channels: 0x%08x\n", *rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaBusy0))
	res += fmt.Sprintf("\tError flags: 0x%08x\n", *rpimemmap.Reg32(sdmaRegisterMem, registerOffsetSdmaErrInt0))
	return res
}
