package rpisdma

import (
	"sync"

	"github.com/DerLukas15/rpihardware"
	"github.com/DerLukas15/rpimemmap"
	"github.com/pkg/errors"
)

//Controller is the main struct which holds all information about the SDMA engine.
/*
Only one Controller can be initialized at a time as the hardware exists exactly once. Use method Stop to deinitialize the Controller so that another one can take over.

There are only some methods possible once the Controller has been initialized. Do all settings before calling Initialize.

Channel handles are claimed through method Channel. Each physical channel is handed out at most once per Controller, which keeps the per channel registers and the transfer descriptor exclusively owned by one handle.
*/
type Controller struct {
	// Device used for mapping the peripheral registers.
	memDevice string
	// Bus offset of the SDMA register block.
	busOffset uint32

	initialized bool

	regs     regWindow //register window of the SDMA block, set during Initialize
	table    regWindow //window of the descriptor table, set during Initialize
	tableBus uint32    //bus address of the descriptor table

	mu      sync.Mutex //guards claimed
	claimed uint32     //bitmask of handed out channels
}

//New returns a new Controller.
/*
Default memory device: rpimemmap.MemDevDefault

Default bus offset: 0x00360000
*/
func New() *Controller {
	return &Controller{
		memDevice: rpimemmap.MemDevDefault,
		busOffset: registerSDMABusOffset,
	}
}

//SetMemDevice sets the memory device which is used for mapping the peripheral registers.
func (c *Controller) SetMemDevice(memDevice string) error {
	if c.initialized {
		return errors.Wrap(ErrControllerInitialized, "controller SetMemDevice")
	}
	c.memDevice = memDevice
	return nil
}

//SetBusOffset sets the bus offset of the SDMA register block.
/*
Only needed if the register block of the SDMA engine is exposed at a different offset than the default.
*/
func (c *Controller) SetBusOffset(busOffset uint32) error {
	if c.initialized {
		return errors.Wrap(ErrControllerInitialized, "controller SetBusOffset")
	}
	c.busOffset = busOffset
	return nil
}

//Initialize activates the Controller. If another Controller is already active, an error is returned.
/*
This maps the syscon and SDMA register blocks, enables the bus clock of the engine, allocates the descriptor table, and switches the engine on.
*/
func (c *Controller) Initialize() error {
	if c.initialized {
		return nil
	}
	if sdmaActive {
		return errors.Wrap(ErrControllerActive, "controller initialize")
	}
	var err error
	curHardware, err = rpihardware.Check()
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	logOutput("Initializing syscon peripheral")
	err = initializeSyscon()
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	err = enableBusClock(registerValueSysconSdma)
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	logOutput("Done with syscon peripheral")
	logOutput("Initializing SDMA peripheral")
	err = initializeSdma(c.busOffset, c.memDevice)
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	logOutput("Done with SDMA peripheral")
	logOutput("Initializing descriptor table")
	err = initializeDescriptorTable()
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	logOutput("Done with descriptor table")
	c.regs = memWindow{mem: sdmaRegisterMem}
	c.table = memWindow{mem: descriptorTableMem}
	c.tableBus = descriptorTableMem.BusAddr()
	err = setSdmaSramBase(c.tableBus)
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	err = enableSdma()
	if err != nil {
		return errors.Wrap(err, "controller initialize")
	}
	sdmaActive = true
	c.initialized = true
	if Debug {
		logOutput(statusSdma())
	}
	return nil
}

//Stop will disable the Controller so that another Controller can be initialized.
/*
Channel handles claimed from this Controller must not be used afterwards as their register windows are unmapped.
*/
func (c *Controller) Stop() error {
	if !c.initialized {
		return nil
	}
	err := disableSdma()
	if err != nil {
		return errors.Wrap(err, "controller stop")
	}
	err = cleanupDescriptorTable()
	if err != nil {
		return errors.Wrap(err, "controller stop")
	}
	err = cleanupSdma()
	if err != nil {
		return errors.Wrap(err, "controller stop")
	}
	err = disableBusClock(registerValueSysconSdma)
	if err != nil {
		return errors.Wrap(err, "controller stop")
	}
	if !timerActive {
		//Don't unmap syscon while the timer still uses it.
		err = cleanupSyscon()
		if err != nil {
			return errors.Wrap(err, "controller stop")
		}
	}
	sdmaActive = false
	c.initialized = false
	return nil
}

//Channel claims the DMA channel with index channel and returns its handle.
/*
Each channel is handed out at most once so that its private registers and its transfer descriptor stay exclusively owned. The returned Channel is disabled. Set up the private registers and the transfer descriptor, then call Enable on it.
*/
func (c *Controller) Channel(channel uint32) (*Channel, error) {
	if !c.initialized {
		return nil, errors.Wrap(ErrControllerNotInitialized, "controller channel")
	}
	if channel >= channelCount {
		return nil, errors.Wrap(ErrWrongChannel, "controller channel")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.claimed&(1<<channel) != 0 {
		return nil, errors.Wrap(ErrChannelClaimed, "controller channel")
	}
	c.claimed |= 1 << channel
	return newChannel(channelCaps[channel], c.regs, c.table, c.tableBus), nil
}

//InterruptPending reports whether any channel has a pending regular or error interrupt.
/*
Use the handle methods AInterruptFired, BInterruptFired, and ErrorInterruptFired to find the source and ResetFlags to acknowledge it.
*/
func (c *Controller) InterruptPending() (interrupt bool, errorInterrupt bool) {
	if !c.initialized {
		return false, false
	}
	intStat := c.regs.read32(registerOffsetSdmaIntStat)
	return intStat&registerValueSdmaIntStatActiveInt != 0, intStat&registerValueSdmaIntStatActiveErrInt != 0
}

//Status returns a human readable status of the SDMA device for debugging.
func (c *Controller) Status() string {
	return statusSdma()
}
