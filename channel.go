package rpisdma

//channelCore holds the state both handle types share. A transition moves the
//core from the old handle into the new one and nils the old pointer, so stale
//handles panic instead of touching hardware.
type channelCore struct {
	cap        channelCap
	regs       regWindow
	descriptor *ChannelDescriptor
	cfg        *Register
	xferCfg    *Register
}

//newChannel builds the disabled handle for one capability. Called once per
//channel by the controller which guarantees exclusive ownership.
func newChannel(cap channelCap, regs regWindow, table regWindow, tableBus uint32) *Channel {
	core := &channelCore{
		cap:  cap,
		regs: regs,
		descriptor: &ChannelDescriptor{
			w:      table,
			offset: cap.index * descriptorStride,
			bus:    tableBus,
		},
		cfg:     &Register{w: regs, offset: cap.cfgOffset},
		xferCfg: &Register{w: regs, offset: cap.xferCfgOffset},
	}
	return &Channel{channelCore: core}
}

func (c *channelCore) mustValid() {
	if c == nil {
		panic("invalid channel handle. Already transitioned?")
	}
}

func (c *channelCore) shared() sharedRegisters {
	return newSharedRegisters(c.regs, c.cap.flag)
}

//Index returns the channel number.
func (c *channelCore) Index() uint32 {
	c.mustValid()
	return c.cap.index
}

//Flag returns the channel bit as used in the shared registers.
func (c *channelCore) Flag() uint32 {
	c.mustValid()
	return c.cap.flag
}

//Cfg returns the private CFG register of the channel.
func (c *channelCore) Cfg() *Register {
	c.mustValid()
	return c.cfg
}

//XferCfg returns the private XFERCFG register of the channel.
func (c *channelCore) XferCfg() *Register {
	c.mustValid()
	return c.xferCfg
}

//Descriptor returns the transfer descriptor owned by the channel.
func (c *channelCore) Descriptor() *ChannelDescriptor {
	c.mustValid()
	return c.descriptor
}

//Channel is a disabled SDMA channel. Claim one through Controller.Channel.
/*
A channel has to be enabled before it can move data. Enable returns an
EnabledChannel and invalidates this handle. Operations which only make sense
on a running channel (trigger, status, interrupts) exist only on
EnabledChannel, so misuse fails at compile time rather than on the bus.

Configure the private CFG and XFERCFG registers and the transfer descriptor
while the channel is disabled.
*/
type Channel struct {
	*channelCore
}

//Enable switches the channel on and returns the enabled handle. The old
//handle is invalidated.
func (c *Channel) Enable() *EnabledChannel {
	core := c.channelCore
	core.mustValid()
	c.channelCore = nil
	core.shared().enable()
	return &EnabledChannel{channelCore: core}
}

//EnabledChannel is an SDMA channel which is switched on. It is created by
//Channel.Enable and turned back into a Channel by Disable.
type EnabledChannel struct {
	*channelCore
}

//Disable switches the channel off and returns the disabled handle. The old
//handle is invalidated. Disabling does not clear pending interrupt flags.
func (c *EnabledChannel) Disable() *Channel {
	core := c.channelCore
	core.mustValid()
	c.channelCore = nil
	core.shared().disable()
	return &Channel{channelCore: core}
}

//Trigger requests a transfer start by software.
func (c *EnabledChannel) Trigger() {
	c.mustValid()
	c.shared().trigger()
}

//IsActive reports whether the channel is active. A channel turns active once
//triggered and stays active until the transfer finished or was aborted.
func (c *EnabledChannel) IsActive() bool {
	c.mustValid()
	return c.shared().isActive()
}

//IsBusy reports whether the channel is currently moving data on the bus.
func (c *EnabledChannel) IsBusy() bool {
	c.mustValid()
	return c.shared().isBusy()
}

//EnableInterrupts enables the error and both regular interrupts of the
//channel. Other channels are not affected.
func (c *EnabledChannel) EnableInterrupts() {
	c.mustValid()
	c.shared().enableInterrupts()
}

//DisableInterrupts disables the error and both regular interrupts of the
//channel. Other channels are not affected.
func (c *EnabledChannel) DisableInterrupts() {
	c.mustValid()
	c.shared().disableInterrupts()
}

//ErrorInterruptFired reports whether the error interrupt flag of the channel
//is set.
func (c *EnabledChannel) ErrorInterruptFired() bool {
	c.mustValid()
	return c.shared().errorInterruptFired()
}

//AInterruptFired reports whether the A interrupt flag of the channel is set.
func (c *EnabledChannel) AInterruptFired() bool {
	c.mustValid()
	return c.shared().aInterruptFired()
}

//BInterruptFired reports whether the B interrupt flag of the channel is set.
func (c *EnabledChannel) BInterruptFired() bool {
	c.mustValid()
	return c.shared().bInterruptFired()
}

//ResetFlags clears the error and both interrupt flags of the channel. Flags
//of other channels stay untouched.
func (c *EnabledChannel) ResetFlags() {
	c.mustValid()
	c.shared().resetFlags()
}
