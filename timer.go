package rpisdma

import (
	"os"

	"github.com/DerLukas15/rpigpio"
	"github.com/DerLukas15/rpihardware"
	"github.com/DerLukas15/rpimemmap"
	"github.com/pkg/errors"
)

/*
 * Pin map of alternate pin configuration for the match outputs
 * GPIO    MAT0   MAT1   MAT2
 *  12      0
 *  13             0
 *  18      5
 *  19             5
 *  40                    0
 *  41                    5
 */

const (
	registerTimerBusOffset uint32 = 0x00364000

	//Register Offsets
	registerOffsetTimerTcr  uint32 = 0x004 // Timer control
	registerOffsetTimerPr   uint32 = 0x00c // Prescale
	registerOffsetTimerMcr  uint32 = 0x014 // Match control
	registerOffsetTimerMr0  uint32 = 0x018 // Match 0
	registerOffsetTimerMr1  uint32 = 0x01c // Match 1
	registerOffsetTimerMr2  uint32 = 0x020 // Match 2
	registerOffsetTimerMr3  uint32 = 0x024 // Match 3, resets the counter
	registerOffsetTimerPwmc uint32 = 0x074 // PWM control
	registerOffsetTimerMsr0 uint32 = 0x078 // Match 0 shadow
	registerOffsetTimerMsr1 uint32 = 0x07c // Match 1 shadow
	registerOffsetTimerMsr2 uint32 = 0x080 // Match 2 shadow

	//Register values Tcr
	registerValueTimerTcrEnable uint32 = (1 << 0) // Start the counter

	//Register values Mcr
	registerValueTimerMcrMr3Reset  uint32 = (1 << 10) // Reset the counter on match 3
	registerValueTimerMcrMr0Reload uint32 = (1 << 24) // Load match 0 from its shadow register on reset
	registerValueTimerMcrMr1Reload uint32 = (1 << 25) // Load match 1 from its shadow register on reset
	registerValueTimerMcrMr2Reload uint32 = (1 << 26) // Load match 2 from its shadow register on reset

	//Register values Pwmc
	registerValueTimerPwmcEnable0 uint32 = (1 << 0) // PWM mode for match output 0
	registerValueTimerPwmcEnable1 uint32 = (1 << 1) // PWM mode for match output 1
	registerValueTimerPwmcEnable2 uint32 = (1 << 2) // PWM mode for match output 2

	matchOutputCount uint32 = 3
)

//helper functions for the match register blocks
var (
	registerOffsetTimerMsr = func(output uint32) uint32 {
		return registerOffsetTimerMsr0 + output*4
	}
)

var timerRegisterMem rpimemmap.MemMap //stores reference to the timer device

type timerPinDefinition struct {
	pinNum  *rpigpio.Pin
	altMode rpigpio.Mode
}

type timerPinTable []timerPinDefinition

type timerOutputsType []timerPinTable

var (
	pin12, _     = rpigpio.NewPin(12)
	pin13, _     = rpigpio.NewPin(13)
	pin18, _     = rpigpio.NewPin(18)
	pin19, _     = rpigpio.NewPin(19)
	pin40, _     = rpigpio.NewPin(40)
	pin41, _     = rpigpio.NewPin(41)
	timerOutputs = timerOutputsType{
		timerPinTable{ // Mapping of Pin to alternate function for match output 0
			{
				pinNum:  pin12,
				altMode: rpigpio.ModeAlternate0,
			},
			{
				pinNum:  pin18,
				altMode: rpigpio.ModeAlternate5,
			},
		},
		timerPinTable{ // Mapping of Pin to alternate function for match output 1
			{
				pinNum:  pin13,
				altMode: rpigpio.ModeAlternate0,
			},
			{
				pinNum:  pin19,
				altMode: rpigpio.ModeAlternate5,
			},
		},
		timerPinTable{ // Mapping of Pin to alternate function for match output 2
			{
				pinNum:  pin40,
				altMode: rpigpio.ModeAlternate0,
			},
			{
				pinNum:  pin41,
				altMode: rpigpio.ModeAlternate5,
			},
		},
	}
)

func (pt timerPinDefinition) getAltMode() (rpigpio.Mode, error) {
	return pt.altMode, nil
}

func (ptl timerPinTable) getAltMode(pinNum uint32) (rpigpio.Mode, error) {
	for _, curEntry := range ptl {
		if curEntry.pinNum.Is(pinNum) {
			return curEntry.getAltMode()
		}
	}
	return 0, errors.Wrap(ErrPinNotAllowed, "")
}

func (to timerOutputsType) getAltMode(outputNum uint32, pinNum uint32) (rpigpio.Mode, error) {
	return to[outputNum].getAltMode(pinNum)
}

//Initialize the timer device and get virtual address
func initializeTimer() error {
	if timerRegisterMem != nil {
		//Already initialized
		logOutput("Timer already initialized. Skipping")
		return nil
	}
	timerRegisterMem = rpimemmap.NewPeripheral(uint32(os.Getpagesize()))
	err := timerRegisterMem.Map(registerTimerBusOffset, rpimemmap.MemDevDefault, 0)
	if err != nil {
		return err
	}
	logOutput("Timer: " + timerRegisterMem.String())
	return nil
}

//cleanup the mapping to the timer device
func cleanupTimer() error {
	if timerRegisterMem == nil {
		return nil
	}
	err := timerRegisterMem.Unmap()
	if err != nil {
		return err
	}
	timerRegisterMem = nil
	return nil
}

//programTimer writes the PWM setup. Match 3 resets the counter and defines the
//period, the other matches take their values from the shadow registers so they
//update without glitches at the period boundary.
func programTimer(w regWindow, period uint32, prescaler uint32) {
	w.write32(registerOffsetTimerPr, prescaler)
	w.write32(registerOffsetTimerMr3, period)
	w.write32(registerOffsetTimerMcr, registerValueTimerMcrMr3Reset|
		registerValueTimerMcrMr0Reload|registerValueTimerMcrMr1Reload|registerValueTimerMcrMr2Reload)
	w.write32(registerOffsetTimerPwmc, registerValueTimerPwmcEnable0|
		registerValueTimerPwmcEnable1|registerValueTimerPwmcEnable2)
	w.write32(registerOffsetTimerTcr, registerValueTimerTcrEnable)
}

//timerCore holds the state both timer handle types share. A transition moves
//the core from the old handle into the new one and nils the old pointer, so
//stale handles panic instead of touching hardware.
type timerCore struct {
	regs    regWindow
	outputs [matchOutputCount]*MatchOutput
}

func (t *timerCore) mustValid() {
	if t == nil {
		panic("invalid timer handle. Already transitioned?")
	}
}

//Timer is the disabled match timer used for PWM output.
/*
The timer has three match outputs which can drive a pin each. A fourth match defines the PWM period and is not available as an output. Enable the timer to claim the match outputs.

Only one timer can be enabled at a time.
*/
type Timer struct {
	*timerCore
}

//NewTimer returns a new Timer in the disabled state.
func NewTimer() *Timer {
	core := &timerCore{}
	for i := range core.outputs {
		core.outputs[i] = &MatchOutput{
			timer: core,
			index: uint32(i),
		}
	}
	return &Timer{timerCore: core}
}

//Enable starts the timer with the given period and prescaler and returns the enabled handle. The old handle is invalidated.
/*
The period sets the resolution of the PWM and is returned by MaxDuty. The counter advances once every prescaler plus one bus clock cycles. Use PWMFrequency to derive the prescaler for a target frequency.
*/
func (t *Timer) Enable(period uint32, prescaler uint32) (*EnabledTimer, error) {
	core := t.timerCore
	core.mustValid()
	if timerActive {
		return nil, errors.Wrap(ErrTimerActive, "timer enable")
	}
	if curHardware == nil {
		var err error
		curHardware, err = rpihardware.Check()
		if err != nil {
			return nil, errors.Wrap(err, "timer enable")
		}
	}
	logOutput("Initializing GPIO package")
	err := rpigpio.Initialize()
	if err != nil {
		return nil, errors.Wrap(err, "timer enable")
	}
	logOutput("Done with GPIO package")
	logOutput("Initializing syscon peripheral")
	err = initializeSyscon()
	if err != nil {
		return nil, errors.Wrap(err, "timer enable")
	}
	err = enableBusClock(registerValueSysconTimer)
	if err != nil {
		return nil, errors.Wrap(err, "timer enable")
	}
	logOutput("Done with syscon peripheral")
	logOutput("Initializing timer peripheral")
	err = initializeTimer()
	if err != nil {
		return nil, errors.Wrap(err, "timer enable")
	}
	logOutput("Done with timer peripheral")
	core.regs = memWindow{mem: timerRegisterMem}
	programTimer(core.regs, period, prescaler)
	timerActive = true
	t.timerCore = nil
	return &EnabledTimer{timerCore: core}, nil
}

//EnabledTimer is a running match timer. It is created by Timer.Enable and
//turned back into a Timer by Disable.
type EnabledTimer struct {
	*timerCore
}

//Disable stops the timer and returns the disabled handle. The old handle is invalidated.
/*
All still attached match outputs are detached and their pins are switched back to regular output. PWMPin handles from this timer must not be used afterwards.
*/
func (t *EnabledTimer) Disable() (*Timer, error) {
	core := t.timerCore
	core.mustValid()
	core.regs.write32(registerOffsetTimerTcr, 0)
	for _, curOutput := range core.outputs {
		if curOutput == nil || curOutput.pin == nil {
			continue
		}
		curOutput.release()
	}
	err := disableBusClock(registerValueSysconTimer)
	if err != nil {
		return nil, errors.Wrap(err, "timer disable")
	}
	err = cleanupTimer()
	if err != nil {
		return nil, errors.Wrap(err, "timer disable")
	}
	if !sdmaActive {
		//Don't unmap syscon while a controller still uses it.
		err = cleanupSyscon()
		if err != nil {
			return nil, errors.Wrap(err, "timer disable")
		}
	}
	timerActive = false
	t.timerCore = nil
	return &Timer{timerCore: core}, nil
}

//Output returns the match output with index output. Valid outputs are 0 to 2.
func (t *EnabledTimer) Output(output uint32) (*MatchOutput, error) {
	t.mustValid()
	if output >= matchOutputCount {
		return nil, errors.Wrap(ErrWrongOutput, "timer output")
	}
	return t.outputs[output], nil
}

//MatchOutput is one of the three PWM capable match outputs of the timer.
type MatchOutput struct {
	timer *timerCore
	index uint32
	pin   *rpigpio.Pin
}

//Attach connects the match output to a pin and returns the PWM handle for it.
/*
The pin is checked against the pin map of the match output. Only one pin can be attached per output.
*/
func (o *MatchOutput) Attach(pin uint32) (*PWMPin, error) {
	if o.pin != nil {
		return nil, errors.Wrap(ErrOutputAttached, "output attach")
	}
	altMode, err := timerOutputs.getAltMode(o.index, pin)
	if err != nil {
		return nil, errors.Wrap(err, "output attach")
	}
	newPin, err := rpigpio.NewPin(pin)
	if err != nil {
		return nil, errors.Wrap(err, "output attach")
	}
	//Start with the output idle before muxing the pin over.
	o.timer.regs.write32(registerOffsetTimerMsr(o.index), 0)
	newPin.Mode(altMode)
	o.pin = newPin
	return &PWMPin{output: o}, nil
}

//switches the pin back to a regular output and releases it
func (o *MatchOutput) release() {
	o.pin.Mode(rpigpio.ModeOut)
	o.pin.Set(0)
	o.pin = nil
}

//PWMPin is a pin driven by one match output of the running timer.
type PWMPin struct {
	output *MatchOutput
}

//SetDuty sets the match value for the output in counter ticks.
/*
The value is written to the shadow register and taken over at the next period boundary. Values above MaxDuty keep the output saturated for the whole period.
*/
func (p *PWMPin) SetDuty(duty uint32) {
	p.output.timer.regs.write32(registerOffsetTimerMsr(p.output.index), duty)
}

//Duty returns the match value most recently set for the output.
func (p *PWMPin) Duty() uint32 {
	return p.output.timer.regs.read32(registerOffsetTimerMsr(p.output.index))
}

//MaxDuty returns the highest useful duty value, which is the period of the timer.
func (p *PWMPin) MaxDuty() uint32 {
	return p.output.timer.regs.read32(registerOffsetTimerMr3)
}

//Detach releases the pin of the match output. The pin is switched back to a regular output.
func (p *PWMPin) Detach() error {
	if p.output.pin == nil {
		return errors.Wrap(ErrOutputNotAttached, "pin detach")
	}
	p.output.release()
	return nil
}

//PWMFrequency returns the prescaler for a PWM with the given frequency and resolution.
/*
The resolution is the period in counter ticks, so frequency times resolution has to divide the crystal frequency. The remainder is truncated which lowers the actual output frequency accordingly.
*/
func PWMFrequency(frequency uint32, resolution uint32) (uint32, error) {
	if curHardware == nil {
		var err error
		curHardware, err = rpihardware.Check()
		if err != nil {
			return 0, errors.Wrap(err, "PWMFrequency")
		}
	}
	return prescalerForFrequency(curHardware.OscFreq, frequency, resolution)
}

//prescalerForFrequency derives the prescaler from the crystal frequency. The
//hardware divides by the value plus one, so the result is stored minus one.
func prescalerForFrequency(oscFreq uint32, frequency uint32, resolution uint32) (uint32, error) {
	if frequency == 0 || frequency > oscFreq {
		return 0, errors.Wrap(ErrWrongFrequency, "prescaler")
	}
	if resolution < 2 || resolution > oscFreq/frequency {
		return 0, errors.Wrap(ErrWrongResolution, "prescaler")
	}
	return oscFreq/(frequency*resolution) - 1, nil
}
