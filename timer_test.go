package rpisdma

import (
	"testing"

	"github.com/DerLukas15/rpigpio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_Programming(t *testing.T) {
	w := simWindow{}
	programTimer(w, 255, 7)

	assert.Equal(t, uint32(7), w[registerOffsetTimerPr])
	assert.Equal(t, uint32(255), w[registerOffsetTimerMr3])
	assert.Equal(t, registerValueTimerMcrMr3Reset|registerValueTimerMcrMr0Reload|
		registerValueTimerMcrMr1Reload|registerValueTimerMcrMr2Reload, w[registerOffsetTimerMcr])
	assert.Equal(t, registerValueTimerPwmcEnable0|registerValueTimerPwmcEnable1|
		registerValueTimerPwmcEnable2, w[registerOffsetTimerPwmc])
	assert.Equal(t, registerValueTimerTcrEnable, w[registerOffsetTimerTcr])
}

func TestTimer_Disable(t *testing.T) {
	w := simWindow{}
	tm := NewTimer()
	tm.regs = w
	programTimer(w, 255, 0)
	timerActive = true

	enabled := &EnabledTimer{timerCore: tm.timerCore}
	tm.timerCore = nil

	disabled, err := enabled.Disable()
	require.NoError(t, err)
	require.NotNil(t, disabled)
	assert.Equal(t, uint32(0), w[registerOffsetTimerTcr])
	assert.False(t, timerActive)

	//the old handle is invalidated
	require.Panics(t, func() { enabled.Disable() })
	require.Panics(t, func() { enabled.Output(0) })
}

func TestEnabledTimer_Output(t *testing.T) {
	tm := NewTimer()
	enabled := &EnabledTimer{timerCore: tm.timerCore}

	for i := uint32(0); i < matchOutputCount; i++ {
		out, err := enabled.Output(i)
		require.NoError(t, err)
		assert.Equal(t, i, out.index)
	}

	_, err := enabled.Output(matchOutputCount)
	require.ErrorIs(t, err, ErrWrongOutput)
}

func TestPWMPin_Duty(t *testing.T) {
	w := simWindow{}
	core := &timerCore{regs: w}
	pin := &PWMPin{output: &MatchOutput{timer: core, index: 1}}

	w[registerOffsetTimerMr3] = 255
	pin.SetDuty(100)

	assert.Equal(t, uint32(100), w[registerOffsetTimerMsr1])
	assert.Equal(t, uint32(100), pin.Duty())
	assert.Equal(t, uint32(255), pin.MaxDuty())

	//outputs write disjoint shadow registers
	other := &PWMPin{output: &MatchOutput{timer: core, index: 2}}
	other.SetDuty(42)
	assert.Equal(t, uint32(100), w[registerOffsetTimerMsr1])
	assert.Equal(t, uint32(42), w[registerOffsetTimerMsr2])
}

func TestMatchOutput_AttachValidation(t *testing.T) {
	core := &timerCore{regs: simWindow{}}

	//pin 13 belongs to match output 1, not 0
	out := &MatchOutput{timer: core, index: 0}
	_, err := out.Attach(13)
	require.ErrorIs(t, err, ErrPinNotAllowed)

	attached := &MatchOutput{timer: core, index: 0, pin: new(rpigpio.Pin)}
	_, err = attached.Attach(18)
	require.ErrorIs(t, err, ErrOutputAttached)
}

func TestPWMPin_DetachValidation(t *testing.T) {
	core := &timerCore{regs: simWindow{}}
	pin := &PWMPin{output: &MatchOutput{timer: core, index: 0}}
	require.ErrorIs(t, pin.Detach(), ErrOutputNotAttached)
}

func TestTimerOutputs_AltModes(t *testing.T) {
	mode, err := timerOutputs.getAltMode(0, 12)
	require.NoError(t, err)
	assert.Equal(t, rpigpio.ModeAlternate0, mode)

	mode, err = timerOutputs.getAltMode(0, 18)
	require.NoError(t, err)
	assert.Equal(t, rpigpio.ModeAlternate5, mode)

	mode, err = timerOutputs.getAltMode(2, 41)
	require.NoError(t, err)
	assert.Equal(t, rpigpio.ModeAlternate5, mode)

	_, err = timerOutputs.getAltMode(1, 40)
	require.ErrorIs(t, err, ErrPinNotAllowed)
}

func TestPrescalerForFrequency(t *testing.T) {
	//19.2 MHz crystal, 750 Hz PWM at 256 steps
	prescaler, err := prescalerForFrequency(19200000, 750, 256)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), prescaler)

	//divides exactly to one, prescaler disabled
	prescaler, err = prescalerForFrequency(19200000, 75000, 256)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), prescaler)

	_, err = prescalerForFrequency(19200000, 0, 256)
	require.ErrorIs(t, err, ErrWrongFrequency)

	_, err = prescalerForFrequency(19200000, 19200001, 256)
	require.ErrorIs(t, err, ErrWrongFrequency)

	_, err = prescalerForFrequency(19200000, 750, 1)
	require.ErrorIs(t, err, ErrWrongResolution)

	//resolution beyond what the crystal can divide down to
	_, err = prescalerForFrequency(19200000, 75000, 257)
	require.ErrorIs(t, err, ErrWrongResolution)
}

func TestTimer_EnableWhileActive(t *testing.T) {
	timerActive = true
	defer func() { timerActive = false }()

	_, err := NewTimer().Enable(255, 0)
	require.ErrorIs(t, err, ErrTimerActive)
}
