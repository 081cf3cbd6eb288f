package rpisdma

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//simController returns a Controller in the initialized state wired to a
//simulated register bank, bypassing the hardware bring-up.
func simController(bank *simBank) *Controller {
	c := New()
	c.initialized = true
	c.regs = bank
	c.table = simWindow{}
	c.tableBus = 0x3f000000
	return c
}

func TestController_SettersBeforeInitialize(t *testing.T) {
	c := New()
	require.NoError(t, c.SetMemDevice("/dev/gpiomem"))
	require.NoError(t, c.SetBusOffset(0x00370000))
	assert.Equal(t, "/dev/gpiomem", c.memDevice)
	assert.Equal(t, uint32(0x00370000), c.busOffset)
}

func TestController_SettersAfterInitialize(t *testing.T) {
	c := simController(newSimBank())
	require.ErrorIs(t, c.SetMemDevice("/dev/mem"), ErrControllerInitialized)
	require.ErrorIs(t, c.SetBusOffset(0), ErrControllerInitialized)
}

func TestController_ChannelBeforeInitialize(t *testing.T) {
	c := New()
	_, err := c.Channel(0)
	require.ErrorIs(t, err, ErrControllerNotInitialized)
}

func TestController_ChannelClaims(t *testing.T) {
	bank := newSimBank()
	c := simController(bank)

	ch2, err := c.Channel(2)
	require.NoError(t, err)
	require.NotNil(t, ch2)
	assert.Equal(t, uint32(2), ch2.Index())

	//the same channel cannot be claimed twice
	_, err = c.Channel(2)
	require.ErrorIs(t, err, ErrChannelClaimed)

	//other channels are still available
	ch0, err := c.Channel(0)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), ch0.Index())

	//claimed handles operate on the controller's register window
	ch2.Enable().Trigger()
	assert.Equal(t, uint32(0b100), bank.trig)
}

func TestController_ChannelWrongIndex(t *testing.T) {
	c := simController(newSimBank())
	_, err := c.Channel(channelCount)
	require.ErrorIs(t, err, ErrWrongChannel)
}

func TestController_InterruptPending(t *testing.T) {
	bank := newSimBank()
	c := simController(bank)

	interrupt, errorInterrupt := c.InterruptPending()
	assert.False(t, interrupt)
	assert.False(t, errorInterrupt)

	bank.intStat = registerValueSdmaIntStatActiveInt
	interrupt, errorInterrupt = c.InterruptPending()
	assert.True(t, interrupt)
	assert.False(t, errorInterrupt)

	bank.intStat |= registerValueSdmaIntStatActiveErrInt
	interrupt, errorInterrupt = c.InterruptPending()
	assert.True(t, interrupt)
	assert.True(t, errorInterrupt)
}

func TestController_InterruptPendingNotInitialized(t *testing.T) {
	interrupt, errorInterrupt := New().InterruptPending()
	assert.False(t, interrupt)
	assert.False(t, errorInterrupt)
}

func TestController_InitializeWhileActive(t *testing.T) {
	sdmaActive = true
	defer func() { sdmaActive = false }()

	err := New().Initialize()
	require.ErrorIs(t, err, ErrControllerActive)
}

func TestController_InitializeTwice(t *testing.T) {
	c := simController(newSimBank())
	//a second Initialize on the same controller is a no-op
	require.NoError(t, c.Initialize())
}

func TestController_Stop(t *testing.T) {
	c := simController(newSimBank())
	sdmaActive = true

	//all device maps are nil in tests, so Stop only drops the singleton
	require.NoError(t, c.Stop())
	assert.False(t, sdmaActive)
	assert.False(t, c.initialized)

	//stopping again is a no-op
	require.NoError(t, c.Stop())

	_, err := c.Channel(0)
	require.ErrorIs(t, err, ErrControllerNotInitialized)
}
