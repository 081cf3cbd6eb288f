//Package rpisdma is used for controlling the SDMA engine IP on the Raspberry Pi using plain GO.
package rpisdma

import (
	"errors"

	"github.com/DerLukas15/rpihardware"
	"github.com/sirupsen/logrus"
)

// Errors
var (
	ErrNoSysconMap              = errors.New("syscon device map not set. Not initialized?")
	ErrNoHardware               = errors.New("no hardware set. Not initialized?")
	ErrControllerActive         = errors.New("controller already active")
	ErrControllerInitialized    = errors.New("controller already initialized")
	ErrControllerNotInitialized = errors.New("controller not initialized")
	ErrWrongChannel             = errors.New("wrong channel index")
	ErrChannelClaimed           = errors.New("channel already claimed")
	ErrTimerActive              = errors.New("timer already active")
	ErrWrongOutput              = errors.New("wrong match output index")
	ErrOutputAttached           = errors.New("match output already attached")
	ErrOutputNotAttached        = errors.New("match output not attached")
	ErrPinNotAllowed            = errors.New("selected pin not allowed")
	ErrWrongFrequency           = errors.New("Wrong Frequency")
	ErrWrongResolution          = errors.New("Wrong Resolution")
)

var (
	sdmaActive  bool                  // Set once a controller is active
	timerActive bool                  // Set once a timer is active
	curHardware *rpihardware.Hardware // Set during initialize
)

//CFG register fields. Combine with '|' and write through Channel.Cfg().
const (
	CfgPeriphReqEn  uint32 = 1 << 0
	CfgHwTrigEn     uint32 = 1 << 1
	CfgTrigPol      uint32 = 1 << 4
	CfgTrigType     uint32 = 1 << 5
	CfgTrigBurst    uint32 = 1 << 6
	CfgSrcBurstWrap uint32 = 1 << 14
	CfgDstBurstWrap uint32 = 1 << 15
)

//XFERCFG register fields. Combine with '|' and write through Channel.XferCfg().
const (
	XferCfgValid   uint32 = 1 << 0
	XferCfgReload  uint32 = 1 << 1
	XferCfgSwTrig  uint32 = 1 << 2
	XferCfgClrTrig uint32 = 1 << 3
	XferCfgSetIntA uint32 = 1 << 4
	XferCfgSetIntB uint32 = 1 << 5
)

//helper functions for the CFG and XFERCFG register fields
var (
	//CfgBurstPower sets the burst size to 2^val transfers.
	CfgBurstPower = func(val uint32) uint32 {
		return ((val & 0xf) << 8)
	}
	//CfgChPriority sets the channel priority. 0 is the highest priority.
	CfgChPriority = func(val uint32) uint32 {
		return ((val & 0x7) << 16)
	}
	//XferCfgWidth sets the transfer width. 0 = 8 bit, 1 = 16 bit, 2 = 32 bit.
	XferCfgWidth = func(val uint32) uint32 {
		return ((val & 0x3) << 8)
	}
	//XferCfgSrcInc sets the source increment per transfer in multiples of the width.
	XferCfgSrcInc = func(val uint32) uint32 {
		return ((val & 0x3) << 12)
	}
	//XferCfgDstInc sets the destination increment per transfer in multiples of the width.
	XferCfgDstInc = func(val uint32) uint32 {
		return ((val & 0x3) << 14)
	}
	//XferCfgXferCount takes the desired number of transfers. The hardware stores count minus one.
	XferCfgXferCount = func(count uint32) uint32 {
		return (((count - 1) & 0x3ff) << 16)
	}
)

//Enable Debug output
var Debug bool

var logger = logrus.New()

func init() {
	logger.SetLevel(logrus.DebugLevel)
}

//SetLogger replaces the logger used for Debug output.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		logger = l
	}
}

func logOutput(msg string) {
	if Debug {
		logger.Debug(msg)
	}
}
