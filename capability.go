package rpisdma

//channelCount is the number of physical channels of the SDMA engine.
const channelCount = 25

//channelCap describes one physical channel. The flag is the channel bit used
//in every shared register. The offsets locate the private register block.
type channelCap struct {
	index         uint32
	flag          uint32
	cfgOffset     uint32
	xferCfgOffset uint32
}

var channelCaps [channelCount]channelCap

func init() {
	for i := uint32(0); i < channelCount; i++ {
		channelCaps[i] = channelCap{
			index:         i,
			flag:          1 << i,
			cfgOffset:     registerOffsetSdmaChannel(i, registerOffsetSdmaCfg),
			xferCfgOffset: registerOffsetSdmaChannel(i, registerOffsetSdmaXferCfg),
		}
	}
}
