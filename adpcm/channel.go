package adpcm

// LoopContext 是从循环点继续解码时需要恢复的预测器状态.
type LoopContext struct {
	Sample        int
	NibbleAddress int
	PredScale     int16
	Hist1         int16
	Hist2         int16
}

// Channel 是交给 ADPCM 解码器的单声道数据及其编码参数.
type Channel struct {
	SampleCount int
	Audio       []byte

	Coefs     [16]int16
	Gain      int16
	PredScale int16
	Hist1     int16
	Hist2     int16

	Loop LoopContext
}

// NewChannel 创建一个声道, audio 为该声道的编码数据.
func NewChannel(sampleCount int, audio []byte) *Channel {
	return &Channel{SampleCount: sampleCount, Audio: audio}
}

// SetLoopContext 记录循环起点 loopStart 处的预测器状态.
func (c *Channel) SetLoopContext(loopStart int, predScale, hist1, hist2 int16) {
	c.Loop = LoopContext{
		Sample:        loopStart,
		NibbleAddress: NibbleAddress(loopStart),
		PredScale:     predScale,
		Hist1:         hist1,
		Hist2:         hist2,
	}
}
