package crihca

const (
	SamplesPerSubframe = 128
	SubframesPerFrame  = 8
	SamplesPerFrame    = SamplesPerSubframe * SubframesPerFrame

	MaxChannels   = 16
	MaxSampleRate = 0x7FFFFF
	MinFrameSize  = 8

	Version200 = 0x0200
)

// 加密类型, 对应 ciph 块中的值.
const (
	EncryptionNone  = 0
	EncryptionType1 = 1
	EncryptionKeyed = 56
)

// Info 是 HCA 头部描述的编码参数.
type Info struct {
	Version    int
	HeaderSize int

	ChannelCount    int
	SampleRate      int
	SampleCount     int
	FrameCount      int
	InsertedSamples int
	AppendedSamples int

	FrameSize        int
	MinResolution    int
	MaxResolution    int
	TrackCount       int
	ChannelConfig    int
	DecStereoType    int
	TotalBandCount   int
	BaseBandCount    int
	StereoBandCount  int
	HfrBandCount     int
	BandsPerHfrGroup int
	HfrGroupCount    int

	Looping         bool
	LoopStartFrame  int
	LoopEndFrame    int
	PreLoopSamples  int
	PostLoopSamples int

	VbrMaxFrameSize int
	VbrNoiseLevel   int

	AthTableType int

	EncryptionType int
	Volume         float32
	Comment        string
}

// TrimmedSampleCount 返回去掉编码器插入和追加的采样后的采样数.
func (h *Info) TrimmedSampleCount() int {
	return max(h.FrameCount*SamplesPerFrame-h.InsertedSamples-h.AppendedSamples, 0)
}

// LoopStartSample 返回循环起点在修剪后采样序列中的位置.
func (h *Info) LoopStartSample() int {
	return max(h.LoopStartFrame*SamplesPerFrame+h.PreLoopSamples-h.InsertedSamples, 0)
}

// LoopEndSample 返回循环终点在修剪后采样序列中的位置.
func (h *Info) LoopEndSample() int {
	return max((h.LoopEndFrame+1)*SamplesPerFrame-h.PostLoopSamples-h.InsertedSamples, 0)
}

type channelType int

const (
	discrete channelType = iota
	stereoPrimary
	stereoSecondary
)

// channelTypes 按轨道数和声道配置推出每个声道的立体声角色.
func (h *Info) channelTypes() []channelType {
	types := make([]channelType, h.ChannelCount)
	tracks := max(h.TrackCount, 1)
	perTrack := h.ChannelCount / tracks
	if h.StereoBandCount <= 0 || perTrack <= 1 {
		return types
	}

	const p, s, d = stereoPrimary, stereoSecondary, discrete
	for t := 0; t < tracks; t++ {
		ct := types[t*perTrack : (t+1)*perTrack]
		switch perTrack {
		case 2:
			copy(ct, []channelType{p, s})
		case 3:
			copy(ct, []channelType{p, s, d})
		case 4:
			copy(ct, []channelType{p, s})
			if h.ChannelConfig == 0 {
				copy(ct[2:], []channelType{p, s})
			}
		case 5:
			copy(ct, []channelType{p, s, d})
			if h.ChannelConfig <= 2 {
				copy(ct[3:], []channelType{p, s})
			}
		case 6:
			copy(ct, []channelType{p, s, d, d, p, s})
		case 7:
			copy(ct, []channelType{p, s, d, d, p, s, d})
		case 8:
			copy(ct, []channelType{p, s, d, d, p, s, p, s})
		}
	}
	return types
}
