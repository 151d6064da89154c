package dsp

import "github.com/WJQSERVER/gameaudio/adpcm"

// Structure 是解析后的 DSP 文件.
// 地址字段以 nibble 为单位, AudioData 在只读取头部时为 nil.
type Structure struct {
	SampleCount    int
	NibbleCount    int
	SampleRate     int
	Looping        bool
	Format         int
	StartAddress   int
	EndAddress     int
	CurrentAddress int

	ChannelCount        int
	FramesPerInterleave int

	Channels  []ChannelInfo
	AudioData [][]byte
}

// LoopStart 返回循环起点的采样位置.
func (s *Structure) LoopStart() int { return adpcm.SampleFromNibble(s.StartAddress) }

// LoopEnd 返回循环终点的采样位置.
func (s *Structure) LoopEnd() int { return adpcm.SampleFromNibble(s.EndAddress) }

// ChannelInfo 是每个声道头部中的解码参数.
type ChannelInfo struct {
	Coefs     [16]int16
	Gain      int16
	PredScale int16
	Hist1     int16
	Hist2     int16

	LoopPredScale int16
	LoopHist1     int16
	LoopHist2     int16
}

// Configuration 是按原布局写回文件所需的参数.
type Configuration struct {
	FramesPerInterleave int
}
