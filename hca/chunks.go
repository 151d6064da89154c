package hca

import (
	"fmt"

	"github.com/WJQSERVER/gameaudio"
	"github.com/WJQSERVER/gameaudio/binstream"
	"github.com/WJQSERVER/gameaudio/crihca"
)

const (
	sigMask = 0x7F7F7F7F // 签名掩码, 每个字节的最高位可能被置位
	sigHCA  = 0x48434100 // HCA 签名
	sigFMT  = 0x666D7400 // fmt 签名
	sigCOMP = 0x636F6D70 // comp 签名
	sigDEC  = 0x64656300 // dec 签名
	sigVBR  = 0x76627200 // vbr 签名
	sigATH  = 0x61746800 // ath 签名
	sigLOOP = 0x6C6F6F70 // loop 签名
	sigCIPH = 0x63697068 // ciph 签名
	sigRVA  = 0x72766100 // rva 签名
	sigCOMM = 0x636F6D6D // comm 签名
	sigPAD  = 0x70616400 // pad 签名
)

// chunkName 把块签名转换为可读的文本, 用于错误信息.
func chunkName(sig uint32) string {
	b := []byte{byte(sig >> 24), byte(sig >> 16), byte(sig >> 8), byte(sig)}
	return fmt.Sprintf("%q", b)
}

// readFmt 读取 fmt 块: 声道数, 24 位采样率, 帧数和首尾补齐的采样数.
func readFmt(f *binstream.Fields, info *crihca.Info) error {
	info.ChannelCount = int(f.Uint8())
	info.SampleRate = int(f.Uint8())<<16 | int(f.Uint16())
	info.FrameCount = int(f.Uint32())
	info.InsertedSamples = int(f.Uint16())
	info.AppendedSamples = int(f.Uint16())
	info.SampleCount = info.FrameCount * crihca.SamplesPerFrame
	if f.Err != nil {
		return nil
	}

	if info.ChannelCount < 1 || info.ChannelCount > crihca.MaxChannels {
		return fmt.Errorf("channel count %d: %w", info.ChannelCount, gameaudio.ErrInvalidHeader)
	}
	if info.SampleRate < 1 || info.SampleRate > crihca.MaxSampleRate {
		return fmt.Errorf("sample rate %d: %w", info.SampleRate, gameaudio.ErrInvalidHeader)
	}
	return nil
}

// readComp 读取 comp 块.
func readComp(f *binstream.Fields, info *crihca.Info, s *Structure) error {
	info.FrameSize = int(f.Uint16())
	info.MinResolution = int(f.Uint8())
	info.MaxResolution = int(f.Uint8())
	info.TrackCount = int(f.Uint8())
	info.ChannelConfig = int(f.Uint8())
	info.TotalBandCount = int(f.Uint8())
	info.BaseBandCount = int(f.Uint8())
	info.StereoBandCount = int(f.Uint8())
	info.BandsPerHfrGroup = int(f.Uint8())
	s.Reserved1 = int(f.Uint8())
	s.Reserved2 = int(f.Uint8())
	return checkResolution(info)
}

// readDec 读取 dec 块. 它是 comp 的紧凑写法: 频带数减一存放,
// 轨道数和声道配置共用一个字节, 立体声类型为 0 时没有立体声频带.
func readDec(f *binstream.Fields, info *crihca.Info) error {
	info.FrameSize = int(f.Uint16())
	info.MinResolution = int(f.Uint8())
	info.MaxResolution = int(f.Uint8())
	info.TotalBandCount = int(f.Uint8()) + 1
	info.BaseBandCount = int(f.Uint8()) + 1

	packed := f.Uint8()
	info.TrackCount = int(packed >> 4)
	info.ChannelConfig = int(packed & 0xF)
	info.DecStereoType = int(f.Uint8())

	if info.DecStereoType == 0 {
		info.BaseBandCount = info.TotalBandCount
	} else {
		info.StereoBandCount = info.TotalBandCount - info.BaseBandCount
	}
	return checkResolution(info)
}

func checkResolution(info *crihca.Info) error {
	if info.MinResolution > info.MaxResolution || info.MaxResolution > 0x1F {
		return fmt.Errorf("resolution range %d..%d: %w", info.MinResolution, info.MaxResolution, gameaudio.ErrInvalidHeader)
	}
	return nil
}

func readLoop(f *binstream.Fields, info *crihca.Info) {
	info.Looping = true
	info.LoopStartFrame = int(f.Uint32())
	info.LoopEndFrame = int(f.Uint32())
	info.PreLoopSamples = int(f.Uint16())
	info.PostLoopSamples = int(f.Uint16())
}

func readVbr(f *binstream.Fields, info *crihca.Info) {
	info.VbrMaxFrameSize = int(f.Uint16())
	info.VbrNoiseLevel = int(f.Uint16())
}

// readComm 读取注释块: 1 字节长度后接以 NUL 结尾的文本, 文本不能越过头部末尾.
func readComm(f *binstream.Fields, info *crihca.Info, headerEnd int64) {
	f.Uint8()
	if f.Err != nil {
		return
	}
	pos, err := f.R.Position()
	if err != nil {
		f.Err = err
		return
	}
	info.Comment, f.Err = f.R.ReadCString(int(headerEnd - pos))
}
