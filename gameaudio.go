// Package gameaudio 定义了 DSP 和 HCA 容器读取器共用的两阶段流程:
// 先把文件解析成容器结构, 再投影为与编码无关的音频流描述.
// 具体的读取器位于 dsp 和 hca 子包中.
package gameaudio

import (
	"errors"

	"github.com/WJQSERVER/gameaudio/adpcm"
	"github.com/WJQSERVER/gameaudio/crihca"
)

// Codec 标识 Stream 中实际填充的负载类型.
type Codec int

const (
	CodecGcAdpcm Codec = iota + 1
	CodecCriHca
)

func (c Codec) String() string {
	switch c {
	case CodecGcAdpcm:
		return "GC-ADPCM"
	case CodecCriHca:
		return "CRI HCA"
	}
	return "unknown"
}

// Stream 是投影后的音频流描述. GcAdpcm 与 CriHca 只有与 Codec 对应的一个非空.
type Stream struct {
	Codec        Codec
	SampleCount  int
	SampleRate   int
	ChannelCount int

	Looping   bool
	LoopStart int
	LoopEnd   int

	GcAdpcm []*adpcm.Channel
	CriHca  *CriHcaPayload
}

// CriHcaPayload 是交给 HCA 解码器的数据: 头部参数和已解密的帧.
type CriHcaPayload struct {
	Info   crihca.Info
	Frames crihca.PlainFrames
}

// 两种读取器共用的错误. 读取器用 fmt.Errorf 的 %w 包装它们, 调用方用 errors.Is 判断.
var (
	ErrInvalidHeader      = errors.New("invalid header")
	ErrStreamTooShort     = errors.New("stream too short")
	ErrDataInconsistent   = errors.New("header data inconsistent")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrUnsupportedChunk   = errors.New("unsupported chunk")
	ErrHeaderSizeMismatch = errors.New("header size mismatch")
	ErrChecksum           = errors.New("frame checksum mismatch")
	ErrNoAudioData        = errors.New("structure has no audio data")
)
