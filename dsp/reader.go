// Package dsp 读取 Nintendo DSP 容器: 每个声道一个 0x60 字节的大端头部, 后接 GC-ADPCM 数据.
package dsp

import (
	"fmt"
	"io"
	"log"

	"github.com/WJQSERVER/gameaudio"
	"github.com/WJQSERVER/gameaudio/adpcm"
	"github.com/WJQSERVER/gameaudio/binstream"
)

// HeaderSize 是单个声道头部的大小.
const HeaderSize = 0x60

const (
	offsetChannelCount = 0x4A
	offsetChannelInfo  = 0x1C
)

// Reader 实现 gameaudio.ContainerReader. 零值即可使用.
type Reader struct {
	// Logger 为 nil 时不输出任何日志.
	Logger *log.Logger
}

var _ gameaudio.ContainerReader[*Structure, Configuration] = (*Reader)(nil)

func (d *Reader) logf(format string, args ...any) {
	if d.Logger != nil {
		d.Logger.Printf(format, args...)
	}
}

// Read 解析 r 中的 DSP 文件. readAudioData 为 false 时只校验头部, 不读取音频数据.
func (d *Reader) Read(r io.ReadSeeker, readAudioData bool) (*Structure, error) {
	br := binstream.NewReader(r, binstream.BigEndian)

	length, err := br.Length()
	if err != nil {
		return nil, fmt.Errorf("dsp: %w", err)
	}
	if length < HeaderSize {
		return nil, fmt.Errorf("dsp: %d bytes is shorter than a header: %w", length, gameaudio.ErrStreamTooShort)
	}
	if err := br.SetPosition(0); err != nil {
		return nil, fmt.Errorf("dsp: %w", err)
	}

	s := &Structure{}
	if err := d.parseHeader(br, s, length); err != nil {
		return nil, fmt.Errorf("dsp: %w", err)
	}

	if readAudioData {
		if err := br.SetPosition(int64(HeaderSize * s.ChannelCount)); err != nil {
			return nil, fmt.Errorf("dsp: %w", err)
		}
		if err := d.parseData(br, s); err != nil {
			return nil, fmt.Errorf("dsp: %w", err)
		}
	}

	return s, nil
}

func (d *Reader) parseHeader(br *binstream.Reader, s *Structure, length int64) error {
	f := &binstream.Fields{R: br}
	s.SampleCount = int(f.Int32())
	s.NibbleCount = int(f.Int32())
	s.SampleRate = int(f.Int32())
	s.Looping = f.Int16() == 1
	s.Format = int(f.Int16())
	s.StartAddress = int(f.Int32())
	s.EndAddress = int(f.Int32())
	s.CurrentAddress = int(f.Int32())

	if f.Err == nil {
		f.Err = br.SetPosition(offsetChannelCount)
	}
	s.ChannelCount = int(f.Int16())
	s.FramesPerInterleave = int(f.Int16())
	if f.Err != nil {
		return fmt.Errorf("read header: %w", f.Err)
	}
	if s.ChannelCount <= 0 {
		if s.ChannelCount < 0 {
			return fmt.Errorf("channel count %d: %w", s.ChannelCount, gameaudio.ErrInvalidHeader)
		}
		d.logf("dsp: channel count is 0, treating as mono")
		s.ChannelCount = 1
	}
	if s.SampleCount < 0 {
		return fmt.Errorf("sample count %d: %w", s.SampleCount, gameaudio.ErrInvalidHeader)
	}

	// 先确认流能容纳全部声道头部和音频数据, 再逐个读取声道头部.
	need := int64(HeaderSize*s.ChannelCount) + int64(adpcm.BytesForSamples(s.SampleCount))
	if length < need {
		return fmt.Errorf("file doesn't contain enough data for %d samples (%d < %d bytes): %w",
			s.SampleCount, length, need, gameaudio.ErrStreamTooShort)
	}

	s.Channels = make([]ChannelInfo, s.ChannelCount)
	for i := range s.Channels {
		if err := br.SetPosition(int64(HeaderSize*i + offsetChannelInfo)); err != nil {
			return err
		}
		ch := &s.Channels[i]
		for c := range ch.Coefs {
			ch.Coefs[c] = f.Int16()
		}
		ch.Gain = f.Int16()
		ch.PredScale = f.Int16()
		ch.Hist1 = f.Int16()
		ch.Hist2 = f.Int16()
		ch.LoopPredScale = f.Int16()
		ch.LoopHist1 = f.Int16()
		ch.LoopHist2 = f.Int16()
	}
	if f.Err != nil {
		return fmt.Errorf("read channel header: %w", f.Err)
	}

	if want := adpcm.NibbleFromSample(s.SampleCount); s.NibbleCount != want {
		return fmt.Errorf("sample count %d needs %d nibbles, header says %d: %w",
			s.SampleCount, want, s.NibbleCount, gameaudio.ErrDataInconsistent)
	}
	if s.Format != 0 {
		return fmt.Errorf("file does not contain ADPCM audio, format is %d: %w", s.Format, gameaudio.ErrUnsupportedFormat)
	}
	return nil
}

func (d *Reader) parseData(br *binstream.Reader, s *Structure) error {
	size := adpcm.BytesForSamples(s.SampleCount)

	if s.ChannelCount == 1 {
		data, err := br.ReadBytes(size)
		if err != nil {
			return fmt.Errorf("read audio data: %w", err)
		}
		s.AudioData = [][]byte{data}
		return nil
	}

	// 最后一个声道只需要实际数据, 其余声道都占满按帧对齐后的长度.
	aligned := int64(adpcm.RoundUpToMultiple(size, adpcm.BytesPerFrame))
	remaining, err := br.Remaining()
	if err != nil {
		return err
	}
	if need := aligned*int64(s.ChannelCount-1) + int64(size); remaining < need {
		return fmt.Errorf("%d channels of %d bytes need %d bytes of audio data, %d available: %w",
			s.ChannelCount, size, need, remaining, gameaudio.ErrStreamTooShort)
	}

	// 通过上面的检查后, 流中缺少的最多只是最后一个声道的对齐填充.
	dataLength := int(aligned) * s.ChannelCount
	interleaveSize := s.FramesPerInterleave * adpcm.BytesPerFrame
	data, err := adpcm.DeInterleaveStream(br.Stream(), dataLength, interleaveSize, s.ChannelCount, size)
	if err != nil {
		return err
	}
	s.AudioData = data
	return nil
}

// Project 把结构转换为 GC-ADPCM 音频流, 每个声道带上系数, 历史采样和循环上下文.
func (d *Reader) Project(s *Structure) (*gameaudio.Stream, error) {
	if len(s.AudioData) != s.ChannelCount {
		return nil, fmt.Errorf("dsp: %w", gameaudio.ErrNoAudioData)
	}

	channels := make([]*adpcm.Channel, s.ChannelCount)
	for i, info := range s.Channels {
		ch := adpcm.NewChannel(s.SampleCount, s.AudioData[i])
		ch.Coefs = info.Coefs
		ch.Gain = info.Gain
		ch.PredScale = info.PredScale
		ch.Hist1 = info.Hist1
		ch.Hist2 = info.Hist2
		ch.SetLoopContext(s.LoopStart(), info.LoopPredScale, info.LoopHist1, info.LoopHist2)
		channels[i] = ch
	}

	stream := &gameaudio.Stream{
		Codec:        gameaudio.CodecGcAdpcm,
		SampleCount:  s.SampleCount,
		SampleRate:   s.SampleRate,
		ChannelCount: s.ChannelCount,
		GcAdpcm:      channels,
	}
	if s.Looping {
		stream.Looping = true
		stream.LoopStart = s.LoopStart()
		stream.LoopEnd = s.LoopEnd()
	}
	return stream, nil
}

func (d *Reader) Configuration(s *Structure) Configuration {
	return Configuration{FramesPerInterleave: s.FramesPerInterleave}
}
