package dsp

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/WJQSERVER/gameaudio"
	"github.com/WJQSERVER/gameaudio/adpcm"
	"github.com/WJQSERVER/gameaudio/binstream"
)

type fixture struct {
	sampleCount  int
	nibbleCount  int
	sampleRate   int
	looping      bool
	format       int
	startAddress int
	endAddress   int
	channelCount int // 写入头部的值, 0 表示单声道
	fpi          int
	data         []byte
}

func newFixture(sampleCount, channels int) *fixture {
	return &fixture{
		sampleCount:  sampleCount,
		nibbleCount:  adpcm.NibbleFromSample(sampleCount),
		sampleRate:   32000,
		channelCount: channels,
		fpi:          1,
	}
}

func (fx *fixture) bytes() []byte {
	ms := binstream.NewMemoryStream(nil)
	w := binstream.NewWriter(ms, binstream.BigEndian)
	headers := max(fx.channelCount, 1)
	for c := 0; c < headers; c++ {
		w.SetPosition(int64(HeaderSize * c))
		w.WriteInt32(int32(fx.sampleCount))
		w.WriteInt32(int32(fx.nibbleCount))
		w.WriteInt32(int32(fx.sampleRate))
		if fx.looping {
			w.WriteInt16(1)
		} else {
			w.WriteInt16(0)
		}
		w.WriteInt16(int16(fx.format))
		w.WriteInt32(int32(fx.startAddress))
		w.WriteInt32(int32(fx.endAddress))
		w.WriteInt32(2)

		w.SetPosition(int64(HeaderSize*c + offsetChannelInfo))
		for i := 0; i < 16; i++ {
			w.WriteInt16(int16(c*100 + i))
		}
		w.WriteInt16(0)               // gain
		w.WriteInt16(int16(0x10 + c)) // pred/scale
		w.WriteInt16(int16(-1 - c))   // hist1
		w.WriteInt16(int16(-2 - c))   // hist2
		w.WriteInt16(int16(0x20 + c)) // loop pred/scale
		w.WriteInt16(int16(5 + c))    // loop hist1
		w.WriteInt16(int16(6 + c))    // loop hist2
		w.WriteInt16(int16(fx.channelCount))
		w.WriteInt16(int16(fx.fpi))
	}
	w.SetPosition(int64(HeaderSize * headers))
	w.WriteBytes(fx.data)
	return ms.Bytes()
}

func pattern(n int, seed byte) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = seed + byte(i)
	}
	return b
}

func TestReadMono(t *testing.T) {
	fx := newFixture(20, 1)
	fx.looping = true
	fx.startAddress = 2
	fx.endAddress = adpcm.NibbleFromSample(19)
	fx.data = pattern(adpcm.BytesForSamples(20), 1)

	var d Reader
	s, err := d.Read(bytes.NewReader(fx.bytes()), true)
	if err != nil {
		t.Fatal(err)
	}
	if s.SampleCount != 20 || s.SampleRate != 32000 || s.ChannelCount != 1 {
		t.Errorf("structure = %+v", s)
	}
	if s.LoopStart() != 0 || s.LoopEnd() != 19 {
		t.Errorf("loop = %d..%d, want 0..19", s.LoopStart(), s.LoopEnd())
	}
	if !bytes.Equal(s.AudioData[0], fx.data) {
		t.Errorf("AudioData = %v, want %v", s.AudioData[0], fx.data)
	}
	ch := s.Channels[0]
	if ch.Coefs[15] != 15 || ch.PredScale != 0x10 || ch.Hist1 != -1 || ch.LoopHist2 != 6 {
		t.Errorf("channel = %+v", ch)
	}

	stream, err := d.Project(s)
	if err != nil {
		t.Fatal(err)
	}
	if stream.Codec != gameaudio.CodecGcAdpcm || !stream.Looping || stream.LoopEnd != 19 {
		t.Errorf("stream = %+v", stream)
	}
	c := stream.GcAdpcm[0]
	if c.Loop.PredScale != 0x20 || c.Loop.Hist1 != 5 || c.Loop.NibbleAddress != adpcm.NibbleAddress(0) {
		t.Errorf("loop context = %+v", c.Loop)
	}
	if c.Coefs != ch.Coefs || c.Hist2 != -2 {
		t.Errorf("channel = %+v", c)
	}
}

func TestReadStereoDeInterleaves(t *testing.T) {
	const samples = 28
	size := adpcm.BytesForSamples(samples)
	left, right := pattern(size, 0), pattern(size, 0x80)
	joined, err := adpcm.Interleave([][]byte{left, right}, adpcm.BytesPerFrame)
	if err != nil {
		t.Fatal(err)
	}

	fx := newFixture(samples, 2)
	fx.data = joined

	stream, config, err := gameaudio.ReadStreamWithConfig[*Structure, Configuration](&Reader{}, bytes.NewReader(fx.bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if config.FramesPerInterleave != 1 {
		t.Errorf("FramesPerInterleave = %d, want 1", config.FramesPerInterleave)
	}
	if len(stream.GcAdpcm) != 2 {
		t.Fatalf("got %d channels", len(stream.GcAdpcm))
	}
	if !bytes.Equal(stream.GcAdpcm[0].Audio, left) || !bytes.Equal(stream.GcAdpcm[1].Audio, right) {
		t.Errorf("channels = %v / %v", stream.GcAdpcm[0].Audio, stream.GcAdpcm[1].Audio)
	}
	if stream.GcAdpcm[1].Coefs[0] != 100 {
		t.Errorf("second channel coefs come from the wrong header: %v", stream.GcAdpcm[1].Coefs)
	}
	if stream.Looping {
		t.Error("non-looping file projected as looping")
	}
}

func TestReadStereoTruncatedPayload(t *testing.T) {
	const samples = 15
	size := adpcm.BytesForSamples(samples) // 10, 按 8 对齐后每声道 16 字节
	fx := newFixture(samples, 2)
	fx.fpi = 2
	fx.data = append(pattern(16, 0), pattern(size, 0x80)...)

	s, err := new(Reader).Read(bytes.NewReader(fx.bytes()), true)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(s.AudioData[0], pattern(size, 0)) {
		t.Errorf("left = %v", s.AudioData[0])
	}
	// 右声道只有 10 字节在流中, 全部可用.
	if !bytes.Equal(s.AudioData[1], pattern(size, 0x80)) {
		t.Errorf("right = %v", s.AudioData[1])
	}
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(fx *fixture)
		want   error
	}{
		{"nibble mismatch", func(fx *fixture) { fx.nibbleCount++ }, gameaudio.ErrDataInconsistent},
		{"not adpcm", func(fx *fixture) { fx.format = 1 }, gameaudio.ErrUnsupportedFormat},
		{"missing data", func(fx *fixture) { fx.data = fx.data[:4] }, gameaudio.ErrStreamTooShort},
		{"negative samples", func(fx *fixture) { fx.sampleCount = -1 }, gameaudio.ErrInvalidHeader},
		{"negative channels", func(fx *fixture) { fx.channelCount = -1 }, gameaudio.ErrInvalidHeader},
		{"stereo with one channel of data", func(fx *fixture) { fx.channelCount = 2 }, gameaudio.ErrStreamTooShort},
		{"many channels with one channel of data", func(fx *fixture) { fx.channelCount = 2000 }, gameaudio.ErrStreamTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(100, 1)
			fx.data = make([]byte, adpcm.BytesForSamples(100))
			tt.modify(fx)
			s, err := new(Reader).Read(bytes.NewReader(fx.bytes()), true)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if s != nil {
				t.Error("a structure was returned with the error")
			}
		})
	}
}

func TestReadShorterThanHeader(t *testing.T) {
	_, err := new(Reader).Read(bytes.NewReader(make([]byte, HeaderSize-1)), false)
	if !errors.Is(err, gameaudio.ErrStreamTooShort) {
		t.Errorf("error = %v, want ErrStreamTooShort", err)
	}
}

func TestReadMetadataOnly(t *testing.T) {
	fx := newFixture(14, 0)
	fx.data = pattern(8, 0)

	var d Reader
	s, err := gameaudio.ReadMetadata[*Structure, Configuration](&d, bytes.NewReader(fx.bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if s.ChannelCount != 1 {
		t.Errorf("ChannelCount = %d, want 1", s.ChannelCount)
	}
	if s.AudioData != nil {
		t.Error("AudioData read in metadata-only mode")
	}
	if _, err := d.Project(s); !errors.Is(err, gameaudio.ErrNoAudioData) {
		t.Errorf("Project() error = %v, want ErrNoAudioData", err)
	}
}

func TestReadIgnoresStartingPosition(t *testing.T) {
	fx := newFixture(28, 1)
	fx.data = pattern(adpcm.BytesForSamples(28), 3)

	r := bytes.NewReader(fx.bytes())
	if _, err := r.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	s, err := new(Reader).Read(r, true)
	if err != nil {
		t.Fatal(err)
	}
	if s.SampleCount != 28 || !bytes.Equal(s.AudioData[0], fx.data) {
		t.Errorf("structure = %+v", s)
	}
}
