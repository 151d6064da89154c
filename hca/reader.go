// Package hca 读取 CRI HCA 容器: 由块组成的大端头部, 后接定长的加密帧.
package hca

import (
	"fmt"
	"io"
	"log"

	"github.com/WJQSERVER/gameaudio"
	"github.com/WJQSERVER/gameaudio/binstream"
	"github.com/WJQSERVER/gameaudio/crihca"
)

// Reader 实现 gameaudio.ContainerReader.
type Reader struct {
	// Decrypt 为 true 时在读取数据后确定解密密钥.
	Decrypt bool
	// EncryptionKey 不为 nil 时直接使用, 不再按 ciph 类型推断.
	EncryptionKey *crihca.Key
	// KeyFinder 用于 ciph 类型 56, 为 nil 时使用 crihca.DefaultKeyFinder.
	KeyFinder crihca.KeyFinder
	// StrictCRC 为 true 时帧校验和不匹配会使读取失败, 否则只记录在 Structure.CRCMismatches 中.
	StrictCRC bool
	// Logger 为 nil 时不输出任何日志.
	Logger *log.Logger
}

var _ gameaudio.ContainerReader[*Structure, Configuration] = (*Reader)(nil)

// NewReader 创建一个启用解密, 使用默认密钥搜索的读取器.
func NewReader() *Reader {
	return &Reader{
		Decrypt:   true,
		KeyFinder: crihca.DefaultKeyFinder,
	}
}

func (h *Reader) logf(format string, args ...any) {
	if h.Logger != nil {
		h.Logger.Printf(format, args...)
	}
}

// Read 解析 r 中的 HCA 文件. readAudioData 为 false 时只校验头部, 不读取帧, 也不确定密钥.
func (h *Reader) Read(r io.ReadSeeker, readAudioData bool) (*Structure, error) {
	br := binstream.NewReader(r, binstream.BigEndian)

	if err := br.SetPosition(0); err != nil {
		return nil, fmt.Errorf("hca: %w", err)
	}

	s := &Structure{}
	if err := h.readHeader(br, s); err != nil {
		return nil, fmt.Errorf("hca: %w", err)
	}

	if readAudioData {
		if err := br.SetPosition(int64(s.Info.HeaderSize)); err != nil {
			return nil, fmt.Errorf("hca: %w", err)
		}
		if err := h.readData(br, s); err != nil {
			return nil, fmt.Errorf("hca: %w", err)
		}
		if h.Decrypt {
			s.EncryptionKey = h.EncryptionKey
			if s.EncryptionKey == nil {
				s.EncryptionKey = h.findKey(s)
			}
		}
	}

	return s, nil
}

// readHeader 按块遍历头部, 直到到达头部声明的大小.
func (h *Reader) readHeader(br *binstream.Reader, s *Structure) error {
	f := &binstream.Fields{R: br}
	info := &s.Info

	sig := f.Uint32()
	info.Version = int(f.Uint16())
	info.HeaderSize = int(f.Uint16())
	if f.Err != nil {
		return fmt.Errorf("read signature: %w: %w", gameaudio.ErrStreamTooShort, f.Err)
	}
	if sig&sigMask != sigHCA {
		return fmt.Errorf("not a valid HCA file: %w", gameaudio.ErrInvalidHeader)
	}

	headerEnd := int64(info.HeaderSize)
	var haveFmt, haveComp, haveAth, haveRva bool

	for {
		pos, err := br.Position()
		if err != nil {
			return err
		}
		if pos >= headerEnd {
			break
		}

		sig := f.Uint32() & sigMask
		if f.Err != nil {
			break
		}

		switch sig {
		case sigFMT:
			haveFmt = true
			err = readFmt(f, info)
		case sigCOMP:
			haveComp = true
			err = readComp(f, info, s)
		case sigDEC:
			haveComp = true
			err = readDec(f, info)
		case sigLOOP:
			readLoop(f, info)
		case sigATH:
			haveAth = true
			info.AthTableType = int(f.Uint16())
		case sigCIPH:
			info.EncryptionType = int(f.Uint16())
		case sigRVA:
			haveRva = true
			info.Volume = f.Float32()
		case sigVBR:
			readVbr(f, info)
		case sigCOMM:
			readComm(f, info, headerEnd)
		case sigPAD:
			err = br.SetPosition(headerEnd)
		default:
			return fmt.Errorf("chunk %s is not supported: %w", chunkName(sig), gameaudio.ErrUnsupportedChunk)
		}
		if err != nil {
			return err
		}
		if f.Err != nil {
			break
		}
	}
	if f.Err != nil {
		return fmt.Errorf("read header: %w: %w", gameaudio.ErrStreamTooShort, f.Err)
	}

	pos, err := br.Position()
	if err != nil {
		return err
	}
	if pos != headerEnd {
		return fmt.Errorf("chunks end at %#x, header size is %#x: %w", pos, headerEnd, gameaudio.ErrHeaderSizeMismatch)
	}
	if !haveFmt || !haveComp {
		return fmt.Errorf("missing fmt or comp/dec chunk: %w", gameaudio.ErrInvalidHeader)
	}

	if !haveAth && info.Version < crihca.Version200 {
		info.AthTableType = 1
	}
	if !haveRva {
		info.Volume = 1
	}
	if info.Looping && (info.LoopStartFrame > info.LoopEndFrame || info.LoopEndFrame >= info.FrameCount) {
		return fmt.Errorf("loop frames %d..%d outside %d frames: %w",
			info.LoopStartFrame, info.LoopEndFrame, info.FrameCount, gameaudio.ErrInvalidHeader)
	}

	if info.TrackCount < 1 {
		info.TrackCount = 1
	}
	if info.BandsPerHfrGroup > 0 {
		info.HfrBandCount = info.TotalBandCount - info.BaseBandCount - info.StereoBandCount
		info.HfrGroupCount = (info.HfrBandCount + info.BandsPerHfrGroup - 1) / info.BandsPerHfrGroup
	}
	return nil
}

// readData 读取全部帧并检查每帧末尾的 CRC-16.
func (h *Reader) readData(br *binstream.Reader, s *Structure) error {
	info := &s.Info
	if info.FrameSize < crihca.MinFrameSize {
		return fmt.Errorf("frame size %d: %w", info.FrameSize, gameaudio.ErrInvalidHeader)
	}

	remaining, err := br.Remaining()
	if err != nil {
		return err
	}
	if need := int64(info.FrameCount) * int64(info.FrameSize); remaining < need {
		return fmt.Errorf("%d frames of %d bytes need %d bytes, %d available: %w",
			info.FrameCount, info.FrameSize, need, remaining, gameaudio.ErrStreamTooShort)
	}

	s.Frames = make(crihca.CipherFrames, info.FrameCount)
	for i := range s.Frames {
		frame, err := br.ReadBytes(info.FrameSize)
		if err != nil {
			return fmt.Errorf("read frame %d: %w", i, err)
		}
		if !crihca.ChecksumValid(frame) {
			if h.StrictCRC {
				return fmt.Errorf("frame %d: %w", i, gameaudio.ErrChecksum)
			}
			s.CRCMismatches = append(s.CRCMismatches, i)
		}
		s.Frames[i] = frame
	}

	if len(s.CRCMismatches) > 0 {
		h.logf("hca: %d of %d frames have a bad checksum (first: %d)",
			len(s.CRCMismatches), info.FrameCount, s.CRCMismatches[0])
	}
	return nil
}

// findKey 按 ciph 类型确定密钥: 0 不加密, 1 使用固定表, 56 交给 KeyFinder, 其他值视为不加密.
func (h *Reader) findKey(s *Structure) *crihca.Key {
	switch s.Info.EncryptionType {
	case crihca.EncryptionType1:
		key, err := crihca.NewKeyType(crihca.Type1)
		if err != nil {
			return nil
		}
		return key
	case crihca.EncryptionKeyed:
		finder := h.KeyFinder
		if finder == nil {
			finder = crihca.DefaultKeyFinder
		}
		key := finder.FindKey(&s.Info, s.Frames)
		if key == nil {
			h.logf("hca: no key found for encryption type %d", s.Info.EncryptionType)
		}
		return key
	case crihca.EncryptionNone:
	default:
		h.logf("hca: unknown encryption type %d, reading as unencrypted", s.Info.EncryptionType)
	}
	return nil
}

// Project 解密帧 (写入新的缓冲区) 并构造 CRI HCA 音频流.
func (h *Reader) Project(s *Structure) (*gameaudio.Stream, error) {
	if s.Frames == nil {
		return nil, fmt.Errorf("hca: %w", gameaudio.ErrNoAudioData)
	}

	info := s.Info
	stream := &gameaudio.Stream{
		Codec:        gameaudio.CodecCriHca,
		SampleCount:  info.TrimmedSampleCount(),
		SampleRate:   info.SampleRate,
		ChannelCount: info.ChannelCount,
		CriHca: &gameaudio.CriHcaPayload{
			Info:   info,
			Frames: s.Frames.Decrypt(s.EncryptionKey),
		},
	}
	if info.Looping {
		stream.Looping = true
		stream.LoopStart = info.LoopStartSample()
		stream.LoopEnd = info.LoopEndSample()
	}
	return stream, nil
}

func (h *Reader) Configuration(s *Structure) Configuration {
	return Configuration{EncryptionKey: s.EncryptionKey}
}
