package crihca

// DefaultKeyCode 是大量作品共用的默认密钥.
const DefaultKeyCode uint64 = 0xCC55463930DBE1AB

// 每个候选密钥最多检查的非空帧数.
const maxTestFrames = 32

// KeyFinder 在未提供密钥时为 ciph 类型 56 的数据寻找密钥. 找不到时返回 nil.
type KeyFinder interface {
	FindKey(info *Info, frames CipherFrames) *Key
}

// KnownKeyFinder 依次尝试 Keys 中的密钥码, 返回第一个能让全部被检查帧通过合理性检查的密钥.
type KnownKeyFinder struct {
	Keys []uint64
}

// DefaultKeyFinder 只包含默认密钥.
var DefaultKeyFinder KeyFinder = KnownKeyFinder{Keys: []uint64{DefaultKeyCode}}

func (f KnownKeyFinder) FindKey(info *Info, frames CipherFrames) *Key {
	samples := sampleFrames(info, frames)
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, info.FrameSize)
	for _, code := range f.Keys {
		key := NewKey(code)
		ok := true
		for _, frame := range samples {
			key.DecryptFrame(buf, frame)
			if !frameLooksValid(info, buf) {
				ok = false
				break
			}
		}
		if ok {
			return key
		}
	}
	return nil
}

// sampleFrames 挑出校验和正确且非空的帧.
func sampleFrames(info *Info, frames CipherFrames) [][]byte {
	if info.FrameSize < MinFrameSize {
		return nil
	}
	var out [][]byte
	for _, frame := range frames {
		if len(frame) != info.FrameSize || isEmptyFrame(frame) || !ChecksumValid(frame) {
			continue
		}
		out = append(out, frame)
		if len(out) == maxTestFrames {
			break
		}
	}
	return out
}

func isEmptyFrame(frame []byte) bool {
	for _, b := range frame[2 : len(frame)-2] {
		if b != 0 {
			return false
		}
	}
	return true
}

// frameLooksValid 按解码器的顺序解出帧头, 尺度因子和强度立体声数据,
// 任一取值越界或读出帧外即判定为错误密钥.
func frameLooksValid(info *Info, frame []byte) bool {
	br := newBitReader(frame[:len(frame)-2])
	if br.read(16) != 0xFFFF {
		return false
	}
	br.skip(9 + 7)

	hfrGroups := max(info.HfrGroupCount, 0)
	types := info.channelTypes()
	for _, ct := range types {
		coded := info.BaseBandCount + info.StereoBandCount
		if ct == stereoSecondary {
			coded = info.BaseBandCount
		}
		if !unpackScaleFactors(br, ct, coded, hfrGroups, info.Version) {
			return false
		}
		if !unpackIntensity(br, ct, hfrGroups, info.Version) {
			return false
		}
		if br.overrun {
			return false
		}
	}
	return !br.overrun
}

func unpackScaleFactors(br *bitReader, ct channelType, coded, hfrGroups, version int) bool {
	deltaBits := br.read(3)
	if ct != stereoSecondary && hfrGroups > 0 && version > Version200 {
		coded += hfrGroups
	}
	if coded > SamplesPerSubframe {
		return false
	}

	switch {
	case deltaBits >= 6:
		br.skip(6 * coded)
	case deltaBits > 0:
		expected := 1<<deltaBits - 1
		value := br.read(6)
		for i := 1; i < coded; i++ {
			delta := br.read(deltaBits)
			if delta == expected {
				value = br.read(6)
				continue
			}
			value += delta - expected>>1
			if value < 0 || value >= 64 {
				return false
			}
		}
	}
	return true
}

func unpackIntensity(br *bitReader, ct channelType, hfrGroups, version int) bool {
	if ct != stereoSecondary {
		if version <= Version200 {
			br.skip(6 * hfrGroups)
		}
		return true
	}

	value := br.peek(4)
	br.skip(4)
	if value >= 15 {
		return true
	}
	if version <= Version200 {
		br.skip(4 * (SubframesPerFrame - 1))
		return true
	}

	deltaBits := br.read(2)
	if deltaBits == 3 {
		br.skip(4 * (SubframesPerFrame - 1))
		return true
	}
	bmax := 2<<deltaBits - 1
	for i := 1; i < SubframesPerFrame; i++ {
		delta := br.read(deltaBits + 1)
		if delta == bmax {
			value = br.read(4)
			continue
		}
		value += delta - bmax>>1
		if value < 0 || value > 15 {
			return false
		}
	}
	return true
}

// bitReader 是大端位序的读取器. 读出数据末尾时置 overrun 并返回 0.
type bitReader struct {
	data    []byte
	bit     int
	overrun bool
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (br *bitReader) peek(n int) int {
	if br.bit+n > len(br.data)*8 {
		br.overrun = true
		return 0
	}
	v := 0
	for i := 0; i < n; i++ {
		pos := br.bit + i
		bit := br.data[pos>>3] >> (7 - pos&7) & 1
		v = v<<1 | int(bit)
	}
	return v
}

func (br *bitReader) read(n int) int {
	v := br.peek(n)
	br.bit += n
	return v
}

func (br *bitReader) skip(n int) {
	br.bit += n
	if br.bit > len(br.data)*8 {
		br.overrun = true
	}
}
