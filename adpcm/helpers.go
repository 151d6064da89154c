// Package adpcm 实现 GameCube 风格 4-bit ADPCM 的寻址运算和声道交织处理.
//
// 一帧 8 字节, 包含 1 字节头 (2 个 nibble) 和 14 个采样 (14 个 nibble).
package adpcm

const (
	BytesPerFrame   = 8
	SamplesPerFrame = 14
	NibblesPerFrame = 16
)

// NibbleFromSample 返回存储 samples 个采样所需的 nibble 总数, 包含每帧的帧头.
func NibbleFromSample(samples int) int {
	frames := samples / SamplesPerFrame
	extraSamples := samples % SamplesPerFrame
	extraNibbles := 0
	if extraSamples != 0 {
		extraNibbles = extraSamples + 2
	}
	return NibblesPerFrame*frames + extraNibbles
}

// SampleFromNibble 是 NibbleFromSample 的逆运算.
func SampleFromNibble(nibble int) int {
	frames := nibble / NibblesPerFrame
	extraNibbles := nibble % NibblesPerFrame
	samples := SamplesPerFrame * frames
	if extraNibbles != 0 {
		samples += extraNibbles - 2
	}
	return samples
}

// NibbleAddress 返回第 sample 个采样在数据中的 nibble 地址.
// 与 NibbleFromSample 不同, 余数为 0 时同样要跳过 2 个 nibble 的帧头,
// 用于定位循环恢复点, 不能用来计算总数.
func NibbleAddress(sample int) int {
	frames := sample / SamplesPerFrame
	extraSamples := sample % SamplesPerFrame
	return NibblesPerFrame*frames + extraSamples + 2
}

// BytesForSamples 返回存储 samples 个编码采样所需的字节数.
func BytesForSamples(samples int) int {
	frames := samples / SamplesPerFrame
	extraSamples := samples % SamplesPerFrame
	extraBytes := 0
	if extraSamples != 0 {
		extraBytes = extraSamples/2 + extraSamples%2 + 1
	}
	return BytesPerFrame*frames + extraBytes
}

// RoundUpToMultiple 把 value 向上取整到 multiple 的倍数. multiple <= 0 时原样返回.
func RoundUpToMultiple(value, multiple int) int {
	if multiple <= 0 {
		return value
	}
	if value%multiple == 0 {
		return value
	}
	return value + multiple - value%multiple
}

// DivideByRoundUp 计算 ceil(value / divisor), divisor <= 0 时返回 0.
func DivideByRoundUp(value, divisor int) int {
	if divisor <= 0 {
		return 0
	}
	return (value + divisor - 1) / divisor
}

// ClampToSigned16 把 value 饱和到 int16 范围.
func ClampToSigned16(value int) int16 {
	if value > 32767 {
		return 32767
	}
	if value < -32768 {
		return -32768
	}
	return int16(value)
}
