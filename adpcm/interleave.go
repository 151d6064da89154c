package adpcm

import (
	"errors"
	"fmt"
	"io"
)

var ErrInvalidLayout = errors.New("adpcm: invalid interleave layout")

// DeInterleave 把按固定块大小轮流存放各声道数据的 src 还原成每声道一段连续缓冲区.
//
// src 中每个声道占 len(src)/channelCount 字节, 按 interleaveSize 切块后依次循环排列.
// 每个输出长度为 outputSize (小于 0 时与输入相同). 末尾不完整的块只拷贝实际存在的字节.
// interleaveSize <= 0 表示不交织, 每个声道是一整块.
func DeInterleave(src []byte, interleaveSize, channelCount, outputSize int) ([][]byte, error) {
	if channelCount < 1 {
		return nil, fmt.Errorf("%w: channel count %d", ErrInvalidLayout, channelCount)
	}
	if len(src)%channelCount != 0 {
		return nil, fmt.Errorf("%w: length %d is not a multiple of %d channels", ErrInvalidLayout, len(src), channelCount)
	}

	inputSize := len(src) / channelCount
	if outputSize < 0 {
		outputSize = inputSize
	}
	if interleaveSize <= 0 {
		interleaveSize = max(inputSize, 1)
	}

	outputs := make([][]byte, channelCount)
	for c := range outputs {
		outputs[c] = make([]byte, outputSize)
	}

	inBlockCount := DivideByRoundUp(inputSize, interleaveSize)
	outBlockCount := DivideByRoundUp(outputSize, interleaveSize)
	lastInputBlock := inputSize - (inBlockCount-1)*interleaveSize
	lastOutputBlock := outputSize - (outBlockCount-1)*interleaveSize
	blocksToCopy := min(inBlockCount, outBlockCount)

	pos := 0
	for b := 0; b < blocksToCopy; b++ {
		inBlock := interleaveSize
		if b == inBlockCount-1 {
			inBlock = lastInputBlock
		}
		outBlock := interleaveSize
		if b == outBlockCount-1 {
			outBlock = lastOutputBlock
		}
		n := min(inBlock, outBlock)

		for c := 0; c < channelCount; c++ {
			copy(outputs[c][interleaveSize*b:interleaveSize*b+n], src[pos:pos+n])
			pos += inBlock
		}
	}

	return outputs, nil
}

// DeInterleaveStream 从 r 读取 length 字节后交给 DeInterleave.
// 流提前结束时缺失的尾部按 0 处理.
func DeInterleaveStream(r io.Reader, length, interleaveSize, channelCount, outputSize int) ([][]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrInvalidLayout, length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read interleaved data: %w", err)
	}
	return DeInterleave(buf, interleaveSize, channelCount, outputSize)
}

// Interleave 是 DeInterleave 的逆运算, 要求所有输入等长.
func Interleave(inputs [][]byte, interleaveSize int) ([]byte, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no inputs", ErrInvalidLayout)
	}
	size := len(inputs[0])
	for i, in := range inputs {
		if len(in) != size {
			return nil, fmt.Errorf("%w: input %d is %d bytes, want %d", ErrInvalidLayout, i, len(in), size)
		}
	}
	if interleaveSize <= 0 {
		interleaveSize = max(size, 1)
	}

	out := make([]byte, 0, size*len(inputs))
	for start := 0; start < size; start += interleaveSize {
		end := min(start+interleaveSize, size)
		for _, in := range inputs {
			out = append(out, in[start:end]...)
		}
	}
	return out, nil
}
