// Package binstream 提供带字节序的二进制流读写原语.
// 读写底层都交给 endibuf 完成, 这里只负责字节序选择, 错误收集和定位.
package binstream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/vazrupe/endibuf"
)

// Endianness 表示多字节数值的字节序.
type Endianness int

const (
	BigEndian Endianness = iota
	LittleEndian
)

func (e Endianness) byteOrder() binary.ByteOrder {
	if e == LittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// stickyReader 记录底层流返回的第一个错误和实际读到的字节数.
// endibuf 的读取函数并不总是把短读暴露出来, 所以在这一层截获.
type stickyReader struct {
	rs  io.ReadSeeker
	n   int
	err error
}

func (s *stickyReader) Read(p []byte) (int, error) {
	n, err := io.ReadFull(s.rs, p)
	s.n += n
	if err != nil && s.err == nil {
		s.err = err
	}
	return n, err
}

func (s *stickyReader) Seek(offset int64, whence int) (int64, error) {
	return s.rs.Seek(offset, whence)
}

// Reader 在可定位的字节流上按给定字节序读取数值.
// 每次读取都会推进流的位置, 重新读取只能通过 SetPosition.
type Reader struct {
	base *stickyReader
	r    *endibuf.Reader
}

// NewReader 创建一个按 e 字节序读取 rs 的 Reader.
func NewReader(rs io.ReadSeeker, e Endianness) *Reader {
	base := &stickyReader{rs: rs}
	r := endibuf.NewReader(base)
	r.Endian = e.byteOrder()
	return &Reader{base: base, r: r}
}

// check 返回自上次检查以来底层流产生的错误, 并清除它.
func (r *Reader) check(size int) error {
	err, n := r.base.err, r.base.n
	r.base.err, r.base.n = nil, 0
	if err == nil && n >= size {
		return nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("read %d bytes: %w", size, err)
}

func (r *Reader) ReadInt8() (int8, error) {
	var v int8
	r.r.ReadData(&v)
	return v, r.check(1)
}

func (r *Reader) ReadUint8() (uint8, error) {
	v, _ := r.r.ReadByte()
	return v, r.check(1)
}

func (r *Reader) ReadInt16() (int16, error) {
	var v int16
	r.r.ReadData(&v)
	return v, r.check(2)
}

func (r *Reader) ReadUint16() (uint16, error) {
	v, _ := r.r.ReadUint16()
	return v, r.check(2)
}

func (r *Reader) ReadInt32() (int32, error) {
	var v int32
	r.r.ReadData(&v)
	return v, r.check(4)
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, _ := r.r.ReadUint32()
	return v, r.check(4)
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, _ := r.r.ReadFloat32()
	return v, r.check(4)
}

// ReadBytes 读取 n 个字节. 流中剩余不足 n 字节时返回 io.ErrUnexpectedEOF.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("read %d bytes: negative length", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	b, _ := r.r.ReadBytes(n)
	if err := r.check(n); err != nil {
		return nil, err
	}
	if len(b) < n {
		return nil, fmt.Errorf("read %d bytes: %w", n, io.ErrUnexpectedEOF)
	}
	return b[:n], nil
}

// Position 返回当前的绝对位置.
func (r *Reader) Position() (int64, error) {
	return r.r.Seek(0, io.SeekCurrent)
}

// SetPosition 定位到绝对位置 pos.
func (r *Reader) SetPosition(pos int64) error {
	r.base.err, r.base.n = nil, 0
	if _, err := r.r.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", pos, err)
	}
	return nil
}

// Length 返回流的总长度, 不改变当前位置.
func (r *Reader) Length() (int64, error) {
	cur, err := r.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := r.r.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := r.r.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// Remaining 返回当前位置之后还剩多少字节.
func (r *Reader) Remaining() (int64, error) {
	pos, err := r.Position()
	if err != nil {
		return 0, err
	}
	length, err := r.Length()
	if err != nil {
		return 0, err
	}
	return length - pos, nil
}

// Stream 返回底层流, 供需要直接按块读取的调用方使用.
// 通过它读取同样会推进 Reader 的位置.
func (r *Reader) Stream() io.ReadSeeker {
	return r.base.rs
}

// ReadCString 读取以 NUL 结尾的字符串, 最多读取 limit 个字节 (包括结尾的 NUL).
// 在 limit 内没有遇到 NUL 时返回已读到的内容和 io.ErrUnexpectedEOF.
func (r *Reader) ReadCString(limit int) (string, error) {
	var b []byte
	for len(b) < limit {
		c, err := r.ReadUint8()
		if err != nil {
			return "", err
		}
		if c == 0 {
			return string(b), nil
		}
		b = append(b, c)
	}
	return string(b), fmt.Errorf("string not terminated within %d bytes: %w", limit, io.ErrUnexpectedEOF)
}
