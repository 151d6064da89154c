package binstream

import (
	"errors"
	"io"
)

var errNegativePosition = errors.New("binstream: negative position")

// MemoryStream 是基于字节切片的 io.ReadWriteSeeker.
// 写入超过末尾时自动扩展, 定位到末尾之后再写入会用 0 填充空隙.
type MemoryStream struct {
	buf []byte
	pos int64
}

// NewMemoryStream 返回一个以 b 为初始内容的流, 位置为 0.
func NewMemoryStream(b []byte) *MemoryStream {
	return &MemoryStream{buf: b}
}

func (m *MemoryStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemoryStream) Write(p []byte) (int, error) {
	end := m.pos + int64(len(p))
	if end > int64(len(m.buf)) {
		if end > int64(cap(m.buf)) {
			grown := make([]byte, end, 2*end)
			copy(grown, m.buf)
			m.buf = grown
		} else {
			m.buf = m.buf[:end]
		}
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *MemoryStream) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = m.pos + offset
	case io.SeekEnd:
		abs = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("binstream: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativePosition
	}
	m.pos = abs
	return abs, nil
}

// Bytes 返回流的全部内容. 返回值与流共享底层数组.
func (m *MemoryStream) Bytes() []byte {
	return m.buf
}

// Len 返回流的长度.
func (m *MemoryStream) Len() int {
	return len(m.buf)
}
