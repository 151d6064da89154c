package binstream

import (
	"fmt"
	"io"

	"github.com/vazrupe/endibuf"
)

// errWriter 记录第一个写入错误, 之后的写入全部丢弃.
type errWriter struct {
	ws  io.WriteSeeker
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.ws.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	e.err = err
	return n, err
}

func (e *errWriter) Seek(offset int64, whence int) (int64, error) {
	return e.ws.Seek(offset, whence)
}

// Writer 按给定字节序写入数值. 写入错误是粘滞的, 通过 Err 取回.
type Writer struct {
	base *errWriter
	w    *endibuf.Writer
}

// NewWriter 创建一个按 e 字节序写入 ws 的 Writer.
func NewWriter(ws io.WriteSeeker, e Endianness) *Writer {
	base := &errWriter{ws: ws}
	w := endibuf.NewWriter(base)
	w.Endian = e.byteOrder()
	return &Writer{base: base, w: w}
}

func (w *Writer) WriteInt8(v int8)       { w.w.WriteInt8(v) }
func (w *Writer) WriteUint8(v uint8)     { w.w.WriteBytes([]byte{v}) }
func (w *Writer) WriteInt16(v int16)     { w.w.WriteInt16(v) }
func (w *Writer) WriteUint16(v uint16)   { w.w.WriteUint16(v) }
func (w *Writer) WriteInt32(v int32)     { w.w.WriteInt32(v) }
func (w *Writer) WriteUint32(v uint32)   { w.w.WriteUint32(v) }
func (w *Writer) WriteFloat32(v float32) { w.w.WriteFloat32(v) }
func (w *Writer) WriteBytes(b []byte)    { w.w.WriteBytes(b) }

// Position 返回当前的绝对写入位置.
func (w *Writer) Position() (int64, error) {
	return w.w.Seek(0, io.SeekCurrent)
}

// SetPosition 定位到绝对位置 pos, 之后的写入从 pos 开始覆盖.
func (w *Writer) SetPosition(pos int64) error {
	if _, err := w.w.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("seek to %d: %w", pos, err)
	}
	return nil
}

// Err 返回第一个写入错误.
func (w *Writer) Err() error {
	return w.base.err
}
