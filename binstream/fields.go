package binstream

// Fields 包装 Reader, 用于连续读取一组定长字段.
// 第一次读取失败后, 后续读取都直接返回零值, 最后检查 Err 即可.
type Fields struct {
	R   *Reader
	Err error
}

func read[T any](f *Fields, fn func() (T, error)) T {
	var zero T
	if f.Err != nil {
		return zero
	}
	v, err := fn()
	if err != nil {
		f.Err = err
		return zero
	}
	return v
}

func (f *Fields) Uint8() uint8     { return read(f, f.R.ReadUint8) }
func (f *Fields) Int16() int16     { return read(f, f.R.ReadInt16) }
func (f *Fields) Uint16() uint16   { return read(f, f.R.ReadUint16) }
func (f *Fields) Int32() int32     { return read(f, f.R.ReadInt32) }
func (f *Fields) Uint32() uint32   { return read(f, f.R.ReadUint32) }
func (f *Fields) Float32() float32 { return read(f, f.R.ReadFloat32) }

// Bytes 读取 n 个字节. 出错时返回长度为 n 的零值切片, 方便调用方按下标取值.
func (f *Fields) Bytes(n int) []byte {
	b := read(f, func() ([]byte, error) { return f.R.ReadBytes(n) })
	if b == nil {
		return make([]byte, max(n, 0))
	}
	return b
}
