package binstream

import (
	"errors"
	"io"
	"testing"
)

func TestReaderBigEndian(t *testing.T) {
	data := []byte{
		0x80,       // int8
		0xFE,       // uint8
		0xFF, 0xFE, // int16
		0x12, 0x34, // uint16
		0xFF, 0xFF, 0xFF, 0xFD, // int32
		0xDE, 0xAD, 0xBE, 0xEF, // uint32
		0x3F, 0x80, 0x00, 0x00, // float32 1.0
		'a', 'b', 'c',
	}
	r := NewReader(NewMemoryStream(data), BigEndian)

	if v, err := r.ReadInt8(); err != nil || v != -128 {
		t.Errorf("ReadInt8() = %d, %v; want -128", v, err)
	}
	if v, err := r.ReadUint8(); err != nil || v != 0xFE {
		t.Errorf("ReadUint8() = %d, %v; want 254", v, err)
	}
	if v, err := r.ReadInt16(); err != nil || v != -2 {
		t.Errorf("ReadInt16() = %d, %v; want -2", v, err)
	}
	if v, err := r.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16() = %#x, %v; want 0x1234", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -3 {
		t.Errorf("ReadInt32() = %d, %v; want -3", v, err)
	}
	if v, err := r.ReadUint32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadUint32() = %#x, %v; want 0xdeadbeef", v, err)
	}
	if v, err := r.ReadFloat32(); err != nil || v != 1.0 {
		t.Errorf("ReadFloat32() = %v, %v; want 1", v, err)
	}
	if b, err := r.ReadBytes(3); err != nil || string(b) != "abc" {
		t.Errorf("ReadBytes(3) = %q, %v; want abc", b, err)
	}
	if pos, _ := r.Position(); pos != int64(len(data)) {
		t.Errorf("Position() = %d, want %d", pos, len(data))
	}
}

func TestReaderLittleEndian(t *testing.T) {
	r := NewReader(NewMemoryStream([]byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12}), LittleEndian)
	if v, _ := r.ReadUint16(); v != 0x1234 {
		t.Errorf("ReadUint16() = %#x, want 0x1234", v)
	}
	if v, _ := r.ReadUint32(); v != 0x12345678 {
		t.Errorf("ReadUint32() = %#x, want 0x12345678", v)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(NewMemoryStream([]byte{0x01}), BigEndian)
	if _, err := r.ReadUint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint32() error = %v, want io.ErrUnexpectedEOF", err)
	}

	r = NewReader(NewMemoryStream([]byte{1, 2, 3}), BigEndian)
	if _, err := r.ReadBytes(4); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadBytes(4) error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewReader(NewMemoryStream([]byte{0, 1, 2, 3, 4, 5}), BigEndian)
	if err := r.SetPosition(4); err != nil {
		t.Fatal(err)
	}
	if v, _ := r.ReadUint16(); v != 0x0405 {
		t.Errorf("after SetPosition(4) ReadUint16() = %#x, want 0x0405", v)
	}
	if err := r.SetPosition(0); err != nil {
		t.Fatal(err)
	}
	if v, _ := r.ReadUint8(); v != 0 {
		t.Errorf("re-read after SetPosition(0) = %d, want 0", v)
	}
	length, err := r.Length()
	if err != nil || length != 6 {
		t.Errorf("Length() = %d, %v; want 6", length, err)
	}
	if pos, _ := r.Position(); pos != 1 {
		t.Errorf("Length() moved position to %d", pos)
	}
	if rem, _ := r.Remaining(); rem != 5 {
		t.Errorf("Remaining() = %d, want 5", rem)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	for _, e := range []Endianness{BigEndian, LittleEndian} {
		ms := NewMemoryStream(nil)
		w := NewWriter(ms, e)
		w.WriteInt8(-5)
		w.WriteUint8(200)
		w.WriteInt16(-1234)
		w.WriteUint16(0xBEEF)
		w.WriteInt32(-123456)
		w.WriteUint32(0xCAFEBABE)
		w.WriteFloat32(-0.5)
		w.WriteBytes([]byte("xyz"))
		if err := w.Err(); err != nil {
			t.Fatal(err)
		}

		r := NewReader(NewMemoryStream(ms.Bytes()), e)
		i8, _ := r.ReadInt8()
		u8, _ := r.ReadUint8()
		i16, _ := r.ReadInt16()
		u16, _ := r.ReadUint16()
		i32, _ := r.ReadInt32()
		u32, _ := r.ReadUint32()
		f32, _ := r.ReadFloat32()
		b, err := r.ReadBytes(3)
		if err != nil {
			t.Fatal(err)
		}
		if i8 != -5 || u8 != 200 || i16 != -1234 || u16 != 0xBEEF || i32 != -123456 ||
			u32 != 0xCAFEBABE || f32 != -0.5 || string(b) != "xyz" {
			t.Errorf("endianness %d: round trip mismatch: %d %d %d %#x %d %#x %v %q",
				e, i8, u8, i16, u16, i32, u32, f32, b)
		}
	}
}

func TestWriterOverwrite(t *testing.T) {
	ms := NewMemoryStream(nil)
	w := NewWriter(ms, BigEndian)
	w.WriteUint32(0)
	w.WriteUint16(0xAAAA)
	if err := w.SetPosition(0); err != nil {
		t.Fatal(err)
	}
	w.WriteUint16(0x0102)
	want := []byte{1, 2, 0, 0, 0xAA, 0xAA}
	if got := ms.Bytes(); string(got) != string(want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
}

func TestMemoryStreamSeekPastEnd(t *testing.T) {
	ms := NewMemoryStream([]byte{1})
	if _, err := ms.Seek(3, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	ms.Write([]byte{9})
	want := []byte{1, 0, 0, 9}
	if got := ms.Bytes(); string(got) != string(want) {
		t.Errorf("Bytes() = %v, want %v", got, want)
	}
	if _, err := ms.Seek(-1, io.SeekStart); err == nil {
		t.Error("Seek(-1) succeeded, want error")
	}
}

func TestReadCString(t *testing.T) {
	r := NewReader(NewMemoryStream([]byte("abc\x00def")), BigEndian)
	if s, err := r.ReadCString(16); err != nil || s != "abc" {
		t.Errorf("ReadCString() = %q, %v; want abc", s, err)
	}
	if _, err := r.ReadCString(16); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("unterminated ReadCString() error = %v", err)
	}

	r = NewReader(NewMemoryStream([]byte("abcdef\x00")), BigEndian)
	if _, err := r.ReadCString(3); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadCString(3) error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFieldsStopAtFirstError(t *testing.T) {
	f := &Fields{R: NewReader(NewMemoryStream([]byte{0x12, 0x34, 0x56}), BigEndian)}
	a := f.Uint16()
	b := f.Uint16()
	c := f.Uint8()
	if a != 0x1234 || b != 0 || c != 0 {
		t.Errorf("got %#x %#x %#x", a, b, c)
	}
	if !errors.Is(f.Err, io.ErrUnexpectedEOF) {
		t.Errorf("Err = %v, want io.ErrUnexpectedEOF", f.Err)
	}
	if got := f.Bytes(2); len(got) != 2 {
		t.Errorf("Bytes(2) after error has length %d", len(got))
	}
}
