package gameaudio

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// ContainerReader 是容器读取器的公共契约.
//
// Read 解析并校验整个头部; readAudioData 为 false 时不会读取任何负载字节.
// Project 把结构投影为 Stream, Configuration 返回重新写出同样文件所需的参数.
// 同一个流不能被并发读取, 不同的流可以并行解析.
type ContainerReader[S, C any] interface {
	Read(r io.ReadSeeker, readAudioData bool) (S, error)
	Project(structure S) (*Stream, error)
	Configuration(structure S) C
}

// ReadStream 读取完整文件并投影为 Stream.
func ReadStream[S, C any](cr ContainerReader[S, C], r io.ReadSeeker) (*Stream, error) {
	stream, _, err := ReadStreamWithConfig(cr, r)
	return stream, err
}

// ReadStreamWithConfig 同 ReadStream, 另外返回容器配置.
func ReadStreamWithConfig[S, C any](cr ContainerReader[S, C], r io.ReadSeeker) (*Stream, C, error) {
	var config C
	structure, err := cr.Read(r, true)
	if err != nil {
		return nil, config, err
	}
	stream, err := cr.Project(structure)
	if err != nil {
		return nil, config, err
	}
	return stream, cr.Configuration(structure), nil
}

// ReadMetadata 只解析头部, 不读取负载.
func ReadMetadata[S, C any](cr ContainerReader[S, C], r io.ReadSeeker) (S, error) {
	return cr.Read(r, false)
}

// ReadFile 是一个便捷函数, 打开 path 并读取为 Stream.
func ReadFile[S, C any](cr ContainerReader[S, C], path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer f.Close()

	stream, err := ReadStream(cr, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return stream, nil
}

// ReadBytes 是一个便捷函数, 从内存中的文件数据读取 Stream.
func ReadBytes[S, C any](cr ContainerReader[S, C], data []byte) (*Stream, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("input data is empty: %w", ErrStreamTooShort)
	}
	return ReadStream(cr, bytes.NewReader(data))
}
