package crihca

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"gopkg.in/yaml.v3"
)

// KeyEntry 是密钥列表中的一项. Code 写成字符串, 支持 0x 前缀的十六进制.
type KeyEntry struct {
	Name   string `yaml:"name,omitempty"`
	Code   string `yaml:"code"`
	Subkey uint16 `yaml:"subkey,omitempty"`
}

// KeyList 对应 YAML 文件:
//
//	keys:
//	  - name: default
//	    code: "0xCC55463930DBE1AB"
type KeyList struct {
	Keys []KeyEntry `yaml:"keys"`
}

// LoadKeyList 从 r 读取 YAML 密钥列表.
func LoadKeyList(r io.Reader) (*KeyList, error) {
	var list KeyList
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&list); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode key list: %w", err)
	}
	for i, e := range list.Keys {
		if _, err := strconv.ParseUint(e.Code, 0, 64); err != nil {
			return nil, fmt.Errorf("key %d (%s): invalid code %q: %w", i, e.Name, e.Code, err)
		}
	}
	return &list, nil
}

// Codes 返回已按子密钥修正过的密钥码.
func (l *KeyList) Codes() []uint64 {
	codes := make([]uint64, 0, len(l.Keys))
	for _, e := range l.Keys {
		code, err := strconv.ParseUint(e.Code, 0, 64)
		if err != nil {
			continue
		}
		codes = append(codes, applySubkey(code, e.Subkey))
	}
	return codes
}

// Finder 返回依次尝试列表中密钥的 KeyFinder.
func (l *KeyList) Finder() KnownKeyFinder {
	return KnownKeyFinder{Keys: l.Codes()}
}
