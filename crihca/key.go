// Package crihca 包含 CRI HCA 编码相关的公共部分: 加密表, 校验和, 头部信息和密钥搜索.
package crihca

import (
	"errors"
	"fmt"
	"sync"
)

// KeyType 是不依赖密钥码的固定加密方案.
type KeyType int

const (
	Type0 KeyType = 0 // 恒等映射, 即不加密
	Type1 KeyType = 1
)

var ErrUnsupportedKeyType = errors.New("crihca: unsupported key type")

// Key 是一对互逆的 256 字节置换表.
// DecryptionTable[c] 为密文字节 c 对应的明文, EncryptionTable 是它的逆.
// 任何构造方式下 0 和 0xFF 都是不动点.
type Key struct {
	KeyCode         uint64
	DecryptionTable [256]byte
	EncryptionTable [256]byte
}

// NewKey 由 64 位密钥码生成密钥 (ciph 类型 56).
func NewKey(keyCode uint64) *Key {
	k := &Key{KeyCode: keyCode, DecryptionTable: CreateDecryptionTable(keyCode)}
	k.EncryptionTable = InvertTable(k.DecryptionTable)
	return k
}

// NewKeyWithSubkey 用 AWB 子密钥修正 keyCode 后生成密钥. subkey 为 0 时等同于 NewKey.
func NewKeyWithSubkey(keyCode uint64, subkey uint16) *Key {
	return NewKey(applySubkey(keyCode, subkey))
}

func applySubkey(keyCode uint64, subkey uint16) uint64 {
	if subkey != 0 {
		keyCode *= (uint64(subkey) << 16) | (uint64(^subkey) + 2)
	}
	return keyCode
}

// NewKeyType 生成固定方案的密钥.
func NewKeyType(t KeyType) (*Key, error) {
	k := &Key{}
	switch t {
	case Type0:
		k.DecryptionTable = CreateDecryptionTableType0()
	case Type1:
		k.DecryptionTable = CreateDecryptionTableType1()
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKeyType, int(t))
	}
	k.EncryptionTable = InvertTable(k.DecryptionTable)
	return k, nil
}

// CreateDecryptionTable 由密钥码生成解密表.
// keyCode-1 按小端拆成 8 字节, kc[0] 作为行种子, kc[1..6] 混合成 16 个列种子.
func CreateDecryptionTable(keyCode uint64) [256]byte {
	var kc [8]byte
	v := keyCode - 1
	for i := range kc {
		kc[i] = byte(v)
		v >>= 8
	}

	seed := [16]byte{
		kc[1],
		kc[6] ^ kc[1],
		kc[2] ^ kc[3],
		kc[2],
		kc[1] ^ kc[2],
		kc[3] ^ kc[4],
		kc[3],
		kc[2] ^ kc[3],
		kc[4] ^ kc[5],
		kc[4],
		kc[3] ^ kc[4],
		kc[5] ^ kc[6],
		kc[5],
		kc[4] ^ kc[5],
		kc[6] ^ kc[1],
		kc[6],
	}

	return CreateTable(kc[0], seed)
}

func CreateDecryptionTableType0() [256]byte {
	var table [256]byte
	for i := range table {
		table[i] = byte(i)
	}
	return table
}

// CreateDecryptionTableType1 以 x = (x*13 + 11) mod 256 从 0 开始游走,
// 跳过 0 和 0xFF, 依次写入位置 1..254.
func CreateDecryptionTableType1() [256]byte {
	var table [256]byte
	const mult, inc = 13, 11
	x := 0
	outPos := 1

	for i := 0; i < 256; i++ {
		x = (x*mult + inc) % 256
		if x != 0 && x != 0xFF {
			table[outPos] = byte(x)
			outPos++
		}
	}

	table[0xFF] = 0xFF
	return table
}

// rows 是 256 个种子对应的伪随机行, 首次使用时生成, 之后只读.
var rows = sync.OnceValue(func() *[256][16]byte {
	var r [256][16]byte
	for i := range r {
		r[i] = CreateRandomRow(byte(i))
	}
	return &r
})

// CreateRandomRow 用种子的不同位段作为乘数和增量, 生成 16 个 [0,15] 内的值.
func CreateRandomRow(seed byte) [16]byte {
	var row [16]byte
	x := int(seed >> 4)
	mult := int(seed&1)<<3 | 5
	inc := int(seed&0xE) | 1

	for i := range row {
		x = (x*mult + inc) % 16
		row[i] = byte(x)
	}
	return row
}

// CreateTable 组合行种子和列种子得到原始表, 再经过 ShuffleTable 打乱.
// 位置 16*r+c 的高半字节来自 rows[rowSeed][r], 低半字节来自 rows[columnSeeds[r]][c].
func CreateTable(rowSeed byte, columnSeeds [16]byte) [256]byte {
	bank := rows()
	row := bank[rowSeed]

	var table [256]byte
	for r := 0; r < 16; r++ {
		column := bank[columnSeeds[r]]
		for c := 0; c < 16; c++ {
			table[16*r+c] = row[r]<<4 | column[c]
		}
	}

	return ShuffleTable(table)
}

// ShuffleTable 以步长 17 遍历输入表, 跳过 0 和 0xFF 后依次写入位置 1..254 的输出.
// 输入是置换时正好填满这些位置; 否则多出的值被丢弃, 不足的位置保持为 0.
func ShuffleTable(in [256]byte) [256]byte {
	var table [256]byte
	var x byte
	outPos := 1

	for i := 0; i < 256 && outPos < 0xFF; i++ {
		x += 17
		if in[x] != 0 && in[x] != 0xFF {
			table[outPos] = in[x]
			outPos++
		}
	}

	table[0xFF] = 0xFF
	return table
}

// InvertTable 返回置换表的逆.
func InvertTable(in [256]byte) [256]byte {
	var table [256]byte
	for i, v := range in {
		table[v] = byte(i)
	}
	return table
}
