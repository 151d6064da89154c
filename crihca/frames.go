package crihca

// CipherFrames 是按文件原样保存的帧数据, 可能经过加密.
// 它只能通过 Decrypt 变成 PlainFrames, 这样同一份数据不会被解密两次.
type CipherFrames [][]byte

// PlainFrames 是已解密 (或本来就未加密) 的帧数据.
type PlainFrames [][]byte

// Decrypt 用 key 解密所有帧并返回新的缓冲区, 原数据保持不变.
// key 为 nil 时等同于恒等映射, 只做拷贝.
func (f CipherFrames) Decrypt(key *Key) PlainFrames {
	out := make(PlainFrames, len(f))
	for i, frame := range f {
		out[i] = make([]byte, len(frame))
		if key == nil {
			copy(out[i], frame)
			continue
		}
		key.DecryptFrame(out[i], frame)
	}
	return out
}

// Encrypt 是 Decrypt 的逆运算.
func (f PlainFrames) Encrypt(key *Key) CipherFrames {
	out := make(CipherFrames, len(f))
	for i, frame := range f {
		out[i] = make([]byte, len(frame))
		if key == nil {
			copy(out[i], frame)
			continue
		}
		key.EncryptFrame(out[i], frame)
	}
	return out
}

// DecryptFrame 把 src 解密到 dst. 末尾 2 字节的校验和按解密后的内容重新计算.
// dst 和 src 可以是同一个切片.
func (k *Key) DecryptFrame(dst, src []byte) {
	cryptFrame(&k.DecryptionTable, dst, src)
}

// EncryptFrame 把 src 加密到 dst, 校验和处理同 DecryptFrame.
func (k *Key) EncryptFrame(dst, src []byte) {
	cryptFrame(&k.EncryptionTable, dst, src)
}

func cryptFrame(table *[256]byte, dst, src []byte) {
	if len(src) < 2 {
		copy(dst, src)
		return
	}
	body := len(src) - 2
	for i := 0; i < body; i++ {
		dst[i] = table[src[i]]
	}
	SetChecksum(dst[:len(src)])
}
