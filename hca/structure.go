package hca

import "github.com/WJQSERVER/gameaudio/crihca"

// Structure 是解析后的 HCA 文件.
//
// Frames 保存文件中的原始帧, Project 会把解密结果写入新的缓冲区, 不修改这里的数据.
// 只读取头部时 Frames 为 nil.
type Structure struct {
	Info crihca.Info

	// comp 块末尾的两个保留字节.
	Reserved1 int
	Reserved2 int

	Frames crihca.CipherFrames

	// CRCMismatches 是校验和不匹配的帧序号.
	CRCMismatches []int

	// EncryptionKey 是解析时确定的密钥, 为 nil 表示不解密.
	EncryptionKey *crihca.Key
}

// Configuration 是重新编码同一文件所需的参数.
type Configuration struct {
	EncryptionKey *crihca.Key
}
