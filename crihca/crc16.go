package crihca

// Crc16 是非反射的表驱动 CRC-16, 初值为 0.
type Crc16 struct {
	table [256]uint16
}

// NewCrc16 按多项式 polynomial 生成查找表. HCA 使用 0x8005.
func NewCrc16(polynomial uint16) *Crc16 {
	c := &Crc16{}
	for i := range c.table {
		v := uint16(i) << 8
		for b := 0; b < 8; b++ {
			if v&0x8000 != 0 {
				v = v<<1 ^ polynomial
			} else {
				v <<= 1
			}
		}
		c.table[i] = v
	}
	return c
}

// Compute 计算 data 前 size 个字节的校验和.
func (c *Crc16) Compute(data []byte, size int) uint16 {
	var crc uint16
	for _, b := range data[:size] {
		crc = crc<<8 ^ c.table[byte(crc>>8)^b]
	}
	return crc
}

var frameCrc = NewCrc16(0x8005)

// FrameChecksum 计算 HCA 帧除末尾 2 字节外的校验和.
func FrameChecksum(frame []byte) uint16 {
	return frameCrc.Compute(frame, len(frame)-2)
}

// StoredChecksum 返回帧末尾 2 字节 (大端) 中保存的校验和.
func StoredChecksum(frame []byte) uint16 {
	return uint16(frame[len(frame)-2])<<8 | uint16(frame[len(frame)-1])
}

// ChecksumValid 报告帧的校验和是否匹配. 不足 2 字节的帧视为无效.
func ChecksumValid(frame []byte) bool {
	if len(frame) < 2 {
		return false
	}
	return FrameChecksum(frame) == StoredChecksum(frame)
}

// SetChecksum 重新计算并写入帧末尾的校验和.
func SetChecksum(frame []byte) {
	if len(frame) < 2 {
		return
	}
	crc := FrameChecksum(frame)
	frame[len(frame)-2] = byte(crc >> 8)
	frame[len(frame)-1] = byte(crc)
}
