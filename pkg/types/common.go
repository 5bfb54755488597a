// Package types 提供VERYN系统的基础业务数据结构
//
// 🎯 **设计理念 - 简洁实用原则**
//
// types层只放跨模块共享的纯数据结构：
// - ✅ 无业务逻辑、无外部依赖（仅标准库）
// - ✅ 每个类型都有明确的数据来源和使用方
// - ✅ 避免为了"看起来完整"而添加无用字段
package types

// 基础长度常量
const (
	// HashSize 哈希长度（SHA-256 双哈希 / SHA3-256 状态摘要统一为32字节）
	HashSize = 32

	// AddressSize 地址长度（公钥 Hash160，20字节）
	AddressSize = 20
)

// IsValidHash 检查哈希长度是否合法
func IsValidHash(h []byte) bool {
	return len(h) == HashSize
}

// IsValidAddress 检查地址长度是否合法
func IsValidAddress(addr []byte) bool {
	return len(addr) == AddressSize
}

// CopyBytes 创建字节切片的副本（防止外部修改共享数据）
func CopyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
