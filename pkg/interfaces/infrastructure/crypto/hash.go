// Package crypto 提供VERYN系统的密码学基础接口定义
//
// 🔐 **哈希服务 (Hash Service)**
//
// 本文件定义了统一的哈希计算接口：
// - 交易/区块标识：双重SHA-256
// - 状态根摘要：SHA3-256
// - 地址推导：Hash160（SHA-256 + RIPEMD-160）
package crypto

// HashManager 哈希管理器接口
//
// 🎯 **核心职责**：
// 为交易哈希、Merkle树、状态摘要和地址推导提供统一的哈希原语。
type HashManager interface {
	// SHA256 计算SHA-256哈希
	SHA256(data []byte) []byte

	// DoubleSHA256 计算双重SHA-256哈希（交易/区块标识）
	DoubleSHA256(data []byte) []byte

	// SHA3_256 计算SHA3-256哈希（状态根摘要）
	SHA3_256(data []byte) []byte

	// Hash160 计算SHA-256后再RIPEMD-160（公钥→地址）
	Hash160(data []byte) []byte
}
