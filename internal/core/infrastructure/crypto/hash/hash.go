// Package hash 提供哈希计算的具体实现
//
// 🔐 **哈希管理器实现 (Hash Manager Implementation)**
//
// 🎯 **核心职责**：
// - 双重SHA-256：交易哈希与区块哈希
// - SHA3-256：状态根摘要
// - Hash160：公钥到地址的推导
package hash

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcutil"
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	"golang.org/x/crypto/sha3"
)

// Manager 实现HashManager接口
type Manager struct{}

// NewManager 创建哈希管理器
func NewManager() *Manager {
	return &Manager{}
}

// SHA256 计算SHA-256哈希
func (m *Manager) SHA256(data []byte) []byte {
	h := sha256.Sum256(data)
	return h[:]
}

// DoubleSHA256 计算双重SHA-256哈希
//
// 💡 交易和区块的链上标识统一使用双重SHA-256，
// Merkle树节点合并也复用该原语。
func (m *Manager) DoubleSHA256(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:]
}

// SHA3_256 计算SHA3-256哈希
// 状态根摘要使用SHA3-256，与交易标识域分离
func (m *Manager) SHA3_256(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

// Hash160 计算SHA-256后再RIPEMD-160
// 输出20字节，用于公钥到地址的推导
func (m *Manager) Hash160(data []byte) []byte {
	return btcutil.Hash160(data)
}

// 编译时检查接口实现
var _ crypto.HashManager = (*Manager)(nil)
