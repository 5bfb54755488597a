// Package merkle 提供区块Merkle树根计算
//
// 🌳 **Merkle树 (Merkle Tree)**
//
// 🎯 **核心职责**：
// 对区块内全部交易哈希计算Merkle根，节点合并使用双重SHA-256。
// 奇数层末节点与自身配对（比特币式补齐）。
package merkle

import (
	"fmt"

	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/veryn/v1/pkg/types"
)

// Calculator Merkle根计算器
type Calculator struct {
	hashManager crypto.HashManager
}

// NewCalculator 创建Merkle根计算器
func NewCalculator(hashManager crypto.HashManager) *Calculator {
	return &Calculator{hashManager: hashManager}
}

// Root 计算交易哈希列表的Merkle根
//
// 参数：
//   - txHashes: 交易哈希列表（至少一个，Coinbase在首位）
//
// 返回：
//   - []byte: 32字节Merkle根
//   - error: 输入非法
func (c *Calculator) Root(txHashes [][]byte) ([]byte, error) {
	if len(txHashes) == 0 {
		return nil, fmt.Errorf("交易哈希列表不能为空")
	}
	for i, h := range txHashes {
		if !types.IsValidHash(h) {
			return nil, fmt.Errorf("交易哈希[%d]长度非法: %d", i, len(h))
		}
	}

	level := make([][]byte, len(txHashes))
	copy(level, txHashes)

	for len(level) > 1 {
		next := make([][]byte, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			left := level[i]
			right := left
			if i+1 < len(level) {
				right = level[i+1]
			}
			combined := make([]byte, 0, len(left)+len(right))
			combined = append(combined, left...)
			combined = append(combined, right...)
			next = append(next, c.hashManager.DoubleSHA256(combined))
		}
		level = next
	}

	return level[0], nil
}
