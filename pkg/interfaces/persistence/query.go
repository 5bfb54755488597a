// Package persistence 提供VERYN系统的链状态查询接口定义（CQRS读路径）
//
// 🔍 **链状态查询 (Chain State Query)**
//
// 本文件定义区块组装所需的只读链视图：
// - 链尖信息（高度/最佳区块哈希/难度）
// - UTXO视图（付款方解析的回退查找路径）
//
// 链遍历与难度调整算法属于外部协作方，本层只做查询。
package persistence

import (
	"context"

	"github.com/veryn/v1/pkg/types"
)

// ChainQuery 链查询服务接口
type ChainQuery interface {
	// GetChainInfo 获取链尖信息
	//
	// 返回：
	//   - *types.ChainInfo: 高度、最佳区块哈希、当前难度
	//   - error: 查询错误
	GetChainInfo(ctx context.Context) (*types.ChainInfo, error)
}

// UTXOQuery UTXO查询服务接口
type UTXOQuery interface {
	// GetOutput 按 (交易哈希, 输出索引) 查找未花费输出
	//
	// 返回：
	//   - *types.TxOutput: 输出（不存在时为nil）
	//   - error: 查询错误
	GetOutput(ctx context.Context, txHash []byte, index uint32) (*types.TxOutput, error)
}
