// Package mempool 提供VERYN系统的交易池接口定义
//
// 🌊 **交易池管理 (Transaction Pool Management)**
//
// 本文件定义了VERYN交易池的公共接口，专注于：
// - 已验证交易快照的存储和管理
// - 打包元数据（手续费/大小/权重/签名成本）的一次性预计算
// - 矿工和区块组装模块的交互
//
// 🎯 **设计原则**
// - 纯粹容器：作为纯粹的交易存储容器，不处理复杂业务
// - 只读快照：返回给组装器的条目严格只读
// - 池内调度/锁定（条目移除等）不属于组装核心的职责
package mempool

import "github.com/veryn/v1/pkg/types"

// TxPool 定义交易池对外接口，供其他组件调用
type TxPool interface {
	// SubmitTx 向交易池提交单个已验证的交易
	//
	// 🔐 前置条件：交易必须已通过完整验证（含合约载荷格式过滤）
	//
	// 返回：
	//   - []byte: 交易哈希（用于跟踪）
	//   - error: 提交错误
	SubmitTx(tx *types.Transaction) ([]byte, error)

	// GetEntriesForMining 获取用于挖矿的池条目快照
	//
	// 🎯 策略：按费率降序（同费率按入池时间升序），
	// 数量和权重上限由交易池配置决定。
	//
	// 返回的条目为不可变快照，组装器不得修改。
	GetEntriesForMining() ([]*types.PoolEntry, error)

	// GetTxStatus 获取交易当前处理状态
	GetTxStatus(txID []byte) (types.TxStatus, error)

	// RemoveTxs 移除指定交易（区块确认后由确认管理器调用）
	RemoveTxs(txIDs [][]byte) error
}
