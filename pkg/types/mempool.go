// Package types 提供交易池相关的业务数据结构
package types

// PoolEntry 交易池条目
//
// 🎯 **不可变交易快照**：
// 交易加上入池时一次性预计算的打包元数据。
// 对区块组装核心而言严格只读；池内调度/锁定不属于本层职责。
type PoolEntry struct {
	// Tx 交易快照
	Tx *Transaction

	// TxHash 交易哈希（32字节，入池时计算）
	TxHash []byte

	// Fee 手续费（最小单位）
	Fee uint64

	// Size 序列化字节大小
	Size uint64

	// Weight 打包权重
	Weight uint64

	// SigOpCost 签名操作成本
	SigOpCost uint64

	// AddedTimestamp 入池时间戳（Unix秒，用于同费率排序的稳定性）
	AddedTimestamp int64
}

// FeeRate 费率（手续费/权重，权重为0时返回0）
func (e *PoolEntry) FeeRate() float64 {
	if e == nil || e.Weight == 0 {
		return 0
	}
	return float64(e.Fee) / float64(e.Weight)
}

// TxStatus 交易池内交易状态
type TxStatus int32

const (
	TxStatusUnknown TxStatus = iota
	TxStatusPending
	TxStatusMining
	TxStatusConfirmed
	TxStatusRejected
)
