// Package types 提供区块模板相关的业务数据结构
package types

// BlockTemplate 挖矿区块模板
//
// 🎯 **只增不减的累积结构**：
// 组装核心只向模板追加，从不移除。每次追加交易（无论池交易
// 还是内部交易）都与计数/权重/大小/签名成本的更新在同一方法内
// 完成，保证即使一次调用中途失败中止整个组装，也不会出现
// 交易列表与簿记量不一致的可观察状态。
//
// 📋 **列表对齐约定**：
// - Transactions：Coinbase在首位，池交易与其内部交易按打包顺序交错
// - Fees：每个池条目一条（合约调整后的实记手续费）；内部交易无独立条目
// - SigOpCosts：每笔追加的交易一条（与 Transactions 对齐，Coinbase为0）
type BlockTemplate struct {
	// Transactions 交易列表
	Transactions []*Transaction

	// Fees 实记手续费列表（按池条目顺序）
	Fees []uint64

	// SigOpCosts 签名操作成本列表（按交易顺序）
	SigOpCosts []uint64

	// Header 区块头（updateHeaders阶段填充Merkle根/状态根）
	Header *BlockHeader

	// TotalFees 实记手续费总额
	TotalFees uint64

	// TxCount 已打包交易计数（含Coinbase与内部交易）
	TxCount uint64

	// TotalWeight 累积权重
	TotalWeight uint64

	// TotalSigOpCost 累积签名操作成本
	TotalSigOpCost uint64

	// TotalSize 累积字节大小（启用大小统计时维护）
	TotalSize uint64

	// SizeAccounting 是否启用字节大小统计
	SizeAccounting bool
}

// AppendTransaction 追加一笔交易并原子更新全部簿记量
//
// 参数：
//   - tx: 交易
//   - sigOpCost: 该交易的签名操作成本
//   - weight: 该交易的权重
//   - size: 该交易的字节大小（SizeAccounting关闭时忽略）
func (t *BlockTemplate) AppendTransaction(tx *Transaction, sigOpCost, weight, size uint64) {
	t.Transactions = append(t.Transactions, tx)
	t.SigOpCosts = append(t.SigOpCosts, sigOpCost)
	t.TxCount++
	t.TotalWeight += weight
	t.TotalSigOpCost += sigOpCost
	if t.SizeAccounting {
		t.TotalSize += size
	}
}

// RecordFee 记录一个池条目的实记手续费
//
// 内部交易不调用本方法：其成本已计入发起调用的Gas结算。
func (t *BlockTemplate) RecordFee(fee uint64) {
	t.Fees = append(t.Fees, fee)
	t.TotalFees += fee
}

// RewardTransaction 返回激励交易（首位交易，未创建时为nil）
func (t *BlockTemplate) RewardTransaction() *Transaction {
	if len(t.Transactions) == 0 {
		return nil
	}
	return t.Transactions[0]
}
