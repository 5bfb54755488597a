// Package txpool 提供交易池的具体实现
//
// 🌊 **交易池 (Transaction Pool)**
//
// 🎯 **核心职责**：
// - 存储已验证交易的不可变快照
// - 入池时一次性预计算打包元数据（手续费/大小/权重/签名成本）
// - 为区块组装提供按费率降序的只读条目快照
//
// ⚠️ **纯粹容器**：
// 交易验证（含合约载荷格式过滤）发生在入池之前，
// 池内不重复验证；池内调度/锁定不属于组装核心的职责。
package txpool

import (
	"context"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	txpoolcfg "github.com/veryn/v1/internal/config/txpool"
	"github.com/veryn/v1/internal/core/infrastructure/event"
	txcore "github.com/veryn/v1/internal/core/tx"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	mempooliface "github.com/veryn/v1/pkg/interfaces/mempool"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	"github.com/veryn/v1/pkg/types"
)

// 打包元数据常量
const (
	// weightScale 权重 = 序列化大小 × 比例因子
	weightScale = 4
	// sigOpCostPerInput 每个输入的签名操作成本
	sigOpCostPerInput = 4
)

// Pool 实现TxPool接口
type Pool struct {
	options   *txpoolcfg.Options
	hasher    *txcore.Hasher
	utxoQuery persistence.UTXOQuery
	bus       *event.Bus
	logger    log.Logger

	mu       sync.RWMutex
	entries  map[string]*types.PoolEntry // 交易哈希 → 条目
	statuses map[string]types.TxStatus   // 交易哈希 → 状态（含已移除交易）
}

// New 创建交易池
//
// 参数：
//   - options: 交易池配置
//   - hasher: 交易哈希器
//   - utxoQuery: UTXO查询（手续费计算需要输入金额）
//   - bus: 事件总线（允许为nil）
//   - logger: 日志记录器（允许为nil）
func New(options *txpoolcfg.Options, hasher *txcore.Hasher, utxoQuery persistence.UTXOQuery, bus *event.Bus, logger log.Logger) *Pool {
	if options == nil {
		options = txpoolcfg.New(nil)
	}
	return &Pool{
		options:   options,
		hasher:    hasher,
		utxoQuery: utxoQuery,
		bus:       bus,
		logger:    logger,
		entries:   make(map[string]*types.PoolEntry),
		statuses:  make(map[string]types.TxStatus),
	}
}

// SubmitTx 向交易池提交单个已验证的交易
func (p *Pool) SubmitTx(tx *types.Transaction) ([]byte, error) {
	if tx == nil {
		return nil, fmt.Errorf("交易不能为空")
	}
	if tx.IsCoinbase() {
		return nil, fmt.Errorf("Coinbase交易不允许进入交易池")
	}
	if tx.Internal {
		return nil, fmt.Errorf("内部交易不允许进入交易池")
	}

	encoded, err := p.hasher.EncodeTransaction(tx)
	if err != nil {
		return nil, fmt.Errorf("交易序列化失败: %w", err)
	}
	txHash := p.hasher.HashEncoded(encoded)
	key := string(txHash)

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.entries[key]; exists {
		return nil, fmt.Errorf("交易已在池中: %s", hex.EncodeToString(txHash))
	}
	if len(p.entries) >= p.options.MaxPoolSize {
		return nil, fmt.Errorf("交易池已满: size=%d", len(p.entries))
	}

	fee, err := p.computeFee(tx)
	if err != nil {
		return nil, err
	}

	size := uint64(len(encoded))
	entry := &types.PoolEntry{
		Tx:             tx,
		TxHash:         txHash,
		Fee:            fee,
		Size:           size,
		Weight:         size * weightScale,
		SigOpCost:      uint64(len(tx.Inputs)) * sigOpCostPerInput,
		AddedTimestamp: time.Now().Unix(),
	}

	p.entries[key] = entry
	p.statuses[key] = types.TxStatusPending

	if p.logger != nil {
		p.logger.Debugf("交易入池: hash=%s fee=%d size=%d", hex.EncodeToString(txHash), fee, size)
	}
	if p.bus != nil {
		p.bus.Publish(event.TopicTxAccepted, txHash)
	}
	return txHash, nil
}

// computeFee 计算手续费：输入总额 −（资产输出总额 + Gas预算总额）
//
// 被引用输出优先查链上UTXO视图，未命中再查池内未确认交易
// （链式消费）。调用方已持有p.mu。
func (p *Pool) computeFee(tx *types.Transaction) (uint64, error) {
	ctx := context.Background()

	var totalIn uint64
	for i, input := range tx.Inputs {
		if input == nil {
			return 0, fmt.Errorf("交易输入[%d]不能为空", i)
		}
		output, err := p.utxoQuery.GetOutput(ctx, input.PreviousTxHash, input.OutputIndex)
		if err != nil {
			return 0, fmt.Errorf("查询被引用输出失败: %w", err)
		}
		if output == nil {
			output = p.lookupPooledOutput(input)
		}
		if output == nil || output.Asset == nil {
			return 0, fmt.Errorf("被引用输出不存在或非资产输出: prev=%s index=%d",
				hex.EncodeToString(input.PreviousTxHash), input.OutputIndex)
		}
		totalIn += output.Asset.Amount
	}

	var totalOut uint64
	for _, output := range tx.Outputs {
		if output == nil {
			continue
		}
		if output.Asset != nil {
			totalOut += output.Asset.Amount
		}
		if output.ContractCall != nil {
			totalOut += output.ContractCall.GasLimit * output.ContractCall.GasPrice
		}
	}

	if totalIn < totalOut {
		return 0, fmt.Errorf("输入金额不足: in=%d out=%d", totalIn, totalOut)
	}
	return totalIn - totalOut, nil
}

// lookupPooledOutput 在池内未确认交易中查找被引用输出
func (p *Pool) lookupPooledOutput(input *types.TxInput) *types.TxOutput {
	entry, ok := p.entries[string(input.PreviousTxHash)]
	if !ok {
		return nil
	}
	if int(input.OutputIndex) >= len(entry.Tx.Outputs) {
		return nil
	}
	return entry.Tx.Outputs[input.OutputIndex]
}

// GetEntriesForMining 获取用于挖矿的池条目快照
//
// 按费率降序（同费率按入池时间升序），受配置的条目数、
// 累积权重与累积签名成本三重上限约束。
func (p *Pool) GetEntriesForMining() ([]*types.PoolEntry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]*types.PoolEntry, 0, len(p.entries))
	for _, entry := range p.entries {
		candidates = append(candidates, entry)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ri, rj := candidates[i].FeeRate(), candidates[j].FeeRate()
		if ri != rj {
			return ri > rj
		}
		return candidates[i].AddedTimestamp < candidates[j].AddedTimestamp
	})

	selected := make([]*types.PoolEntry, 0, p.options.MiningMaxEntries)
	var totalWeight, totalSigOpCost uint64
	for _, entry := range candidates {
		if len(selected) >= p.options.MiningMaxEntries {
			break
		}
		if totalWeight+entry.Weight > p.options.MiningMaxWeight {
			continue
		}
		if totalSigOpCost+entry.SigOpCost > p.options.MiningMaxSigOpCost {
			continue
		}
		selected = append(selected, entry)
		totalWeight += entry.Weight
		totalSigOpCost += entry.SigOpCost
		p.statuses[string(entry.TxHash)] = types.TxStatusMining
	}

	return selected, nil
}

// GetTxStatus 获取交易当前处理状态
func (p *Pool) GetTxStatus(txID []byte) (types.TxStatus, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status, ok := p.statuses[string(txID)]
	if !ok {
		return types.TxStatusUnknown, nil
	}
	return status, nil
}

// RemoveTxs 移除指定交易（区块确认后由确认管理器调用）
func (p *Pool) RemoveTxs(txIDs [][]byte) error {
	p.mu.Lock()
	removed := make([][]byte, 0, len(txIDs))
	for _, txID := range txIDs {
		key := string(txID)
		if _, ok := p.entries[key]; ok {
			delete(p.entries, key)
			p.statuses[key] = types.TxStatusConfirmed
			removed = append(removed, txID)
		}
	}
	p.mu.Unlock()

	if p.bus != nil {
		for _, txID := range removed {
			p.bus.Publish(event.TopicTxRemoved, txID)
		}
	}
	return nil
}

// Len 返回池内交易数量
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// 编译时检查接口实现
var _ mempooliface.TxPool = (*Pool)(nil)
