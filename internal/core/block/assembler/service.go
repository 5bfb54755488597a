// Package assembler 提供区块模板组装的具体实现
//
// 🧱 **区块模板组装器 (Block Template Assembler)**
//
// 🎯 **核心职责**：
// - 读取链尖，构建Coinbase激励交易
// - 按费率降序遍历池条目快照，经扩展挂点逐条进入模板
// - 终结：退款输出追加 → 外层状态提交 → Merkle根与状态根写入区块头
//
// ⚠️ **核心约束**：
// - 组装要么返回完全一致的模板，要么整体失败，绝不返回部分模板
// - 区块头的状态根严格在外层状态上下文提交之后写入
// - 模板只增不减：追加与簿记更新在同一方法内完成
package assembler

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	assemblercfg "github.com/veryn/v1/internal/config/assembler"
	"github.com/veryn/v1/internal/core/block/merkle"
	"github.com/veryn/v1/internal/core/infrastructure/event"
	txcore "github.com/veryn/v1/internal/core/tx"
	blockiface "github.com/veryn/v1/pkg/interfaces/block"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	mempooliface "github.com/veryn/v1/pkg/interfaces/mempool"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"github.com/veryn/v1/pkg/types"
)

// Service 实现Assembler接口
type Service struct {
	chainID    uint64
	options    *assemblercfg.Options
	chainQuery persistence.ChainQuery
	txPool     mempooliface.TxPool
	feeManager txiface.FeeManager
	hasher     *txcore.Hasher
	merkle     *merkle.Calculator
	hooks      ExtensionHooks
	bus        *event.Bus
	logger     log.Logger
}

// NewService 创建区块模板组装器
//
// 参数：
//   - chainID: 链标识
//   - options: 组装配置
//   - chainQuery: 链尖查询
//   - txPool: 交易池
//   - feeManager: 手续费管理器
//   - hasher: 交易哈希器
//   - merkleCalc: Merkle根计算器
//   - hooks: 扩展挂点（nil退化为纯转账组装）
//   - bus: 事件总线（允许为nil）
//   - logger: 日志记录器（允许为nil）
func NewService(
	chainID uint64,
	options *assemblercfg.Options,
	chainQuery persistence.ChainQuery,
	txPool mempooliface.TxPool,
	feeManager txiface.FeeManager,
	hasher *txcore.Hasher,
	merkleCalc *merkle.Calculator,
	hooks ExtensionHooks,
	bus *event.Bus,
	logger log.Logger,
) *Service {
	if options == nil {
		options = assemblercfg.New(nil)
	}
	if hooks == nil {
		hooks = NewPlainHooks()
	}
	return &Service{
		chainID:    chainID,
		options:    options,
		chainQuery: chainQuery,
		txPool:     txPool,
		feeManager: feeManager,
		hasher:     hasher,
		merkle:     merkleCalc,
		hooks:      hooks,
		bus:        bus,
		logger:     logger,
	}
}

// CreateNewBlock 组装一个新的挖矿区块模板
func (s *Service) CreateNewBlock(ctx context.Context, payoutOwner []byte) (*types.BlockTemplate, error) {
	if !types.IsValidAddress(payoutOwner) {
		return nil, fmt.Errorf("矿工地址长度非法: %d", len(payoutOwner))
	}

	sessionID := uuid.NewString()
	startTime := time.Now()

	// 1. 读取链尖
	chainInfo, err := s.chainQuery.GetChainInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取链尖信息失败: %w", err)
	}
	height := chainInfo.Height + 1

	if s.logger != nil {
		s.logger.Infof("开始组装区块模板: session=%s height=%d miner=%s",
			sessionID, height, hex.EncodeToString(payoutOwner))
	}

	// 2. 构建模板骨架与Coinbase
	actx := &AssemblyContext{
		SessionID:   sessionID,
		Height:      height,
		Difficulty:  chainInfo.Difficulty,
		PayoutOwner: types.CopyBytes(payoutOwner),
		Template: &types.BlockTemplate{
			Header: &types.BlockHeader{
				ChainID:      s.chainID,
				Version:      s.options.BlockVersion,
				PreviousHash: types.CopyBytes(chainInfo.BestBlockHash),
				Timestamp:    uint64(time.Now().Unix()),
				Height:       height,
				Nonce:        make([]byte, 8),
				Difficulty:   chainInfo.Difficulty,
			},
			SizeAccounting: s.options.SizeAccounting,
		},
	}

	if err := s.appendRewardTransaction(ctx, actx); err != nil {
		return nil, s.abort(actx, err)
	}

	// 3. 池条目快照按委托顺序逐条进入模板
	entries, err := s.txPool.GetEntriesForMining()
	if err != nil {
		return nil, s.abort(actx, fmt.Errorf("获取挖矿池条目失败: %w", err))
	}

	for _, entry := range entries {
		if entry == nil || entry.Tx == nil {
			return nil, s.abort(actx, fmt.Errorf("池条目非法：交易为空"))
		}
		adjustedFee, err := s.hooks.AddToBlock(ctx, actx, entry)
		if err != nil {
			return nil, s.abort(actx, fmt.Errorf("条目进入模板失败: tx=%s: %w",
				hex.EncodeToString(entry.TxHash), err))
		}
		actx.Template.RecordFee(adjustedFee)
	}

	// 4. 终结：退款追加与外层状态提交
	if err := s.hooks.BeforeUpdateHeaders(ctx, actx); err != nil {
		return nil, s.abort(actx, fmt.Errorf("模板终结失败: %w", err))
	}

	// 5. 区块头更新（状态根已在终结阶段提交后读取）
	if err := s.updateHeaders(actx); err != nil {
		return nil, s.abort(actx, err)
	}

	templatesAssembledTotal.Inc()
	templateBuildDuration.Observe(time.Since(startTime).Seconds())
	templateTxCount.Observe(float64(actx.Template.TxCount))

	if s.logger != nil {
		s.logger.Infof("区块模板组装完成: session=%s height=%d txs=%d fees=%d weight=%d",
			sessionID, height, actx.Template.TxCount, actx.Template.TotalFees, actx.Template.TotalWeight)
	}
	if s.bus != nil {
		s.bus.Publish(event.TopicTemplateAssembled, actx.Template)
	}
	return actx.Template, nil
}

// appendRewardTransaction 构建并追加Coinbase激励交易
func (s *Service) appendRewardTransaction(ctx context.Context, actx *AssemblyContext) error {
	reward, err := s.feeManager.BuildRewardTransaction(ctx, actx.Height, actx.PayoutOwner, s.chainID)
	if err != nil {
		return fmt.Errorf("构建激励交易失败: %w", err)
	}

	encoded, err := s.hasher.EncodeTransaction(reward)
	if err != nil {
		return fmt.Errorf("激励交易序列化失败: %w", err)
	}
	size := uint64(len(encoded))

	// Coinbase无输入，签名成本为0
	actx.Template.AppendTransaction(reward, 0, size*4, size)
	actx.Included = append(actx.Included, reward)
	return nil
}

// updateHeaders 写入Merkle根与状态根
//
// ⚠️ 激励交易在终结阶段可能被追加退款输出，
// 交易哈希必须在此刻（全部修改完成后）统一计算。
func (s *Service) updateHeaders(actx *AssemblyContext) error {
	txHashes := make([][]byte, 0, len(actx.Template.Transactions))
	for i, tx := range actx.Template.Transactions {
		txHash, err := s.hasher.TransactionHash(tx)
		if err != nil {
			return fmt.Errorf("计算交易[%d]哈希失败: %w", i, err)
		}
		txHashes = append(txHashes, txHash)
	}

	merkleRoot, err := s.merkle.Root(txHashes)
	if err != nil {
		return fmt.Errorf("计算Merkle根失败: %w", err)
	}
	actx.Template.Header.MerkleRoot = merkleRoot

	stateRoot := actx.StateRoot
	if stateRoot == nil {
		stateRoot = make([]byte, types.HashSize)
	}
	actx.Template.Header.StateRoot = stateRoot
	return nil
}

// abort 中止组装：丢弃未决状态上下文并返回原错误
func (s *Service) abort(actx *AssemblyContext, err error) error {
	if rollbackErr := actx.abortState(); rollbackErr != nil && s.logger != nil {
		s.logger.Errorf("中止组装时回滚状态失败: session=%s err=%v", actx.SessionID, rollbackErr)
	}
	templatesAbortedTotal.Inc()
	if s.logger != nil {
		s.logger.Warnf("区块模板组装中止: session=%s err=%v", actx.SessionID, err)
	}
	return err
}

// 编译时检查接口实现
var _ blockiface.Assembler = (*Service)(nil)
