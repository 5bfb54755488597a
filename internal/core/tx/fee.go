// Package tx 提供交易处理的具体实现
package tx

import (
	"context"
	"fmt"
	"time"

	assemblercfg "github.com/veryn/v1/internal/config/assembler"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"github.com/veryn/v1/pkg/types"
)

// FeeManager 实现手续费管理器接口
//
// 💰 **核心职责**：
// - 区块奖励计算（可配置减半周期）
// - 激励交易构建
// - Gas退款输出追加
type FeeManager struct {
	options *assemblercfg.Options
	logger  log.Logger
}

// NewFeeManager 创建手续费管理器
func NewFeeManager(options *assemblercfg.Options, logger log.Logger) *FeeManager {
	if options == nil {
		options = assemblercfg.New(nil)
	}
	return &FeeManager{
		options: options,
		logger:  logger,
	}
}

// BlockReward 计算指定高度的区块奖励
//
// RewardHalvingInterval为0表示固定奖励；否则每经过一个
// 周期奖励减半，右移64次后恒为0。
func (f *FeeManager) BlockReward(height uint64) uint64 {
	reward := f.options.BlockRewardBase
	if f.options.RewardHalvingInterval == 0 {
		return reward
	}
	halvings := height / f.options.RewardHalvingInterval
	if halvings >= 64 {
		return 0
	}
	return reward >> halvings
}

// BuildRewardTransaction 构建激励交易
func (f *FeeManager) BuildRewardTransaction(ctx context.Context, height uint64, payoutOwner []byte, chainID uint64) (*types.Transaction, error) {
	if !types.IsValidAddress(payoutOwner) {
		return nil, fmt.Errorf("矿工地址长度非法: %d", len(payoutOwner))
	}

	reward := f.BlockReward(height)
	return &types.Transaction{
		Version: 1,
		Outputs: []*types.TxOutput{
			types.NewPayToAddressOutput(payoutOwner, reward),
		},
		// 高度作为Nonce保证不同高度的Coinbase哈希不同
		Nonce:             height,
		CreationTimestamp: uint64(time.Now().Unix()),
		ChainID:           chainID,
	}, nil
}

// AppendRefundOutputs 将待结算退款追加为激励交易的退款输出
//
// 每个PendingRefund恰好一个输出，不跨付款方合并；
// 零额退款（OutOfGas）不产生输出。
func (f *FeeManager) AppendRefundOutputs(reward *types.Transaction, refunds []types.PendingRefund) error {
	if reward == nil {
		return fmt.Errorf("激励交易不能为空")
	}
	if !reward.IsCoinbase() {
		return fmt.Errorf("退款输出只能追加到Coinbase交易")
	}

	for i, refund := range refunds {
		if refund.Amount == 0 {
			continue
		}
		if !types.IsValidAddress(refund.Payer) {
			return fmt.Errorf("退款[%d]付款方地址非法: %d字节", i, len(refund.Payer))
		}
		reward.Outputs = append(reward.Outputs,
			types.NewPayToAddressOutput(refund.Payer, refund.Amount))
	}
	return nil
}

// 编译时检查接口实现
var _ txiface.FeeManager = (*FeeManager)(nil)
