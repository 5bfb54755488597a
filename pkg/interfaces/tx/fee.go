// Package tx 提供手续费管理的公共接口定义
package tx

import (
	"context"

	"github.com/veryn/v1/pkg/types"
)

// FeeManager 手续费管理器接口
//
// 🎯 **核心职责**：
// - 区块奖励计算
// - 激励（Coinbase）交易构建
// - Gas退款输出追加（模板终结阶段）
type FeeManager interface {
	// BlockReward 计算指定高度的区块奖励
	BlockReward(height uint64) uint64

	// BuildRewardTransaction 构建激励交易
	//
	// 输出为单个 pay-to-address 资产输出（区块奖励，实记手续费
	// 在挖矿完成后的最终化步骤并入，不属于本层职责）。
	//
	// 参数：
	//   - ctx: 上下文
	//   - height: 新区块高度
	//   - payoutOwner: 矿工地址（20字节）
	//   - chainID: 链标识
	BuildRewardTransaction(ctx context.Context, height uint64, payoutOwner []byte, chainID uint64) (*types.Transaction, error)

	// AppendRefundOutputs 将待结算退款追加为激励交易的退款输出
	//
	// 每个 PendingRefund 恰好一个输出（不跨付款方合并），
	// 金额为完整退款额，锁定为对解析付款方的 pay-to-address。
	AppendRefundOutputs(reward *types.Transaction, refunds []types.PendingRefund) error
}
