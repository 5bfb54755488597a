// Package assembler 提供区块模板组装的具体实现
package assembler

import (
	"context"
	"encoding/hex"
	"fmt"

	executioniface "github.com/veryn/v1/pkg/interfaces/execution"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"github.com/veryn/v1/pkg/types"
)

// ContractHooks 合约感知的组装挂点
//
// 🎯 **检测与分派 → 嵌套执行 → 结算**：
// - 携带合约调用的池条目在进入模板时触发一次合约执行
// - 每次执行在单槽嵌套状态上下文中进行：成功合并、失败丢弃
// - 结算产出待退款记录与调整后手续费；执行失败是数据不是异常
//
// ⚠️ **失败语义**：
// - 合约执行失败（回滚/Gas耗尽）：承载交易仍在区块中，
//   退款按失败类别结算，组装继续
// - 协作方违约（解码失败、解析失败、状态库故障）：错误向上
//   传播，整次组装中止
type ContractHooks struct {
	codec      txiface.CarrierCodec
	resolver   txiface.SenderResolver
	repository stateiface.Repository
	executor   executioniface.ContractExecutor
	feeManager txiface.FeeManager
	sizer      TransactionSizer
	logger     log.Logger
}

// TransactionSizer 交易大小度量（内部交易簿记需要）
type TransactionSizer interface {
	EncodeTransaction(tx *types.Transaction) ([]byte, error)
}

// NewContractHooks 创建合约感知组装挂点
func NewContractHooks(
	codec txiface.CarrierCodec,
	resolver txiface.SenderResolver,
	repository stateiface.Repository,
	executor executioniface.ContractExecutor,
	feeManager txiface.FeeManager,
	sizer TransactionSizer,
	logger log.Logger,
) *ContractHooks {
	return &ContractHooks{
		codec:      codec,
		resolver:   resolver,
		repository: repository,
		executor:   executor,
		feeManager: feeManager,
		sizer:      sizer,
		logger:     logger,
	}
}

// AddToBlock 将一个池条目加入模板（合约感知）
func (h *ContractHooks) AddToBlock(ctx context.Context, actx *AssemblyContext, entry *types.PoolEntry) (uint64, error) {
	// 检测：不携带合约调用的条目原样进入
	output, outputIndex, hasCall := h.codec.ExtractInvocation(entry.Tx)

	// 付款方解析只能看到排在当前条目之前的部分打包集
	partialIncluded := actx.Included

	actx.Template.AppendTransaction(entry.Tx, entry.SigOpCost, entry.Weight, entry.Size)
	actx.Included = append(actx.Included, entry.Tx)

	if !hasCall {
		return entry.Fee, nil
	}

	// 解码：池准入已过滤畸形载荷，此处失败即协作方违约
	descriptor, err := h.codec.Decode(entry.Tx, entry.TxHash, output, outputIndex)
	if err != nil {
		return 0, fmt.Errorf("合约载荷解码失败: %w", err)
	}

	payer, err := h.resolver.Resolve(ctx, entry.Tx, partialIncluded)
	if err != nil {
		return 0, fmt.Errorf("付款方解析失败: %w", err)
	}
	descriptor.Payer = payer

	// 区块级外层状态上下文惰性打开（首个合约条目时）
	if actx.StateCtx == nil {
		outer, err := h.repository.Begin(ctx)
		if err != nil {
			return 0, fmt.Errorf("打开外层状态上下文失败: %w", err)
		}
		actx.StateCtx = outer
	}

	gasFee, err := h.invokeAndSettle(ctx, actx, descriptor)
	if err != nil {
		return 0, err
	}

	return entry.Fee + gasFee, nil
}

// invokeAndSettle 嵌套执行一次合约调用并结算
//
// 返回实收Gas费（GasUsed × GasPrice），计入该条目的实记手续费。
func (h *ContractHooks) invokeAndSettle(ctx context.Context, actx *AssemblyContext, descriptor *types.InvocationDescriptor) (uint64, error) {
	nested, err := actx.StateCtx.OpenNested()
	if err != nil {
		return 0, fmt.Errorf("打开嵌套状态上下文失败: %w", err)
	}

	result, err := h.executor.Execute(ctx, descriptor, nested, actx.Height, actx.Difficulty, actx.PayoutOwner)
	if err != nil {
		// 执行器基础设施故障：丢弃嵌套上下文后向上传播
		if rollbackErr := nested.Rollback(); rollbackErr != nil && h.logger != nil {
			h.logger.Errorf("执行故障后回滚嵌套上下文失败: session=%s err=%v", actx.SessionID, rollbackErr)
		}
		return 0, fmt.Errorf("合约执行器故障: %w", err)
	}

	// 结算第一步：按执行结果处置嵌套上下文
	if result.Reverted {
		if err := nested.Rollback(); err != nil {
			return 0, fmt.Errorf("回滚嵌套状态上下文失败: %w", err)
		}
	} else {
		if err := nested.Commit(); err != nil {
			return 0, fmt.Errorf("合并嵌套状态上下文失败: %w", err)
		}
	}

	// 结算第二步：退款 = (GasLimit − GasUsed) × GasPrice；
	// Gas耗尽时预算全额没收，退款恒为0
	gasUsed := result.GasUsed
	if gasUsed > descriptor.GasLimit {
		return 0, fmt.Errorf("执行器报告的Gas消耗超出上限: used=%d limit=%d", gasUsed, descriptor.GasLimit)
	}
	var refund uint64
	if result.FailureKind != types.FailureOutOfGas {
		refund = (descriptor.GasLimit - gasUsed) * descriptor.GasPrice
	}
	actx.PendingRefunds = append(actx.PendingRefunds, types.PendingRefund{
		Payer:  descriptor.Payer,
		Amount: refund,
	})

	// 结算第三步：成功执行的内部交易按生成顺序进入模板
	// （计入交易计数与权重，但没有独立的手续费条目）
	if !result.Reverted {
		for i, internalTx := range result.InternalTransactions {
			if internalTx == nil {
				return 0, fmt.Errorf("内部交易[%d]为空", i)
			}
			encoded, err := h.sizer.EncodeTransaction(internalTx)
			if err != nil {
				return 0, fmt.Errorf("内部交易[%d]序列化失败: %w", i, err)
			}
			size := uint64(len(encoded))
			actx.Template.AppendTransaction(internalTx, 0, size*4, size)
			actx.Included = append(actx.Included, internalTx)
		}
	}

	invocationsTotal.WithLabelValues(invocationOutcome(result)).Inc()
	gasUsedTotal.Add(float64(gasUsed))
	if refund > 0 {
		refundAmountTotal.Add(float64(refund))
	}

	if h.logger != nil {
		h.logger.Debugf("合约调用结算完成: session=%s tx=%s outcome=%s gasUsed=%d refund=%d internalTxs=%d",
			actx.SessionID, hex.EncodeToString(descriptor.TxHash), invocationOutcome(result),
			gasUsed, refund, len(result.InternalTransactions))
	}

	return gasUsed * descriptor.GasPrice, nil
}

// BeforeUpdateHeaders 模板终结：退款输出追加 → 外层提交 → 读取状态根
func (h *ContractHooks) BeforeUpdateHeaders(ctx context.Context, actx *AssemblyContext) error {
	// 退款输出必须在激励交易哈希定稿之前追加
	reward := actx.Template.RewardTransaction()
	if reward == nil {
		return fmt.Errorf("模板缺少激励交易")
	}
	if err := h.feeManager.AppendRefundOutputs(reward, actx.PendingRefunds); err != nil {
		return fmt.Errorf("追加退款输出失败: %w", err)
	}

	// 外层状态上下文一次性提交（本次组装无合约条目时未打开）
	if actx.StateCtx != nil {
		if err := actx.StateCtx.Commit(); err != nil {
			return fmt.Errorf("提交外层状态上下文失败: %w", err)
		}
		actx.StateCtx = nil
	}

	// 状态根严格在提交之后读取
	stateRoot, err := h.repository.Root(ctx)
	if err != nil {
		return fmt.Errorf("读取状态根摘要失败: %w", err)
	}
	actx.StateRoot = stateRoot
	return nil
}

// invocationOutcome 执行结果的指标标签
func invocationOutcome(result *types.ExecutionResult) string {
	if !result.Reverted {
		return "success"
	}
	return result.FailureKind.String()
}

// 编译时检查接口实现
var _ ExtensionHooks = (*ContractHooks)(nil)
