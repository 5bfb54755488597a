// Package assembler 提供区块模板组装的具体实现
package assembler

import (
	"context"

	"github.com/veryn/v1/pkg/types"
)

// ExtensionHooks 组装扩展挂点
//
// 🎯 **基础组装 + 合约感知扩展**：
// 基础组装器负责Coinbase、池条目遍历与区块头终结；
// 挂点实现决定每个池条目如何进入模板（是否触发合约执行、
// 手续费如何调整）以及区块头更新前的终结动作。
//
// ⚠️ 挂点返回的error意味着协作方违约，基础组装器必须
// 中止整次组装，绝不返回部分模板。
type ExtensionHooks interface {
	// AddToBlock 将一个池条目加入模板
	//
	// 实现必须通过 actx.Template.AppendTransaction 追加交易
	// （承载交易与可能的内部交易），并维护 actx.Included。
	//
	// 返回：
	//   - uint64: 该条目的实记手续费（合约调整后）
	//   - error: 协作方违约（中止整次组装）
	AddToBlock(ctx context.Context, actx *AssemblyContext, entry *types.PoolEntry) (uint64, error)

	// BeforeUpdateHeaders 区块头更新前的终结动作
	//
	// 合约感知实现在此追加退款输出、提交外层状态上下文
	// 并读取状态根摘要（严格在提交之后）。
	BeforeUpdateHeaders(ctx context.Context, actx *AssemblyContext) error
}

// PlainHooks 纯转账组装挂点（无合约处理）
//
// 每个池条目原样进入模板，手续费即池内预计算值。
type PlainHooks struct{}

// NewPlainHooks 创建纯转账组装挂点
func NewPlainHooks() *PlainHooks {
	return &PlainHooks{}
}

// AddToBlock 原样追加池条目
func (h *PlainHooks) AddToBlock(ctx context.Context, actx *AssemblyContext, entry *types.PoolEntry) (uint64, error) {
	actx.Template.AppendTransaction(entry.Tx, entry.SigOpCost, entry.Weight, entry.Size)
	actx.Included = append(actx.Included, entry.Tx)
	return entry.Fee, nil
}

// BeforeUpdateHeaders 无终结动作
func (h *PlainHooks) BeforeUpdateHeaders(ctx context.Context, actx *AssemblyContext) error {
	return nil
}

// 编译时检查接口实现
var _ ExtensionHooks = (*PlainHooks)(nil)
