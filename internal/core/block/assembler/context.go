// Package assembler 提供区块模板组装的具体实现
package assembler

import (
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	"github.com/veryn/v1/pkg/types"
)

// AssemblyContext 单次组装的显式上下文
//
// 🎯 **显式状态传递**：
// 一次组装的全部中间状态集中在本结构体中显式传递，
// 组装器自身不携带跨组装的可变累积字段，天然避免
// 上一次组装的残留状态泄漏到下一次。
type AssemblyContext struct {
	// SessionID 组装会话标识（日志关联）
	SessionID string

	// Template 正在累积的区块模板
	Template *types.BlockTemplate

	// Included 本区块已打包交易（按打包顺序，含Coinbase与内部交易）
	//
	// 付款方解析的"部分打包集"：解析只能看到排在当前条目
	// 之前的交易，绝不能看到整个交易池。
	Included []*types.Transaction

	// PendingRefunds 待结算退款（按调用完成顺序）
	PendingRefunds []types.PendingRefund

	// StateCtx 区块级外层状态上下文（首次合约调用时惰性打开）
	StateCtx stateiface.TrackingContext

	// StateRoot 外层提交后读取的状态根摘要（updateHeaders前填充）
	StateRoot []byte

	// Height 正在组装的区块高度
	Height uint64

	// Difficulty 正在组装的区块难度
	Difficulty uint64

	// PayoutOwner 矿工地址（20字节）
	PayoutOwner []byte
}

// abortState 组装中止时丢弃未决的外层状态上下文
//
// 回滚失败只能记录，不改变中止决定。
func (a *AssemblyContext) abortState() error {
	if a.StateCtx == nil {
		return nil
	}
	err := a.StateCtx.Rollback()
	a.StateCtx = nil
	return err
}
