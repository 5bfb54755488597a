// Package tx 提供付款方解析的公共接口定义
package tx

import (
	"context"

	"github.com/veryn/v1/pkg/types"
)

// SenderResolver 付款方解析器接口
//
// 🎯 **核心职责**：
// 从交易输入解析付款方身份（首个输入引用输出的归属地址）。
//
// ⚠️ **部分打包集约束**：
// 解析必须优先查看"本区块已打包交易集"（前序条目创建的输出
// 可能被后续条目引用），未命中再回退链上UTXO视图。因此合约
// 条目必须按池条目的委托顺序处理，且解析时只能看到部分打包集，
// 绝不能看到整个交易池。
type SenderResolver interface {
	// Resolve 解析交易的付款方地址
	//
	// 参数：
	//   - ctx: 上下文对象
	//   - transaction: 待解析交易
	//   - included: 本区块已打包的交易（按打包顺序）
	//
	// 返回：
	//   - []byte: 付款方地址（20字节）
	//   - error: 解析错误
	Resolve(ctx context.Context, transaction *types.Transaction, included []*types.Transaction) ([]byte, error)
}
