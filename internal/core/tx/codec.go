// Package tx 提供交易处理的具体实现
package tx

import (
	"fmt"

	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"github.com/veryn/v1/pkg/types"
)

// Codec 实现CarrierCodec接口
//
// 💡 合约调用载荷"搭载"在交易输出上；一笔交易至多处理
// 首个携带载荷的输出（协议规定每笔交易一次调用）。
type Codec struct{}

// NewCodec 创建合约载荷编解码器
func NewCodec() *Codec {
	return &Codec{}
}

// ExtractInvocation 提取交易的首个合约调用输出
func (c *Codec) ExtractInvocation(tx *types.Transaction) (*types.TxOutput, uint32, bool) {
	if tx == nil {
		return nil, 0, false
	}
	for i, output := range tx.Outputs {
		if output != nil && output.ContractCall != nil {
			return output, uint32(i), true
		}
	}
	return nil, 0, false
}

// Decode 将已匹配的合约调用输出解码为调用描述符
//
// ⚠️ 畸形载荷在池准入阶段已被过滤，此处解码失败意味着
// 协作方违约，调用方必须中止整次组装。
func (c *Codec) Decode(transaction *types.Transaction, txHash []byte, output *types.TxOutput, outputIndex uint32) (*types.InvocationDescriptor, error) {
	if transaction == nil || output == nil {
		return nil, fmt.Errorf("交易和输出不能为空")
	}
	call := output.ContractCall
	if call == nil {
		return nil, fmt.Errorf("输出[%d]不携带合约调用载荷", outputIndex)
	}
	if !types.IsValidHash(txHash) {
		return nil, fmt.Errorf("交易哈希长度非法: %d", len(txHash))
	}
	if !types.IsValidAddress(call.Target) {
		return nil, fmt.Errorf("目标合约地址长度非法: %d", len(call.Target))
	}
	if call.Entry == "" {
		return nil, fmt.Errorf("调用入口不能为空")
	}
	if call.GasLimit == 0 {
		return nil, fmt.Errorf("Gas预算上限不能为0")
	}

	// Gas预算溢出检查：GasLimit×GasPrice必须可用uint64表达
	if call.GasPrice != 0 && call.GasLimit > ^uint64(0)/call.GasPrice {
		return nil, fmt.Errorf("Gas预算溢出: limit=%d price=%d", call.GasLimit, call.GasPrice)
	}

	return &types.InvocationDescriptor{
		TxHash:      types.CopyBytes(txHash),
		OutputIndex: outputIndex,
		Target:      types.CopyBytes(call.Target),
		Entry:       call.Entry,
		Payload:     types.CopyBytes(call.Payload),
		GasLimit:    call.GasLimit,
		GasPrice:    call.GasPrice,
	}, nil
}

// 编译时检查接口实现
var _ txiface.CarrierCodec = (*Codec)(nil)
