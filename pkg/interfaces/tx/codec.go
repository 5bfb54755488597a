// Package tx 提供交易处理相关的公共接口定义
//
// 📦 **合约载荷编解码 (Carrier Codec)**
//
// 本文件定义从交易输出识别与解码合约调用载荷的纯函数接口。
//
// ⚠️ **总函数假设**：
// 畸形载荷在池准入阶段已被过滤，核心路径中 Decode 对已匹配
// 输出视为总函数；解码失败意味着协作方违约，错误向上传播并
// 中止整次组装（绝不静默跳过）。
package tx

import "github.com/veryn/v1/pkg/types"

// CarrierCodec 合约载荷编解码器接口
type CarrierCodec interface {
	// ExtractInvocation 提取交易的合约调用输出
	//
	// 返回：
	//   - *types.TxOutput: 首个携带合约调用载荷的输出
	//   - uint32: 该输出的索引
	//   - bool: 是否存在合约调用输出
	ExtractInvocation(tx *types.Transaction) (*types.TxOutput, uint32, bool)

	// Decode 将已匹配的合约调用输出解码为调用描述符
	//
	// Payer 字段不在此处填充（延迟解析，见 SenderResolver）。
	//
	// 参数：
	//   - transaction: 承载交易
	//   - txHash: 承载交易哈希
	//   - output: ExtractInvocation 返回的输出
	//   - outputIndex: 输出索引
	Decode(transaction *types.Transaction, txHash []byte, output *types.TxOutput, outputIndex uint32) (*types.InvocationDescriptor, error)
}
