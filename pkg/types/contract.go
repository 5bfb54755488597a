// Package types 提供合约调用相关的业务数据结构
package types

// InvocationDescriptor 合约调用描述符
//
// 🎯 **从交易输出解码出的调用参数**：
// 由 CarrierCodec 从携带合约调用的交易输出解码得到，解码后不可变。
// Payer 延迟解析：由 SenderResolver 根据交易输入与"本区块已打包交易集"
// 解析，解析结果回填一次后不再变化。
type InvocationDescriptor struct {
	// TxHash 承载交易的哈希（32字节）
	TxHash []byte

	// OutputIndex 合约调用输出在交易中的索引
	OutputIndex uint32

	// Payer 付款方地址（20字节，延迟解析）
	Payer []byte

	// Target 目标合约地址（20字节）
	Target []byte

	// Entry 调用入口
	Entry string

	// Payload 序列化调用参数
	Payload []byte

	// GasLimit Gas预算上限
	GasLimit uint64

	// GasPrice Gas单价
	GasPrice uint64
}

// GasBudget 预付Gas总额（GasLimit × GasPrice）
func (d *InvocationDescriptor) GasBudget() uint64 {
	return d.GasLimit * d.GasPrice
}

// PendingRefund 待结算退款
//
// (付款方, 金额) 二元组，按入队顺序保存，模板终结时
// 逐条转换为激励交易上的退款输出（不跨付款方合并）。
type PendingRefund struct {
	// Payer 付款方地址（20字节）
	Payer []byte

	// Amount 退款金额（最小单位）
	Amount uint64
}
