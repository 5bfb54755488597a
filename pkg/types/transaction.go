// Package types 提供区块链交易相关的业务数据结构
//
// 🏗️ **架构分层**
//
// - **types层**：链上协议数据结构（本文件）
// - **interface层**：面向调用方的窄接口（pkg/interfaces）
// - **internal/core层**：具体实现
//
// 交易采用EUTXO模型：输入引用既有输出，输出携带资产或合约调用载荷。
// 合约调用载荷（ContractCall）是"搭载"在普通交易输出上的，
// 这样一笔交易既可以转账，又可以触发一次合约执行。
package types

// Transaction 链上交易
//
// 🎯 **EUTXO交易结构**：
// - Inputs 消耗既有输出（Coinbase/内部交易无输入）
// - Outputs 创建新的资产输出或合约调用输出
type Transaction struct {
	// Version 交易版本
	Version uint32

	// Inputs 交易输入列表（Coinbase交易为空）
	Inputs []*TxInput

	// Outputs 交易输出列表
	Outputs []*TxOutput

	// Nonce 防重放随机数
	Nonce uint64

	// CreationTimestamp 创建时间戳（Unix秒）
	CreationTimestamp uint64

	// ChainID 链标识
	ChainID uint64

	// Internal 标记是否为合约执行内部生成的交易
	//
	// 内部交易由执行器在合约调用期间产生，无独立手续费，
	// 其成本已计入发起调用的Gas结算。
	Internal bool
}

// TxInput 交易输入
type TxInput struct {
	// PreviousTxHash 被引用交易的哈希（32字节）
	PreviousTxHash []byte

	// OutputIndex 被引用输出在交易中的索引
	OutputIndex uint32

	// UnlockingData 解锁数据（签名等，由验证层解释）
	UnlockingData []byte

	// PublicKey 解锁公钥（压缩格式，33字节；用于付款方身份解析）
	PublicKey []byte
}

// TxOutput 交易输出
//
// 一个输出携带两类内容之一：
// - Asset：原生币资产（金额 + 锁定条件）
// - ContractCall：合约调用载荷（Gas预算 + 调用参数）
type TxOutput struct {
	// Owner 输出归属地址（20字节）
	Owner []byte

	// Asset 资产内容（与 ContractCall 互斥，二者至少其一非nil）
	Asset *AssetOutput

	// ContractCall 合约调用载荷（nil表示普通资产输出）
	ContractCall *ContractCallOutput

	// Lock 锁定条件（Coinbase/退款输出为单密钥锁）
	Lock *LockingCondition
}

// AssetOutput 原生币资产输出
type AssetOutput struct {
	// Amount 金额（最小单位）
	Amount uint64
}

// ContractCallOutput 合约调用输出载荷
//
// 🎯 **载荷编码**：
// 解码为 InvocationDescriptor 由 CarrierCodec 负责；
// 池准入已过滤畸形载荷，核心路径视解码为全函数。
type ContractCallOutput struct {
	// Target 目标合约地址（20字节）
	Target []byte

	// Entry 调用入口（导出函数名）
	Entry string

	// Payload 序列化调用参数
	Payload []byte

	// GasLimit Gas预算上限
	GasLimit uint64

	// GasPrice Gas单价（最小单位/Gas）
	GasPrice uint64
}

// LockingCondition 锁定条件
//
// 当前核心路径只使用单密钥锁（pay-to-address）。
type LockingCondition struct {
	// SingleKeyLock 单密钥锁
	SingleKeyLock *SingleKeyLock
}

// SingleKeyLock 单密钥锁定
type SingleKeyLock struct {
	// RequiredAddressHash 要求的地址哈希（20字节）
	RequiredAddressHash []byte
}

// IsCoinbase 判断是否为Coinbase交易（无输入且非内部交易）
func (t *Transaction) IsCoinbase() bool {
	return t != nil && len(t.Inputs) == 0 && !t.Internal
}

// HasContractCall 判断交易是否携带合约调用输出
func (t *Transaction) HasContractCall() bool {
	if t == nil {
		return false
	}
	for _, out := range t.Outputs {
		if out != nil && out.ContractCall != nil {
			return true
		}
	}
	return false
}

// NewPayToAddressOutput 创建标准的pay-to-address资产输出
//
// 用于Coinbase奖励输出和Gas退款输出。
func NewPayToAddressOutput(owner []byte, amount uint64) *TxOutput {
	addr := CopyBytes(owner)
	return &TxOutput{
		Owner: addr,
		Asset: &AssetOutput{Amount: amount},
		Lock: &LockingCondition{
			SingleKeyLock: &SingleKeyLock{
				RequiredAddressHash: addr,
			},
		},
	}
}
