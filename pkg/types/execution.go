package types

// ==================== 执行通用类型（统一放在 types 层） ====================

// FailureKind 执行失败类别
//
// 失败分类由执行器产出一次，消费方只将其当作数据，
// 绝不通过异常/错误类型区分"Gas耗尽"与其他失败。
type FailureKind int32

const (
	// FailureNone 未失败
	FailureNone FailureKind = iota

	// FailureOutOfGas Gas耗尽中止（预算全额没收，退款为0）
	FailureOutOfGas

	// FailureOther 其他回滚原因（trap、非法返回等）
	FailureOther
)

// String 返回失败类别的可读名称
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureOutOfGas:
		return "out_of_gas"
	case FailureOther:
		return "other"
	default:
		return "unknown"
	}
}

// ExecutionResult 合约执行结果
//
// 区块组装核心按数据消费本结果：
// - Reverted=true（无论何种失败）⇒ 丢弃嵌套状态上下文
// - FailureKind=FailureOutOfGas ⇒ 退款为0
type ExecutionResult struct {
	// GasUsed 实际消耗的Gas单位数
	GasUsed uint64

	// InternalTransactions 执行内部生成的交易（按生成顺序）
	InternalTransactions []*Transaction

	// Reverted 是否回滚（true时嵌套上下文必须丢弃）
	Reverted bool

	// FailureKind 失败类别（Reverted=false时为FailureNone）
	FailureKind FailureKind

	// ReturnData 返回数据（诊断用途）
	ReturnData []byte
}
