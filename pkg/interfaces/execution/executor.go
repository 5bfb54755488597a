// Package execution 提供合约执行器的公共接口定义
//
// ⚙️ **合约执行器 (Contract Executor)**
//
// 本包定义对单次合约调用的执行抽象：在给定的嵌套状态上下文
// 和固定Gas预算内运行一次调用，返回统一的执行结果。
//
// 🎯 **设计原则**：
// - 有界同步计算：唯一成本上界是Gas预算，本层不设额外超时
// - 数据化失败分类：OutOfGas/Other 由执行器产出一次，调用方按数据消费
// - 不依赖区块组装实现，避免循环依赖
package execution

import (
	"context"

	"github.com/veryn/v1/pkg/interfaces/state"
	"github.com/veryn/v1/pkg/types"
)

// ContractExecutor 合约执行器接口
type ContractExecutor interface {
	// Execute 在嵌套状态上下文中执行一次合约调用
	//
	// 执行期间的全部状态读写都经由 stateCtx；调用方根据结果
	// 决定合并或丢弃该上下文，执行器自身不提交/不回滚。
	//
	// 参数：
	//   - ctx: 上下文对象
	//   - descriptor: 调用描述符（Payer已解析）
	//   - stateCtx: 调用级嵌套跟踪上下文
	//   - height: 当前组装区块高度
	//   - difficulty: 当前难度
	//   - payoutOwner: 本区块激励输出归属地址（20字节）
	//
	// 返回：
	//   - *types.ExecutionResult: 执行结果（含Gas消耗/内部交易/失败类别）
	//   - error: 执行器自身故障（协作方失败，向上传播并中止整次组装）
	Execute(
		ctx context.Context,
		descriptor *types.InvocationDescriptor,
		stateCtx state.TrackingContext,
		height uint64,
		difficulty uint64,
		payoutOwner []byte,
	) (*types.ExecutionResult, error)
}
