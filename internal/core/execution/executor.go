// Package execution 提供基于wazero的合约执行器实现
//
// ⚙️ **合约执行器 (Contract Executor)**
//
// 🎯 **核心职责**：
// - 从状态上下文加载WASM字节码并执行指定入口函数
// - 宿主函数暴露存储/余额/转账/环境读取能力，全部写操作
//   落入调用级嵌套状态上下文
// - 燃料计量：固定开销 + 载荷字节 + 宿主调用计费，耗尽即终止
//
// ⚠️ **核心约束**：
// - 执行器从不提交或回滚状态上下文，结算决策属于调用方
// - 执行失败以ExecutionResult.FailureKind表达，而不是error；
//   error只表达执行器自身的基础设施故障
package execution

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/sys"
	executioniface "github.com/veryn/v1/pkg/interfaces/execution"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	"github.com/veryn/v1/pkg/types"
)

// Executor 实现ContractExecutor接口
type Executor struct {
	logger  log.Logger
	chainID uint64

	runtime wazero.Runtime
	// 进程内编译模块缓存，键为字节码哈希
	compiledCache sync.Map // map[string]wazero.CompiledModule
}

// NewExecutor 创建合约执行器
//
// 参数：
//   - chainID: 链标识（内部交易携带）
//   - logger: 日志记录器（允许为nil）
//
// 返回：
//   - *Executor: 执行器实例
//   - error: 运行时初始化错误
func NewExecutor(chainID uint64, logger log.Logger) (*Executor, error) {
	ctx := context.Background()
	runtime := wazero.NewRuntimeWithConfig(ctx,
		wazero.NewRuntimeConfig().
			WithCloseOnContextDone(true).
			WithCompilationCache(wazero.NewCompilationCache()))

	e := &Executor{
		logger:  logger,
		chainID: chainID,
		runtime: runtime,
	}

	if err := e.instantiateHostModule(ctx); err != nil {
		_ = runtime.Close(ctx)
		return nil, fmt.Errorf("实例化宿主函数模块失败: %w", err)
	}

	return e, nil
}

// Execute 执行一次合约调用
//
// 📋 **执行流程**：
//  1. 预收固定开销与载荷燃料，不足直接OutOfGas
//  2. 从状态上下文加载目标合约字节码
//  3. 编译（带缓存）并实例化模块
//  4. 调用入口函数，宿主调用按成本表持续计费
//  5. 汇总燃料消耗、内部交易与失败类别
//
// 所有状态写操作进入stateCtx；提交与回滚由调用方决定。
func (e *Executor) Execute(
	ctx context.Context,
	descriptor *types.InvocationDescriptor,
	stateCtx stateiface.TrackingContext,
	height uint64,
	difficulty uint64,
	payoutOwner []byte,
) (*types.ExecutionResult, error) {
	if descriptor == nil {
		return nil, fmt.Errorf("调用描述符不能为空")
	}
	if stateCtx == nil {
		return nil, fmt.Errorf("状态上下文不能为空")
	}

	meter := newGasMeter(descriptor.GasLimit)
	env := &invocationEnv{
		executor:   e,
		stateCtx:   stateCtx,
		descriptor: descriptor,
		height:     height,
		difficulty: difficulty,
		meter:      meter,
	}

	// 预收固定开销与载荷燃料
	upfront := gasBase + gasPerPayloadByte*uint64(len(descriptor.Payload))
	if !meter.charge(upfront) {
		return e.failedResult(env, types.FailureOutOfGas), nil
	}

	// 加载合约字节码
	code, err := stateCtx.GetCode(ctx, descriptor.Target)
	if err != nil {
		return nil, fmt.Errorf("加载合约字节码失败: %w", err)
	}
	if len(code) == 0 {
		if e.logger != nil {
			e.logger.Warnf("目标地址无合约代码: target=%s", hex.EncodeToString(descriptor.Target))
		}
		return e.failedResult(env, types.FailureOther), nil
	}

	compiled, err := e.compile(ctx, code)
	if err != nil {
		// 非法字节码是交易问题而不是节点故障
		if e.logger != nil {
			e.logger.Warnf("合约字节码编译失败: target=%s err=%v", hex.EncodeToString(descriptor.Target), err)
		}
		return e.failedResult(env, types.FailureOther), nil
	}

	// 每次调用独立实例化，模块间内存隔离
	envCtx := withInvocationEnv(ctx, env)
	mod, err := e.runtime.InstantiateModule(envCtx, compiled,
		wazero.NewModuleConfig().WithName(""))
	if err != nil {
		if e.logger != nil {
			e.logger.Warnf("合约模块实例化失败: target=%s err=%v", hex.EncodeToString(descriptor.Target), err)
		}
		return e.failedResult(env, types.FailureOther), nil
	}
	defer mod.Close(envCtx)

	entry := mod.ExportedFunction(descriptor.Entry)
	if entry == nil {
		if e.logger != nil {
			e.logger.Warnf("合约缺少入口函数: target=%s entry=%s",
				hex.EncodeToString(descriptor.Target), descriptor.Entry)
		}
		return e.failedResult(env, types.FailureOther), nil
	}

	results, callErr := entry.Call(envCtx)
	if callErr != nil {
		// 燃料耗尽由宿主函数关闭模块触发，优先识别
		if env.outOfGas {
			return e.failedResult(env, types.FailureOutOfGas), nil
		}
		if _, isExit := callErr.(*sys.ExitError); !isExit {
			if e.logger != nil {
				e.logger.Debugf("合约执行中止: target=%s err=%v",
					hex.EncodeToString(descriptor.Target), callErr)
			}
		}
		return e.failedResult(env, types.FailureOther), nil
	}

	// 入口函数返回非零状态码视为主动回滚
	if len(results) > 0 && results[0] != 0 {
		return e.failedResult(env, types.FailureOther), nil
	}

	return &types.ExecutionResult{
		GasUsed:              meter.used,
		InternalTransactions: env.internalTxs,
		Reverted:             false,
		FailureKind:          types.FailureNone,
		ReturnData:           env.returnData,
	}, nil
}

// failedResult 构造失败结果
//
// OutOfGas时燃料消耗钳制为全额上限，退款必须为零。
func (e *Executor) failedResult(env *invocationEnv, kind types.FailureKind) *types.ExecutionResult {
	gasUsed := env.meter.used
	if kind == types.FailureOutOfGas {
		gasUsed = env.meter.limit
	}
	return &types.ExecutionResult{
		GasUsed:     gasUsed,
		Reverted:    true,
		FailureKind: kind,
	}
}

// compile 编译WASM字节码（带进程内缓存）
func (e *Executor) compile(ctx context.Context, code []byte) (wazero.CompiledModule, error) {
	digest := sha256.Sum256(code)
	cacheKey := string(digest[:])

	if v, ok := e.compiledCache.Load(cacheKey); ok {
		if cm, ok := v.(wazero.CompiledModule); ok {
			return cm, nil
		}
		e.compiledCache.Delete(cacheKey)
	}

	compiled, err := e.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, err
	}
	e.compiledCache.Store(cacheKey, compiled)
	return compiled, nil
}

// Close 关闭执行器并释放运行时资源
func (e *Executor) Close() error {
	return e.runtime.Close(context.Background())
}

// 编译时检查接口实现
var _ executioniface.ContractExecutor = (*Executor)(nil)
