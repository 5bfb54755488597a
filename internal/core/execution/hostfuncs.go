// Package execution 提供基于wazero的合约执行器实现
package execution

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	"github.com/veryn/v1/pkg/types"
)

// 宿主模块名，合约字节码按此名称导入宿主函数
const hostModuleName = "veryn"

// 模块关闭退出码
const (
	exitCodeOutOfGas uint32 = 0xF001 // 燃料耗尽
	exitCodeMemFault uint32 = 0xF002 // 越界内存访问
)

// invocationEnv 单次调用的执行环境
//
// 通过context传递给宿主函数，每次调用独立，
// 宿主模块本身在运行时内只实例化一次。
type invocationEnv struct {
	executor   *Executor
	stateCtx   stateiface.TrackingContext
	descriptor *types.InvocationDescriptor
	height     uint64
	difficulty uint64
	meter      *gasMeter

	internalTxs []*types.Transaction
	nonce       uint64
	returnData  []byte
	outOfGas    bool
}

// envCtxKey context键类型
type envCtxKey struct{}

// withInvocationEnv 将执行环境注入context
func withInvocationEnv(ctx context.Context, env *invocationEnv) context.Context {
	return context.WithValue(ctx, envCtxKey{}, env)
}

// envFromContext 从context取出执行环境
func envFromContext(ctx context.Context) *invocationEnv {
	env, _ := ctx.Value(envCtxKey{}).(*invocationEnv)
	return env
}

// chargeOrAbort 扣减燃料，耗尽时关闭模块终止执行
func (env *invocationEnv) chargeOrAbort(ctx context.Context, mod api.Module, amount uint64) bool {
	if env.meter.charge(amount) {
		return true
	}
	env.outOfGas = true
	_ = mod.CloseWithExitCode(ctx, exitCodeOutOfGas)
	return false
}

// readMem 读取合约线性内存，越界时终止执行
func (env *invocationEnv) readMem(ctx context.Context, mod api.Module, ptr, size uint32) ([]byte, bool) {
	data, ok := mod.Memory().Read(ptr, size)
	if !ok {
		_ = mod.CloseWithExitCode(ctx, exitCodeMemFault)
		return nil, false
	}
	return data, true
}

// writeMem 写入合约线性内存，越界时终止执行
func (env *invocationEnv) writeMem(ctx context.Context, mod api.Module, ptr uint32, data []byte) bool {
	if !mod.Memory().Write(ptr, data) {
		_ = mod.CloseWithExitCode(ctx, exitCodeMemFault)
		return false
	}
	return true
}

// instantiateHostModule 注册并实例化宿主函数模块
//
// 📋 **宿主ABI**：
//   - storage_get(keyPtr, keyLen, valPtr, valCap) -> i32   值长度，-1表示不存在
//   - storage_set(keyPtr, keyLen, valPtr, valLen)
//   - storage_delete(keyPtr, keyLen)
//   - balance_of(addrPtr, addrLen) -> i64
//   - self_balance() -> i64
//   - transfer(toPtr, toLen, amount) -> i32                0成功，1余额不足
//   - payload_len() -> i32
//   - payload_read(dstPtr)
//   - caller_read(dstPtr)                                  写出20字节付款方地址
//   - self_read(dstPtr)                                    写出20字节合约地址
//   - block_height() -> i64
//   - block_difficulty() -> i64
//   - return_data_set(ptr, len)
func (e *Executor) instantiateHostModule(ctx context.Context) error {
	builder := e.runtime.NewHostModuleBuilder(hostModuleName)

	builder.NewFunctionBuilder().
		WithFunc(hostStorageGet).Export("storage_get")
	builder.NewFunctionBuilder().
		WithFunc(hostStorageSet).Export("storage_set")
	builder.NewFunctionBuilder().
		WithFunc(hostStorageDelete).Export("storage_delete")
	builder.NewFunctionBuilder().
		WithFunc(hostBalanceOf).Export("balance_of")
	builder.NewFunctionBuilder().
		WithFunc(hostSelfBalance).Export("self_balance")
	builder.NewFunctionBuilder().
		WithFunc(hostTransfer).Export("transfer")
	builder.NewFunctionBuilder().
		WithFunc(hostPayloadLen).Export("payload_len")
	builder.NewFunctionBuilder().
		WithFunc(hostPayloadRead).Export("payload_read")
	builder.NewFunctionBuilder().
		WithFunc(hostCallerRead).Export("caller_read")
	builder.NewFunctionBuilder().
		WithFunc(hostSelfRead).Export("self_read")
	builder.NewFunctionBuilder().
		WithFunc(hostBlockHeight).Export("block_height")
	builder.NewFunctionBuilder().
		WithFunc(hostBlockDifficulty).Export("block_difficulty")
	builder.NewFunctionBuilder().
		WithFunc(hostReturnDataSet).Export("return_data_set")

	_, err := builder.Instantiate(ctx)
	return err
}

// hostStorageGet 读取合约存储槽
func hostStorageGet(ctx context.Context, mod api.Module, keyPtr, keyLen, valPtr, valCap uint32) int32 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasStorageGet) {
		return -1
	}
	key, ok := env.readMem(ctx, mod, keyPtr, keyLen)
	if !ok {
		return -1
	}
	value, err := env.stateCtx.GetStorage(ctx, env.descriptor.Target, key)
	if err != nil || value == nil {
		return -1
	}
	if uint32(len(value)) <= valCap {
		if !env.writeMem(ctx, mod, valPtr, value) {
			return -1
		}
	}
	return int32(len(value))
}

// hostStorageSet 写入合约存储槽
func hostStorageSet(ctx context.Context, mod api.Module, keyPtr, keyLen, valPtr, valLen uint32) {
	env := envFromContext(ctx)
	if env == nil {
		return
	}
	cost := gasStorageSet + gasStoragePerByte*uint64(keyLen+valLen)
	if !env.chargeOrAbort(ctx, mod, cost) {
		return
	}
	key, ok := env.readMem(ctx, mod, keyPtr, keyLen)
	if !ok {
		return
	}
	value, ok := env.readMem(ctx, mod, valPtr, valLen)
	if !ok {
		return
	}
	// 复制出线性内存，避免后续wasm写入污染写集
	_ = env.stateCtx.SetStorage(ctx, env.descriptor.Target,
		append([]byte(nil), key...), append([]byte(nil), value...))
}

// hostStorageDelete 删除合约存储槽
func hostStorageDelete(ctx context.Context, mod api.Module, keyPtr, keyLen uint32) {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasStorageDelete) {
		return
	}
	key, ok := env.readMem(ctx, mod, keyPtr, keyLen)
	if !ok {
		return
	}
	_ = env.stateCtx.DeleteStorage(ctx, env.descriptor.Target, key)
}

// hostBalanceOf 查询任意地址的合约账户余额
func hostBalanceOf(ctx context.Context, mod api.Module, addrPtr, addrLen uint32) uint64 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasBalanceRead) {
		return 0
	}
	addr, ok := env.readMem(ctx, mod, addrPtr, addrLen)
	if !ok {
		return 0
	}
	balance, err := env.stateCtx.GetBalance(ctx, addr)
	if err != nil {
		return 0
	}
	return balance
}

// hostSelfBalance 查询合约自身余额
func hostSelfBalance(ctx context.Context, mod api.Module) uint64 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasBalanceRead) {
		return 0
	}
	balance, err := env.stateCtx.GetBalance(ctx, env.descriptor.Target)
	if err != nil {
		return 0
	}
	return balance
}

// hostTransfer 合约向外转账，生成一笔内部交易
func hostTransfer(ctx context.Context, mod api.Module, toPtr, toLen uint32, amount uint64) uint32 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasTransfer) {
		return 1
	}
	to, ok := env.readMem(ctx, mod, toPtr, toLen)
	if !ok {
		return 1
	}
	if !types.IsValidAddress(to) {
		return 1
	}

	if err := env.stateCtx.SubBalance(ctx, env.descriptor.Target, amount); err != nil {
		return 1
	}
	toCopy := types.CopyBytes(to)
	if err := env.stateCtx.AddBalance(ctx, toCopy, amount); err != nil {
		return 1
	}

	env.nonce++
	env.internalTxs = append(env.internalTxs, &types.Transaction{
		Version:  1,
		Outputs:  []*types.TxOutput{types.NewPayToAddressOutput(toCopy, amount)},
		Nonce:    env.nonce,
		ChainID:  env.executor.chainID,
		Internal: true,
	})
	return 0
}

// hostPayloadLen 返回入参载荷长度
func hostPayloadLen(ctx context.Context, mod api.Module) uint32 {
	env := envFromContext(ctx)
	if env == nil {
		return 0
	}
	return uint32(len(env.descriptor.Payload))
}

// hostPayloadRead 将入参载荷拷贝到合约内存
func hostPayloadRead(ctx context.Context, mod api.Module, dstPtr uint32) {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return
	}
	if len(env.descriptor.Payload) == 0 {
		return
	}
	_ = env.writeMem(ctx, mod, dstPtr, env.descriptor.Payload)
}

// hostCallerRead 写出付款方地址（20字节）
func hostCallerRead(ctx context.Context, mod api.Module, dstPtr uint32) {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return
	}
	_ = env.writeMem(ctx, mod, dstPtr, env.descriptor.Payer)
}

// hostSelfRead 写出合约自身地址（20字节）
func hostSelfRead(ctx context.Context, mod api.Module, dstPtr uint32) {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return
	}
	_ = env.writeMem(ctx, mod, dstPtr, env.descriptor.Target)
}

// hostBlockHeight 返回正在组装的区块高度
func hostBlockHeight(ctx context.Context, mod api.Module) uint64 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return 0
	}
	return env.height
}

// hostBlockDifficulty 返回正在组装的区块难度
func hostBlockDifficulty(ctx context.Context, mod api.Module) uint64 {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return 0
	}
	return env.difficulty
}

// hostReturnDataSet 设置返回数据
func hostReturnDataSet(ctx context.Context, mod api.Module, ptr, size uint32) {
	env := envFromContext(ctx)
	if env == nil || !env.chargeOrAbort(ctx, mod, gasEnvRead) {
		return
	}
	data, ok := env.readMem(ctx, mod, ptr, size)
	if !ok {
		return
	}
	env.returnData = types.CopyBytes(data)
}
