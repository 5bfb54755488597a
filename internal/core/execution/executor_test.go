package execution

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	"github.com/veryn/v1/pkg/types"
)

// ==================== 测试辅助 ====================

// fakeStateContext 内存版跟踪上下文，仅供执行器测试使用
type fakeStateContext struct {
	code     map[string][]byte
	storage  map[string][]byte
	balances map[string]uint64
}

func newFakeStateContext() *fakeStateContext {
	return &fakeStateContext{
		code:     make(map[string][]byte),
		storage:  make(map[string][]byte),
		balances: make(map[string]uint64),
	}
}

func (f *fakeStateContext) OpenNested() (stateiface.TrackingContext, error) { return f, nil }
func (f *fakeStateContext) Commit() error                                   { return nil }
func (f *fakeStateContext) Rollback() error                                 { return nil }

func (f *fakeStateContext) GetCode(ctx context.Context, addr []byte) ([]byte, error) {
	return f.code[string(addr)], nil
}

func (f *fakeStateContext) SetCode(ctx context.Context, addr []byte, code []byte) error {
	f.code[string(addr)] = code
	return nil
}

func (f *fakeStateContext) GetStorage(ctx context.Context, addr []byte, key []byte) ([]byte, error) {
	return f.storage[string(addr)+":"+string(key)], nil
}

func (f *fakeStateContext) SetStorage(ctx context.Context, addr []byte, key, value []byte) error {
	f.storage[string(addr)+":"+string(key)] = value
	return nil
}

func (f *fakeStateContext) DeleteStorage(ctx context.Context, addr []byte, key []byte) error {
	delete(f.storage, string(addr)+":"+string(key))
	return nil
}

func (f *fakeStateContext) GetBalance(ctx context.Context, addr []byte) (uint64, error) {
	return f.balances[string(addr)], nil
}

func (f *fakeStateContext) AddBalance(ctx context.Context, addr []byte, amount uint64) error {
	f.balances[string(addr)] += amount
	return nil
}

func (f *fakeStateContext) SubBalance(ctx context.Context, addr []byte, amount uint64) error {
	f.balances[string(addr)] -= amount
	return nil
}

var _ stateiface.TrackingContext = (*fakeStateContext)(nil)

func newTestDescriptor(gasLimit, gasPrice uint64) *types.InvocationDescriptor {
	return &types.InvocationDescriptor{
		TxHash:      make([]byte, types.HashSize),
		OutputIndex: 0,
		Payer:       []byte("payer-address-000001"),
		Target:      []byte("contract-addr-000001"),
		Entry:       "main",
		Payload:     []byte{0x01, 0x02},
		GasLimit:    gasLimit,
		GasPrice:    gasPrice,
	}
}

// ==================== 执行器行为 ====================

func TestExecute_WithNilDescriptor_ReturnsError(t *testing.T) {
	// Arrange
	executor, err := NewExecutor(1, nil)
	require.NoError(t, err)
	defer executor.Close()

	// Act
	_, err = executor.Execute(context.Background(), nil, newFakeStateContext(), 1, 1, nil)

	// Assert
	assert.Error(t, err, "空描述符应返回基础设施错误")
}

func TestExecute_WithMissingCode_ReturnsFailureOther(t *testing.T) {
	// Arrange
	executor, err := NewExecutor(1, nil)
	require.NoError(t, err)
	defer executor.Close()

	descriptor := newTestDescriptor(100_000, 10)

	// Act
	result, err := executor.Execute(context.Background(), descriptor, newFakeStateContext(), 1, 1, nil)

	// Assert
	require.NoError(t, err, "合约缺失是交易失败，不是执行器故障")
	assert.True(t, result.Reverted)
	assert.Equal(t, types.FailureOther, result.FailureKind)
	assert.Less(t, result.GasUsed, descriptor.GasLimit, "非OutOfGas失败应保留部分退款空间")
	assert.Empty(t, result.InternalTransactions)
}

func TestExecute_WithGasLimitBelowUpfrontCost_ReturnsOutOfGas(t *testing.T) {
	// Arrange：上限低于固定开销，执行前即耗尽
	executor, err := NewExecutor(1, nil)
	require.NoError(t, err)
	defer executor.Close()

	descriptor := newTestDescriptor(gasBase-1, 10)

	// Act
	result, err := executor.Execute(context.Background(), descriptor, newFakeStateContext(), 1, 1, nil)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Reverted)
	assert.Equal(t, types.FailureOutOfGas, result.FailureKind)
	assert.Equal(t, descriptor.GasLimit, result.GasUsed, "OutOfGas时燃料消耗必须钳制为全额上限")
}

func TestExecute_WithInvalidBytecode_ReturnsFailureOther(t *testing.T) {
	// Arrange：目标地址存有非法字节码
	executor, err := NewExecutor(1, nil)
	require.NoError(t, err)
	defer executor.Close()

	descriptor := newTestDescriptor(100_000, 10)
	stateCtx := newFakeStateContext()
	require.NoError(t, stateCtx.SetCode(context.Background(), descriptor.Target, []byte{0xde, 0xad, 0xbe, 0xef}))

	// Act
	result, err := executor.Execute(context.Background(), descriptor, stateCtx, 1, 1, nil)

	// Assert
	require.NoError(t, err, "非法字节码是交易失败，不是执行器故障")
	assert.True(t, result.Reverted)
	assert.Equal(t, types.FailureOther, result.FailureKind)
}

// ==================== 燃料计量器 ====================

func TestGasMeter_ChargeWithinLimit_Accumulates(t *testing.T) {
	// Arrange
	meter := newGasMeter(1000)

	// Act & Assert
	assert.True(t, meter.charge(400))
	assert.True(t, meter.charge(600))
	assert.Equal(t, uint64(1000), meter.used)
	assert.Equal(t, uint64(0), meter.remaining())
}

func TestGasMeter_ChargeBeyondLimit_ClampsToLimit(t *testing.T) {
	// Arrange
	meter := newGasMeter(1000)

	// Act
	ok := meter.charge(1001)

	// Assert
	assert.False(t, ok)
	assert.Equal(t, uint64(1000), meter.used, "超限时消耗应钳制到上限")
}
