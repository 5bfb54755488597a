package testutil

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/veryn/v1/pkg/types"

	stateiface "github.com/veryn/v1/pkg/interfaces/state"
)

// ==================== Mock 链查询 ====================

// MockChainQuery 固定链尖信息
type MockChainQuery struct {
	Info *types.ChainInfo
	Err  error
}

func NewMockChainQuery(height uint64) *MockChainQuery {
	bestHash := make([]byte, types.HashSize)
	bestHash[0] = 0xBE
	return &MockChainQuery{
		Info: &types.ChainInfo{
			Height:        height,
			BestBlockHash: bestHash,
			Difficulty:    1000,
		},
	}
}

func (m *MockChainQuery) GetChainInfo(ctx context.Context) (*types.ChainInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Info, nil
}

// ==================== Mock UTXO查询 ====================

// MockUTXOQuery 内存版UTXO查询
type MockUTXOQuery struct {
	Outputs map[string]*types.TxOutput
}

func NewMockUTXOQuery() *MockUTXOQuery {
	return &MockUTXOQuery{Outputs: make(map[string]*types.TxOutput)}
}

func (m *MockUTXOQuery) Put(txHash []byte, index uint32, output *types.TxOutput) {
	m.Outputs[fmt.Sprintf("%s:%d", hex.EncodeToString(txHash), index)] = output
}

func (m *MockUTXOQuery) GetOutput(ctx context.Context, txHash []byte, index uint32) (*types.TxOutput, error) {
	return m.Outputs[fmt.Sprintf("%s:%d", hex.EncodeToString(txHash), index)], nil
}

// ==================== Mock 交易池 ====================

// MockTxPool 返回固定条目快照
type MockTxPool struct {
	Entries []*types.PoolEntry
	Err     error
}

func (m *MockTxPool) SubmitTx(tx *types.Transaction) ([]byte, error) {
	return nil, fmt.Errorf("mock不支持提交")
}

func (m *MockTxPool) GetEntriesForMining() ([]*types.PoolEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Entries, nil
}

func (m *MockTxPool) GetTxStatus(txID []byte) (types.TxStatus, error) {
	return types.TxStatusUnknown, nil
}

func (m *MockTxPool) RemoveTxs(txIDs [][]byte) error { return nil }

// ==================== Mock 状态库 ====================

// MockStateRepository 记录生命周期事件的状态库
//
// Events 按发生顺序记录：begin / nested:open / nested:commit /
// nested:rollback / outer:commit / outer:rollback / root
type MockStateRepository struct {
	Events    []string
	RootValue []byte
	BeginErr  error
	RootErr   error
}

func NewMockStateRepository() *MockStateRepository {
	root := make([]byte, types.HashSize)
	root[0] = 0x5A
	return &MockStateRepository{RootValue: root}
}

func (r *MockStateRepository) Begin(ctx context.Context) (stateiface.TrackingContext, error) {
	if r.BeginErr != nil {
		return nil, r.BeginErr
	}
	r.Events = append(r.Events, "begin")
	return &MockTrackingContext{repo: r, isOuter: true}, nil
}

func (r *MockStateRepository) Root(ctx context.Context) ([]byte, error) {
	if r.RootErr != nil {
		return nil, r.RootErr
	}
	r.Events = append(r.Events, "root")
	return r.RootValue, nil
}

// MockTrackingContext 记录事件的跟踪上下文（状态读写为内存noop）
type MockTrackingContext struct {
	repo    *MockStateRepository
	isOuter bool
	closed  bool
}

func (c *MockTrackingContext) OpenNested() (stateiface.TrackingContext, error) {
	if c.closed {
		return nil, fmt.Errorf("上下文已终结")
	}
	c.repo.Events = append(c.repo.Events, "nested:open")
	return &MockTrackingContext{repo: c.repo, isOuter: false}, nil
}

func (c *MockTrackingContext) Commit() error {
	if c.closed {
		return fmt.Errorf("上下文已终结")
	}
	c.closed = true
	if c.isOuter {
		c.repo.Events = append(c.repo.Events, "outer:commit")
	} else {
		c.repo.Events = append(c.repo.Events, "nested:commit")
	}
	return nil
}

func (c *MockTrackingContext) Rollback() error {
	if c.closed {
		return fmt.Errorf("上下文已终结")
	}
	c.closed = true
	if c.isOuter {
		c.repo.Events = append(c.repo.Events, "outer:rollback")
	} else {
		c.repo.Events = append(c.repo.Events, "nested:rollback")
	}
	return nil
}

func (c *MockTrackingContext) GetCode(ctx context.Context, addr []byte) ([]byte, error) {
	return nil, nil
}
func (c *MockTrackingContext) SetCode(ctx context.Context, addr []byte, code []byte) error {
	return nil
}
func (c *MockTrackingContext) GetStorage(ctx context.Context, addr []byte, key []byte) ([]byte, error) {
	return nil, nil
}
func (c *MockTrackingContext) SetStorage(ctx context.Context, addr []byte, key, value []byte) error {
	return nil
}
func (c *MockTrackingContext) DeleteStorage(ctx context.Context, addr []byte, key []byte) error {
	return nil
}
func (c *MockTrackingContext) GetBalance(ctx context.Context, addr []byte) (uint64, error) {
	return 0, nil
}
func (c *MockTrackingContext) AddBalance(ctx context.Context, addr []byte, amount uint64) error {
	return nil
}
func (c *MockTrackingContext) SubBalance(ctx context.Context, addr []byte, amount uint64) error {
	return nil
}

// ==================== Mock 合约执行器 ====================

// ScriptedExecutor 按承载交易哈希返回脚本化执行结果
type ScriptedExecutor struct {
	Results map[string]*types.ExecutionResult // hex(TxHash) → 结果
	Err     error
	Calls   []*types.InvocationDescriptor
}

func NewScriptedExecutor() *ScriptedExecutor {
	return &ScriptedExecutor{Results: make(map[string]*types.ExecutionResult)}
}

// Script 为指定承载交易设置执行结果
func (e *ScriptedExecutor) Script(txHash []byte, result *types.ExecutionResult) {
	e.Results[hex.EncodeToString(txHash)] = result
}

func (e *ScriptedExecutor) Execute(
	ctx context.Context,
	descriptor *types.InvocationDescriptor,
	stateCtx stateiface.TrackingContext,
	height uint64,
	difficulty uint64,
	payoutOwner []byte,
) (*types.ExecutionResult, error) {
	e.Calls = append(e.Calls, descriptor)
	if e.Err != nil {
		return nil, e.Err
	}
	if result, ok := e.Results[hex.EncodeToString(descriptor.TxHash)]; ok {
		return result, nil
	}
	return &types.ExecutionResult{FailureKind: types.FailureNone}, nil
}
