package state

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veryn/v1/internal/core/infrastructure/crypto/hash"
	storage "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
)

// ==================== 测试辅助 ====================

// memStore 内存版BadgerStore，PrefixScan按键字节序升序返回
type memStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	return val, nil
}

func (m *memStore) Set(ctx context.Context, key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[string(key)] = value
	return nil
}

func (m *memStore) Delete(ctx context.Context, key []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, string(key))
	return nil
}

func (m *memStore) Exists(ctx context.Context, key []byte) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[string(key)]
	return ok, nil
}

func (m *memStore) PrefixScan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	m.mu.RLock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		if strings.HasPrefix(k, string(prefix)) {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	sort.Strings(keys)
	for _, k := range keys {
		m.mu.RLock()
		v := m.data[k]
		m.mu.RUnlock()
		if !fn([]byte(k), v) {
			return nil
		}
	}
	return nil
}

func (m *memStore) WriteBatch(ctx context.Context, sets map[string][]byte, deletes [][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range sets {
		m.data[k] = v
	}
	for _, k := range deletes {
		delete(m.data, string(k))
	}
	return nil
}

func (m *memStore) Close() error { return nil }

var _ storage.BadgerStore = (*memStore)(nil)

func newTestRepository() *Repository {
	return NewRepository(newMemStore(), hash.NewManager(), nil)
}

// ==================== 外层上下文生命周期 ====================

func TestBegin_WithPendingOuterContext_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	_, err := repo.Begin(ctx)
	require.NoError(t, err)

	// Act
	_, err = repo.Begin(ctx)

	// Assert
	assert.Error(t, err, "外层上下文未终结时重复Begin应失败")
}

func TestBegin_AfterCommit_Succeeds(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.Commit())

	// Act
	_, err = repo.Begin(ctx)

	// Assert
	assert.NoError(t, err, "提交后应允许打开新的外层上下文")
}

func TestCommit_CalledTwice_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, outer.Commit())

	// Act
	err = outer.Commit()

	// Assert
	assert.Error(t, err, "重复提交应返回错误")
}

func TestCommit_AfterRollback_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	require.NoError(t, outer.Rollback())

	// Act
	err = outer.Commit()

	// Assert
	assert.Error(t, err, "回滚后提交应返回错误")
}

// ==================== 嵌套上下文 ====================

func TestOpenNested_WithPendingNested_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	_, err = outer.OpenNested()
	require.NoError(t, err)

	// Act
	_, err = outer.OpenNested()

	// Assert
	assert.Error(t, err, "单槽嵌套：未决嵌套上下文存在时应拒绝再开")
}

func TestOpenNested_OnNestedContext_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	nested, err := outer.OpenNested()
	require.NoError(t, err)

	// Act
	_, err = nested.OpenNested()

	// Assert
	assert.Error(t, err, "嵌套深度固定为2，嵌套上下文不允许再嵌套")
}

func TestNestedCommit_MergesWritesIntoOuter(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	nested, err := outer.OpenNested()
	require.NoError(t, err)
	require.NoError(t, nested.SetStorage(ctx, addr, []byte("k"), []byte("v")))

	// Act
	require.NoError(t, nested.Commit())

	// Assert：外层上下文可见嵌套写入
	got, err := outer.GetStorage(ctx, addr, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got, "嵌套提交后写入应合并进外层")
}

func TestNestedRollback_DiscardsWrites(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	nested, err := outer.OpenNested()
	require.NoError(t, err)
	require.NoError(t, nested.SetStorage(ctx, addr, []byte("k"), []byte("v")))

	// Act
	require.NoError(t, nested.Rollback())

	// Assert：外层上下文看不到被丢弃的写入
	got, err := outer.GetStorage(ctx, addr, []byte("k"))
	require.NoError(t, err)
	assert.Nil(t, got, "嵌套回滚后写入应被丢弃")
}

func TestNestedRollback_AllowsReopeningSlot(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	nested, err := outer.OpenNested()
	require.NoError(t, err)
	require.NoError(t, nested.Rollback())

	// Act
	_, err = outer.OpenNested()

	// Assert
	assert.NoError(t, err, "嵌套回滚后槽位应释放")
}

func TestOuterCommit_WithPendingNested_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	outer, err := repo.Begin(context.Background())
	require.NoError(t, err)
	_, err = outer.OpenNested()
	require.NoError(t, err)

	// Act
	err = outer.Commit()

	// Assert
	assert.Error(t, err, "嵌套上下文未决时外层提交应失败")
}

// ==================== 读穿透与余额 ====================

func TestNestedRead_SeesOuterWrites(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.SetCode(ctx, addr, []byte{0x00, 0x61, 0x73, 0x6d}))
	nested, err := outer.OpenNested()
	require.NoError(t, err)

	// Act
	code, err := nested.GetCode(ctx, addr)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6d}, code, "嵌套读应穿透到外层写集")
}

func TestSubBalance_WithInsufficientFunds_ReturnsError(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.AddBalance(ctx, addr, 100))

	// Act
	err = outer.SubBalance(ctx, addr, 200)

	// Assert
	assert.Error(t, err, "余额不足时扣减应失败")
	balance, err := outer.GetBalance(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), balance, "失败的扣减不应改变余额")
}

func TestDeleteStorage_MasksCommittedValue(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.SetStorage(ctx, addr, []byte("k"), []byte("v")))
	require.NoError(t, outer.Commit())

	outer2, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer2.DeleteStorage(ctx, addr, []byte("k")))

	// Act
	got, err := outer2.GetStorage(ctx, addr, []byte("k"))

	// Assert
	require.NoError(t, err)
	assert.Nil(t, got, "删除标记应遮蔽底层已提交的值")
}

// ==================== 根摘要 ====================

func TestRoot_AfterCommit_ChangesWithState(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	rootBefore, err := repo.Root(ctx)
	require.NoError(t, err)
	require.Len(t, rootBefore, 32)

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.SetStorage(ctx, addr, []byte("k"), []byte("v")))
	require.NoError(t, outer.Commit())

	// Act
	rootAfter, err := repo.Root(ctx)

	// Assert
	require.NoError(t, err)
	require.Len(t, rootAfter, 32)
	assert.NotEqual(t, rootBefore, rootAfter, "提交改变状态后根摘要应变化")
}

func TestRoot_AfterRollback_Unchanged(t *testing.T) {
	// Arrange
	repo := newTestRepository()
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	rootBefore, err := repo.Root(ctx)
	require.NoError(t, err)

	outer, err := repo.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, outer.SetStorage(ctx, addr, []byte("k"), []byte("v")))
	require.NoError(t, outer.Rollback())

	// Act
	rootAfter, err := repo.Root(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, rootBefore, rootAfter, "回滚不应改变根摘要")
}

func TestRoot_IsDeterministicForSameState(t *testing.T) {
	// Arrange：两个独立状态库写入相同内容
	ctx := context.Background()
	addr := []byte("contract-addr-000001")

	buildRoot := func() []byte {
		repo := newTestRepository()
		outer, err := repo.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, outer.SetStorage(ctx, addr, []byte("a"), []byte("1")))
		require.NoError(t, outer.SetStorage(ctx, addr, []byte("b"), []byte("2")))
		require.NoError(t, outer.Commit())
		root, err := repo.Root(ctx)
		require.NoError(t, err)
		return root
	}

	// Act
	root1 := buildRoot()
	root2 := buildRoot()

	// Assert
	assert.Equal(t, root1, root2, "相同状态集合的根摘要必须一致")
}
