package txpool

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	txpoolcfg "github.com/veryn/v1/internal/config/txpool"
	"github.com/veryn/v1/internal/core/infrastructure/crypto/hash"
	txcore "github.com/veryn/v1/internal/core/tx"
	"github.com/veryn/v1/pkg/types"
)

// ==================== 测试辅助 ====================

// mockUTXOQuery 内存版UTXO查询
type mockUTXOQuery struct {
	outputs map[string]*types.TxOutput
}

func newMockUTXOQuery() *mockUTXOQuery {
	return &mockUTXOQuery{outputs: make(map[string]*types.TxOutput)}
}

func (m *mockUTXOQuery) put(txHash []byte, index uint32, output *types.TxOutput) {
	m.outputs[fmt.Sprintf("%s:%d", hex.EncodeToString(txHash), index)] = output
}

func (m *mockUTXOQuery) GetOutput(ctx context.Context, txHash []byte, index uint32) (*types.TxOutput, error) {
	return m.outputs[fmt.Sprintf("%s:%d", hex.EncodeToString(txHash), index)], nil
}

func testAddress(seed byte) []byte {
	addr := make([]byte, types.AddressSize)
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

// testFixture 测试夹具：池 + 预置UTXO
type testFixture struct {
	pool   *Pool
	utxo   *mockUTXOQuery
	hasher *txcore.Hasher
}

func newTestFixture(options *txpoolcfg.Options) *testFixture {
	hasher := txcore.NewHasher(hash.NewManager())
	utxo := newMockUTXOQuery()
	return &testFixture{
		pool:   New(options, hasher, utxo, nil, nil),
		utxo:   utxo,
		hasher: hasher,
	}
}

// newFundedTx 创建一笔有UTXO支撑的转账交易
//
// 输入金额inValue，输出金额outValue，手续费 = inValue − outValue。
func (f *testFixture) newFundedTx(t *testing.T, seed byte, inValue, outValue uint64) *types.Transaction {
	prevHash := make([]byte, types.HashSize)
	prevHash[0] = seed
	f.utxo.put(prevHash, 0, types.NewPayToAddressOutput(testAddress(seed), inValue))

	return &types.Transaction{
		Version: 1,
		Inputs: []*types.TxInput{
			{PreviousTxHash: prevHash, OutputIndex: 0},
		},
		Outputs: []*types.TxOutput{
			types.NewPayToAddressOutput(testAddress(seed+1), outValue),
		},
		Nonce:   uint64(seed),
		ChainID: 1,
	}
}

// ==================== 提交 ====================

func TestSubmitTx_WithValidTransaction_ComputesMetadata(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)
	tx := f.newFundedTx(t, 0x01, 1000, 900)

	// Act
	txHash, err := f.pool.SubmitTx(tx)

	// Assert
	require.NoError(t, err)
	require.Len(t, txHash, types.HashSize)

	entries, err := f.pool.GetEntriesForMining()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, uint64(100), entry.Fee, "手续费 = 输入 − 输出")
	assert.Equal(t, entry.Size*4, entry.Weight, "权重 = 大小 × 4")
	assert.Equal(t, uint64(4), entry.SigOpCost, "单输入的签名成本")
	assert.NotZero(t, entry.AddedTimestamp)
}

func TestSubmitTx_WithContractCall_ChargesGasBudgetAsOutput(t *testing.T) {
	// Arrange：输入1000，资产输出500，Gas预算 100×3=300，手续费应为200
	f := newTestFixture(nil)
	tx := f.newFundedTx(t, 0x01, 1000, 500)
	tx.Outputs = append(tx.Outputs, &types.TxOutput{
		Owner: testAddress(0xCC),
		ContractCall: &types.ContractCallOutput{
			Target:   testAddress(0xCC),
			Entry:    "main",
			GasLimit: 100,
			GasPrice: 3,
		},
	})

	// Act
	_, err := f.pool.SubmitTx(tx)

	// Assert
	require.NoError(t, err)
	entries, err := f.pool.GetEntriesForMining()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, uint64(200), entries[0].Fee, "Gas预算计入输出总额")
}

func TestSubmitTx_WithDuplicate_ReturnsError(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)
	tx := f.newFundedTx(t, 0x01, 1000, 900)
	_, err := f.pool.SubmitTx(tx)
	require.NoError(t, err)

	// Act
	_, err = f.pool.SubmitTx(tx)

	// Assert
	assert.Error(t, err, "重复提交应被拒绝")
}

func TestSubmitTx_WithCoinbase_ReturnsError(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)
	coinbase := &types.Transaction{
		Version: 1,
		Outputs: []*types.TxOutput{types.NewPayToAddressOutput(testAddress(0x01), 100)},
	}

	// Act
	_, err := f.pool.SubmitTx(coinbase)

	// Assert
	assert.Error(t, err, "Coinbase交易不允许进入交易池")
}

func TestSubmitTx_WithInsufficientInputs_ReturnsError(t *testing.T) {
	// Arrange：输出超过输入
	f := newTestFixture(nil)
	tx := f.newFundedTx(t, 0x01, 100, 900)

	// Act
	_, err := f.pool.SubmitTx(tx)

	// Assert
	assert.Error(t, err, "输入金额不足应被拒绝")
}

func TestSubmitTx_WhenPoolFull_ReturnsError(t *testing.T) {
	// Arrange
	f := newTestFixture(txpoolcfg.New(&txpoolcfg.Options{MaxPoolSize: 1}))
	_, err := f.pool.SubmitTx(f.newFundedTx(t, 0x01, 1000, 900))
	require.NoError(t, err)

	// Act
	_, err = f.pool.SubmitTx(f.newFundedTx(t, 0x02, 1000, 900))

	// Assert
	assert.Error(t, err, "池满应拒绝新交易")
}

// ==================== 挖矿快照 ====================

func TestGetEntriesForMining_SortsByFeeRateDescending(t *testing.T) {
	// Arrange：三笔大小相同、手续费递增的交易
	f := newTestFixture(nil)
	_, err := f.pool.SubmitTx(f.newFundedTx(t, 0x01, 1000, 950)) // fee 50
	require.NoError(t, err)
	_, err = f.pool.SubmitTx(f.newFundedTx(t, 0x02, 1000, 800)) // fee 200
	require.NoError(t, err)
	_, err = f.pool.SubmitTx(f.newFundedTx(t, 0x03, 1000, 900)) // fee 100
	require.NoError(t, err)

	// Act
	entries, err := f.pool.GetEntriesForMining()

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, uint64(200), entries[0].Fee)
	assert.Equal(t, uint64(100), entries[1].Fee)
	assert.Equal(t, uint64(50), entries[2].Fee)
}

func TestGetEntriesForMining_RespectsMaxEntries(t *testing.T) {
	// Arrange
	f := newTestFixture(txpoolcfg.New(&txpoolcfg.Options{MiningMaxEntries: 2}))
	for seed := byte(1); seed <= 5; seed++ {
		_, err := f.pool.SubmitTx(f.newFundedTx(t, seed, 1000, 900))
		require.NoError(t, err)
	}

	// Act
	entries, err := f.pool.GetEntriesForMining()

	// Assert
	require.NoError(t, err)
	assert.Len(t, entries, 2, "条目数上限应生效")
}

func TestGetEntriesForMining_MarksEntriesAsMining(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)
	txHash, err := f.pool.SubmitTx(f.newFundedTx(t, 0x01, 1000, 900))
	require.NoError(t, err)

	// Act
	_, err = f.pool.GetEntriesForMining()
	require.NoError(t, err)

	// Assert
	status, err := f.pool.GetTxStatus(txHash)
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusMining, status)
}

// ==================== 状态与移除 ====================

func TestGetTxStatus_ForUnknownTx_ReturnsUnknown(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)

	// Act
	status, err := f.pool.GetTxStatus(make([]byte, types.HashSize))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusUnknown, status)
}

func TestRemoveTxs_AfterConfirmation_UpdatesStatus(t *testing.T) {
	// Arrange
	f := newTestFixture(nil)
	txHash, err := f.pool.SubmitTx(f.newFundedTx(t, 0x01, 1000, 900))
	require.NoError(t, err)

	// Act
	err = f.pool.RemoveTxs([][]byte{txHash})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, f.pool.Len())
	status, err := f.pool.GetTxStatus(txHash)
	require.NoError(t, err)
	assert.Equal(t, types.TxStatusConfirmed, status)
}
