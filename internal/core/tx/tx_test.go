package tx

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veryn/v1/internal/core/infrastructure/crypto/hash"
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
	m.outputs[utxoKey(txHash, index)] = output
}

func (m *mockUTXOQuery) GetOutput(ctx context.Context, txHash []byte, index uint32) (*types.TxOutput, error) {
	return m.outputs[utxoKey(txHash, index)], nil
}

func utxoKey(txHash []byte, index uint32) string {
	return fmt.Sprintf("%s:%d", hex.EncodeToString(txHash), index)
}

func testAddress(seed byte) []byte {
	addr := make([]byte, types.AddressSize)
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

func newTransferTx(prevHash []byte, owner []byte, amount uint64) *types.Transaction {
	return &types.Transaction{
		Version: 1,
		Inputs: []*types.TxInput{
			{PreviousTxHash: prevHash, OutputIndex: 0},
		},
		Outputs: []*types.TxOutput{
			types.NewPayToAddressOutput(owner, amount),
		},
		ChainID: 1,
	}
}

func newContractCallTx(target []byte, gasLimit, gasPrice uint64) *types.Transaction {
	return &types.Transaction{
		Version: 1,
		Inputs: []*types.TxInput{
			{PreviousTxHash: make([]byte, types.HashSize), OutputIndex: 0},
		},
		Outputs: []*types.TxOutput{
			{
				Owner: target,
				ContractCall: &types.ContractCallOutput{
					Target:   target,
					Entry:    "main",
					Payload:  []byte{0x01},
					GasLimit: gasLimit,
					GasPrice: gasPrice,
				},
			},
		},
		ChainID: 1,
	}
}

// ==================== 交易哈希器 ====================

func TestTransactionHash_IsDeterministic(t *testing.T) {
	// Arrange
	hasher := NewHasher(hash.NewManager())
	tx := newTransferTx(make([]byte, types.HashSize), testAddress(0x01), 100)

	// Act
	hash1, err1 := hasher.TransactionHash(tx)
	hash2, err2 := hasher.TransactionHash(tx)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, hash1, hash2, "同一交易的哈希必须确定")
	assert.Len(t, hash1, types.HashSize)
}

func TestTransactionHash_DiffersForDifferentTransactions(t *testing.T) {
	// Arrange
	hasher := NewHasher(hash.NewManager())
	tx1 := newTransferTx(make([]byte, types.HashSize), testAddress(0x01), 100)
	tx2 := newTransferTx(make([]byte, types.HashSize), testAddress(0x01), 200)

	// Act
	hash1, err1 := hasher.TransactionHash(tx1)
	hash2, err2 := hasher.TransactionHash(tx2)

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotEqual(t, hash1, hash2, "不同交易的哈希应不同")
}

func TestTransactionHash_WithNilTransaction_ReturnsError(t *testing.T) {
	// Arrange
	hasher := NewHasher(hash.NewManager())

	// Act
	_, err := hasher.TransactionHash(nil)

	// Assert
	assert.Error(t, err)
}

// ==================== 合约载荷编解码 ====================

func TestExtractInvocation_WithContractCall_ReturnsFirstMatch(t *testing.T) {
	// Arrange
	codec := NewCodec()
	target := testAddress(0xCC)
	tx := newContractCallTx(target, 100, 1)

	// Act
	output, index, found := codec.ExtractInvocation(tx)

	// Assert
	assert.True(t, found)
	assert.Equal(t, uint32(0), index)
	require.NotNil(t, output)
	assert.Equal(t, target, output.ContractCall.Target)
}

func TestExtractInvocation_WithPlainTransfer_ReturnsFalse(t *testing.T) {
	// Arrange
	codec := NewCodec()
	tx := newTransferTx(make([]byte, types.HashSize), testAddress(0x01), 100)

	// Act
	_, _, found := codec.ExtractInvocation(tx)

	// Assert
	assert.False(t, found, "普通转账交易不携带合约调用")
}

func TestDecode_WithValidOutput_FillsDescriptor(t *testing.T) {
	// Arrange
	codec := NewCodec()
	target := testAddress(0xCC)
	tx := newContractCallTx(target, 100, 3)
	txHash := make([]byte, types.HashSize)
	txHash[0] = 0xAB
	output, index, found := codec.ExtractInvocation(tx)
	require.True(t, found)

	// Act
	descriptor, err := codec.Decode(tx, txHash, output, index)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, txHash, descriptor.TxHash)
	assert.Equal(t, target, descriptor.Target)
	assert.Equal(t, "main", descriptor.Entry)
	assert.Equal(t, uint64(100), descriptor.GasLimit)
	assert.Equal(t, uint64(3), descriptor.GasPrice)
	assert.Equal(t, uint64(300), descriptor.GasBudget(), "Gas预算 = 上限 × 单价")
	assert.Nil(t, descriptor.Payer, "付款方延迟解析，解码时不填充")
}

func TestDecode_WithZeroGasLimit_ReturnsError(t *testing.T) {
	// Arrange
	codec := NewCodec()
	tx := newContractCallTx(testAddress(0xCC), 0, 1)
	output, index, _ := codec.ExtractInvocation(tx)

	// Act
	_, err := codec.Decode(tx, make([]byte, types.HashSize), output, index)

	// Assert
	assert.Error(t, err, "Gas上限为0的载荷应拒绝解码")
}

func TestDecode_WithGasBudgetOverflow_ReturnsError(t *testing.T) {
	// Arrange
	codec := NewCodec()
	tx := newContractCallTx(testAddress(0xCC), ^uint64(0), 2)
	output, index, _ := codec.ExtractInvocation(tx)

	// Act
	_, err := codec.Decode(tx, make([]byte, types.HashSize), output, index)

	// Assert
	assert.Error(t, err, "Gas预算溢出uint64应拒绝解码")
}

// ==================== 付款方解析 ====================

func TestResolve_PrefersIncludedTransactions(t *testing.T) {
	// Arrange：被引用输出由本区块前序交易创建，链上UTXO不可见
	hashManager := hash.NewManager()
	hasher := NewHasher(hashManager)
	resolver := NewResolver(newMockUTXOQuery(), hasher, hashManager, nil)

	payer := testAddress(0x0A)
	parent := newTransferTx(make([]byte, types.HashSize), payer, 500)
	parentHash, err := hasher.TransactionHash(parent)
	require.NoError(t, err)

	child := newTransferTx(parentHash, testAddress(0x0B), 400)

	// Act
	resolved, err := resolver.Resolve(context.Background(), child, []*types.Transaction{parent})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payer, resolved, "应从已打包交易集解析到付款方")
}

func TestResolve_FallsBackToUTXOView(t *testing.T) {
	// Arrange：被引用输出只在链上UTXO视图中
	hashManager := hash.NewManager()
	hasher := NewHasher(hashManager)
	utxo := newMockUTXOQuery()
	payer := testAddress(0x0A)
	prevHash := make([]byte, types.HashSize)
	prevHash[0] = 0x01
	utxo.put(prevHash, 0, types.NewPayToAddressOutput(payer, 500))
	resolver := NewResolver(utxo, hasher, hashManager, nil)

	child := newTransferTx(prevHash, testAddress(0x0B), 400)

	// Act
	resolved, err := resolver.Resolve(context.Background(), child, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, payer, resolved)
}

func TestResolve_WithUnknownOutputAndPublicKey_DerivesAddress(t *testing.T) {
	// Arrange：被引用输出不可见，但输入携带公钥
	hashManager := hash.NewManager()
	hasher := NewHasher(hashManager)
	resolver := NewResolver(newMockUTXOQuery(), hasher, hashManager, nil)

	privKey, err := secp256k1.GeneratePrivateKey()
	require.NoError(t, err)
	pubKeyBytes := privKey.PubKey().SerializeCompressed()

	prevHash := make([]byte, types.HashSize)
	prevHash[0] = 0x02
	tx := newTransferTx(prevHash, testAddress(0x0B), 400)
	tx.Inputs[0].PublicKey = pubKeyBytes

	// Act
	resolved, err := resolver.Resolve(context.Background(), tx, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, hashManager.Hash160(pubKeyBytes), resolved, "公钥推导地址应为Hash160(压缩公钥)")
}

func TestResolve_WithNoInputs_ReturnsError(t *testing.T) {
	// Arrange
	hashManager := hash.NewManager()
	resolver := NewResolver(newMockUTXOQuery(), NewHasher(hashManager), hashManager, nil)

	// Act
	_, err := resolver.Resolve(context.Background(), &types.Transaction{}, nil)

	// Assert
	assert.Error(t, err, "无输入的交易无法解析付款方")
}

// ==================== 手续费管理 ====================

func TestBlockReward_WithoutHalving_IsConstant(t *testing.T) {
	// Arrange
	feeManager := NewFeeManager(nil, nil)

	// Act & Assert
	assert.Equal(t, feeManager.BlockReward(1), feeManager.BlockReward(1_000_000))
}

func TestBuildRewardTransaction_CreatesCoinbase(t *testing.T) {
	// Arrange
	feeManager := NewFeeManager(nil, nil)
	miner := testAddress(0x0F)

	// Act
	reward, err := feeManager.BuildRewardTransaction(context.Background(), 10, miner, 1)

	// Assert
	require.NoError(t, err)
	assert.True(t, reward.IsCoinbase())
	require.Len(t, reward.Outputs, 1)
	assert.Equal(t, miner, reward.Outputs[0].Owner)
	assert.Equal(t, feeManager.BlockReward(10), reward.Outputs[0].Asset.Amount)
}

func TestBuildRewardTransaction_WithBadMinerAddress_ReturnsError(t *testing.T) {
	// Arrange
	feeManager := NewFeeManager(nil, nil)

	// Act
	_, err := feeManager.BuildRewardTransaction(context.Background(), 10, []byte{0x01}, 1)

	// Assert
	assert.Error(t, err)
}

func TestAppendRefundOutputs_OneOutputPerRefund(t *testing.T) {
	// Arrange
	feeManager := NewFeeManager(nil, nil)
	reward, err := feeManager.BuildRewardTransaction(context.Background(), 10, testAddress(0x0F), 1)
	require.NoError(t, err)

	refunds := []types.PendingRefund{
		{Payer: testAddress(0x0A), Amount: 60},
		{Payer: testAddress(0x0B), Amount: 30},
	}

	// Act
	err = feeManager.AppendRefundOutputs(reward, refunds)

	// Assert
	require.NoError(t, err)
	require.Len(t, reward.Outputs, 3, "每个退款恰好一个输出，不跨付款方合并")
	assert.Equal(t, testAddress(0x0A), reward.Outputs[1].Owner)
	assert.Equal(t, uint64(60), reward.Outputs[1].Asset.Amount)
	assert.Equal(t, testAddress(0x0B), reward.Outputs[2].Owner)
	assert.Equal(t, uint64(30), reward.Outputs[2].Asset.Amount)
}

func TestAppendRefundOutputs_SkipsZeroAmountRefunds(t *testing.T) {
	// Arrange：OutOfGas调用的退款为零
	feeManager := NewFeeManager(nil, nil)
	reward, err := feeManager.BuildRewardTransaction(context.Background(), 10, testAddress(0x0F), 1)
	require.NoError(t, err)

	// Act
	err = feeManager.AppendRefundOutputs(reward, []types.PendingRefund{
		{Payer: testAddress(0x0A), Amount: 0},
	})

	// Assert
	require.NoError(t, err)
	assert.Len(t, reward.Outputs, 1, "零额退款不产生输出")
}

func TestAppendRefundOutputs_OnNonCoinbase_ReturnsError(t *testing.T) {
	// Arrange
	feeManager := NewFeeManager(nil, nil)
	tx := newTransferTx(make([]byte, types.HashSize), testAddress(0x01), 100)

	// Act
	err := feeManager.AppendRefundOutputs(tx, []types.PendingRefund{
		{Payer: testAddress(0x0A), Amount: 10},
	})

	// Assert
	assert.Error(t, err, "退款输出只能追加到Coinbase交易")
}
