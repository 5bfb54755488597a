package testutil

import (
	"github.com/veryn/v1/pkg/types"
)

// ==================== 测试数据 Fixtures ====================

// TestAddress 生成20字节测试地址
func TestAddress(seed byte) []byte {
	addr := make([]byte, types.AddressSize)
	for i := range addr {
		addr[i] = seed
	}
	return addr
}

// TestHash 生成32字节测试哈希
func TestHash(seed byte) []byte {
	h := make([]byte, types.HashSize)
	for i := range h {
		h[i] = seed
	}
	return h
}

// NewTransferEntry 创建普通转账池条目
//
// 输入引用 TestHash(seed)，付款方为 TestAddress(seed)。
// 调用方需通过 MockUTXOQuery.Put 预置被引用输出。
func NewTransferEntry(seed byte, fee uint64) *types.PoolEntry {
	tx := &types.Transaction{
		Version: 1,
		Inputs: []*types.TxInput{
			{PreviousTxHash: TestHash(seed), OutputIndex: 0},
		},
		Outputs: []*types.TxOutput{
			types.NewPayToAddressOutput(TestAddress(seed+1), 100),
		},
		Nonce:   uint64(seed),
		ChainID: 1,
	}
	return &types.PoolEntry{
		Tx:             tx,
		TxHash:         TestHash(0xA0 + seed),
		Fee:            fee,
		Size:           200,
		Weight:         800,
		SigOpCost:      4,
		AddedTimestamp: int64(seed),
	}
}

// NewContractCallEntry 创建携带合约调用的池条目
//
// 合约调用输出为交易的第二个输出（索引1）。
func NewContractCallEntry(seed byte, fee, gasLimit, gasPrice uint64) *types.PoolEntry {
	entry := NewTransferEntry(seed, fee)
	entry.Tx.Outputs = append(entry.Tx.Outputs, &types.TxOutput{
		Owner: TestAddress(0xCC),
		ContractCall: &types.ContractCallOutput{
			Target:   TestAddress(0xCC),
			Entry:    "main",
			Payload:  []byte{0x01},
			GasLimit: gasLimit,
			GasPrice: gasPrice,
		},
	})
	return entry
}

// RegisterFunding 为池条目的输入预置被引用输出
//
// 付款方地址为 TestAddress(seed)。
func RegisterFunding(utxo *MockUTXOQuery, seed byte, amount uint64) {
	utxo.Put(TestHash(seed), 0, types.NewPayToAddressOutput(TestAddress(seed), amount))
}
