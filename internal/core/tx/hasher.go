// Package tx 提供交易处理的具体实现
//
// 🧾 **交易域服务 (Transaction Domain Services)**
//
// 本包实现交易哈希、合约载荷编解码、付款方解析与手续费管理。
package tx

import (
	"bytes"
	"encoding/binary"
	"fmt"

	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	"github.com/veryn/v1/pkg/types"
)

// Hasher 交易哈希器
//
// 🎯 **核心职责**：
// 交易的规范化序列化与双重SHA-256哈希。序列化采用
// 大端序定长整数 + 长度前缀字节串，对同一交易是确定性的。
type Hasher struct {
	hashManager crypto.HashManager
}

// NewHasher 创建交易哈希器
func NewHasher(hashManager crypto.HashManager) *Hasher {
	return &Hasher{hashManager: hashManager}
}

// TransactionHash 计算交易哈希（32字节）
func (h *Hasher) TransactionHash(transaction *types.Transaction) ([]byte, error) {
	encoded, err := h.EncodeTransaction(transaction)
	if err != nil {
		return nil, err
	}
	return h.hashManager.DoubleSHA256(encoded), nil
}

// HashEncoded 对已序列化的交易字节计算哈希
//
// 调用方已持有序列化结果时避免二次编码。
func (h *Hasher) HashEncoded(encoded []byte) []byte {
	return h.hashManager.DoubleSHA256(encoded)
}

// EncodeTransaction 规范化序列化交易
//
// 编码布局（全部大端序）：
//
//	version(4) nonce(8) timestamp(8) chainID(8) internal(1)
//	inputCount(4) [prevHash bytes | outputIndex(4) | unlocking | pubkey]...
//	outputCount(4) [owner | assetFlag(1) amount(8) | callFlag(1) target entry payload gasLimit(8) gasPrice(8) | lockFlag(1) addr]...
//
// 变长字段统一为 长度(4) + 内容。
func (h *Hasher) EncodeTransaction(transaction *types.Transaction) ([]byte, error) {
	if transaction == nil {
		return nil, fmt.Errorf("交易不能为空")
	}

	var buf bytes.Buffer

	writeUint32(&buf, transaction.Version)
	writeUint64(&buf, transaction.Nonce)
	writeUint64(&buf, transaction.CreationTimestamp)
	writeUint64(&buf, transaction.ChainID)
	writeBool(&buf, transaction.Internal)

	writeUint32(&buf, uint32(len(transaction.Inputs)))
	for i, input := range transaction.Inputs {
		if input == nil {
			return nil, fmt.Errorf("交易输入[%d]不能为空", i)
		}
		writeBytes(&buf, input.PreviousTxHash)
		writeUint32(&buf, input.OutputIndex)
		writeBytes(&buf, input.UnlockingData)
		writeBytes(&buf, input.PublicKey)
	}

	writeUint32(&buf, uint32(len(transaction.Outputs)))
	for i, output := range transaction.Outputs {
		if output == nil {
			return nil, fmt.Errorf("交易输出[%d]不能为空", i)
		}
		writeBytes(&buf, output.Owner)

		if output.Asset != nil {
			writeBool(&buf, true)
			writeUint64(&buf, output.Asset.Amount)
		} else {
			writeBool(&buf, false)
		}

		if output.ContractCall != nil {
			writeBool(&buf, true)
			writeBytes(&buf, output.ContractCall.Target)
			writeBytes(&buf, []byte(output.ContractCall.Entry))
			writeBytes(&buf, output.ContractCall.Payload)
			writeUint64(&buf, output.ContractCall.GasLimit)
			writeUint64(&buf, output.ContractCall.GasPrice)
		} else {
			writeBool(&buf, false)
		}

		if output.Lock != nil && output.Lock.SingleKeyLock != nil {
			writeBool(&buf, true)
			writeBytes(&buf, output.Lock.SingleKeyLock.RequiredAddressHash)
		} else {
			writeBool(&buf, false)
		}
	}

	return buf.Bytes(), nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeBool(buf *bytes.Buffer, v bool) {
	if v {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func writeBytes(buf *bytes.Buffer, data []byte) {
	writeUint32(buf, uint32(len(data)))
	buf.Write(data)
}
