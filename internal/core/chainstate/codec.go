// Package chainstate 提供链状态的持久化与查询实现
package chainstate

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/veryn/v1/pkg/types"
)

// encodeChainInfo 链尖信息编码：height(8) | difficulty(8) | bestHash
func encodeChainInfo(info *types.ChainInfo) []byte {
	buf := make([]byte, 16+len(info.BestBlockHash))
	binary.BigEndian.PutUint64(buf[0:8], info.Height)
	binary.BigEndian.PutUint64(buf[8:16], info.Difficulty)
	copy(buf[16:], info.BestBlockHash)
	return buf
}

// decodeChainInfo 链尖信息解码
func decodeChainInfo(raw []byte) (*types.ChainInfo, error) {
	if len(raw) < 16 {
		return nil, fmt.Errorf("链尖信息编码长度非法: %d", len(raw))
	}
	return &types.ChainInfo{
		Height:        binary.BigEndian.Uint64(raw[0:8]),
		Difficulty:    binary.BigEndian.Uint64(raw[8:16]),
		BestBlockHash: types.CopyBytes(raw[16:]),
	}, nil
}

// encodeOutput 交易输出编码
//
// 布局：owner | assetFlag(1) amount(8) | callFlag(1) target entry payload gasLimit(8) gasPrice(8) | lockFlag(1) addr
// 变长字段统一为 长度(4) + 内容。
func encodeOutput(output *types.TxOutput) []byte {
	var buf bytes.Buffer

	putBytes(&buf, output.Owner)

	if output.Asset != nil {
		buf.WriteByte(1)
		putUint64(&buf, output.Asset.Amount)
	} else {
		buf.WriteByte(0)
	}

	if output.ContractCall != nil {
		buf.WriteByte(1)
		putBytes(&buf, output.ContractCall.Target)
		putBytes(&buf, []byte(output.ContractCall.Entry))
		putBytes(&buf, output.ContractCall.Payload)
		putUint64(&buf, output.ContractCall.GasLimit)
		putUint64(&buf, output.ContractCall.GasPrice)
	} else {
		buf.WriteByte(0)
	}

	if output.Lock != nil && output.Lock.SingleKeyLock != nil {
		buf.WriteByte(1)
		putBytes(&buf, output.Lock.SingleKeyLock.RequiredAddressHash)
	} else {
		buf.WriteByte(0)
	}

	return buf.Bytes()
}

// decodeOutput 交易输出解码
func decodeOutput(raw []byte) (*types.TxOutput, error) {
	r := bytes.NewReader(raw)
	output := &types.TxOutput{}

	owner, err := getBytes(r)
	if err != nil {
		return nil, fmt.Errorf("解码输出归属地址失败: %w", err)
	}
	output.Owner = owner

	assetFlag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if assetFlag == 1 {
		amount, err := getUint64(r)
		if err != nil {
			return nil, fmt.Errorf("解码资产金额失败: %w", err)
		}
		output.Asset = &types.AssetOutput{Amount: amount}
	}

	callFlag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if callFlag == 1 {
		call := &types.ContractCallOutput{}
		if call.Target, err = getBytes(r); err != nil {
			return nil, fmt.Errorf("解码合约目标地址失败: %w", err)
		}
		entry, err := getBytes(r)
		if err != nil {
			return nil, fmt.Errorf("解码调用入口失败: %w", err)
		}
		call.Entry = string(entry)
		if call.Payload, err = getBytes(r); err != nil {
			return nil, fmt.Errorf("解码调用载荷失败: %w", err)
		}
		if call.GasLimit, err = getUint64(r); err != nil {
			return nil, err
		}
		if call.GasPrice, err = getUint64(r); err != nil {
			return nil, err
		}
		output.ContractCall = call
	}

	lockFlag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if lockFlag == 1 {
		addr, err := getBytes(r)
		if err != nil {
			return nil, fmt.Errorf("解码锁定地址失败: %w", err)
		}
		output.Lock = &types.LockingCondition{
			SingleKeyLock: &types.SingleKeyLock{RequiredAddressHash: addr},
		}
	}

	return output, nil
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func putBytes(buf *bytes.Buffer, data []byte) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(len(data)))
	buf.Write(tmp[:])
	buf.Write(data)
}

func getUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(tmp[:]), nil
}

func getBytes(r *bytes.Reader) ([]byte, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(tmp[:])
	if size == 0 {
		return nil, nil
	}
	if int(size) > r.Len() {
		return nil, fmt.Errorf("字节串长度越界: %d", size)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}
