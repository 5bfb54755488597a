// Package tx 提供交易处理的具体实现
package tx

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"github.com/veryn/v1/pkg/types"
)

// Resolver 实现SenderResolver接口
//
// 🎯 **核心职责**：
// 付款方身份 = 首个输入所引用输出的归属地址。
//
// ⚠️ **部分打包集优先**：
// 前序条目创建的输出可能被后续条目引用（链式消费），
// 因此先查本区块已打包交易集，未命中再回退链上UTXO视图。
type Resolver struct {
	utxoQuery   persistence.UTXOQuery
	hasher      *Hasher
	hashManager crypto.HashManager
	logger      log.Logger
}

// NewResolver 创建付款方解析器
func NewResolver(utxoQuery persistence.UTXOQuery, hasher *Hasher, hashManager crypto.HashManager, logger log.Logger) *Resolver {
	return &Resolver{
		utxoQuery:   utxoQuery,
		hasher:      hasher,
		hashManager: hashManager,
		logger:      logger,
	}
}

// Resolve 解析交易的付款方地址
func (r *Resolver) Resolve(ctx context.Context, transaction *types.Transaction, included []*types.Transaction) ([]byte, error) {
	if transaction == nil {
		return nil, fmt.Errorf("交易不能为空")
	}
	if len(transaction.Inputs) == 0 {
		return nil, fmt.Errorf("交易无输入，无法解析付款方")
	}
	first := transaction.Inputs[0]
	if first == nil {
		return nil, fmt.Errorf("首个输入不能为空")
	}

	// 1. 本区块已打包交易集（按打包顺序）
	output, found, err := r.lookupIncluded(first, included)
	if err != nil {
		return nil, err
	}

	// 2. 链上UTXO视图
	if !found {
		output, err = r.utxoQuery.GetOutput(ctx, first.PreviousTxHash, first.OutputIndex)
		if err != nil {
			return nil, fmt.Errorf("查询被引用输出失败: %w", err)
		}
	}

	if output != nil {
		if !types.IsValidAddress(output.Owner) {
			return nil, fmt.Errorf("被引用输出归属地址非法: %s", hex.EncodeToString(output.Owner))
		}
		return types.CopyBytes(output.Owner), nil
	}

	// 3. 被引用输出不可见时回退公钥推导
	if len(first.PublicKey) > 0 {
		return r.addressFromPublicKey(first.PublicKey)
	}

	return nil, fmt.Errorf("被引用输出不存在且无公钥可推导: prev=%s index=%d",
		hex.EncodeToString(first.PreviousTxHash), first.OutputIndex)
}

// lookupIncluded 在已打包交易集中查找被引用输出
func (r *Resolver) lookupIncluded(input *types.TxInput, included []*types.Transaction) (*types.TxOutput, bool, error) {
	for _, candidate := range included {
		if candidate == nil {
			continue
		}
		hash, err := r.hasher.TransactionHash(candidate)
		if err != nil {
			return nil, false, fmt.Errorf("计算已打包交易哈希失败: %w", err)
		}
		if !bytes.Equal(hash, input.PreviousTxHash) {
			continue
		}
		if int(input.OutputIndex) >= len(candidate.Outputs) {
			return nil, false, fmt.Errorf("被引用输出索引越界: index=%d outputs=%d",
				input.OutputIndex, len(candidate.Outputs))
		}
		return candidate.Outputs[input.OutputIndex], true, nil
	}
	return nil, false, nil
}

// addressFromPublicKey 从压缩公钥推导地址（Hash160）
func (r *Resolver) addressFromPublicKey(pubKeyBytes []byte) ([]byte, error) {
	pubKey, err := secp256k1.ParsePubKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("解析公钥失败: %w", err)
	}
	return r.hashManager.Hash160(pubKey.SerializeCompressed()), nil
}

// 编译时检查接口实现
var _ txiface.SenderResolver = (*Resolver)(nil)
