// Package chainstate 提供链状态的持久化与查询实现
//
// 🔍 **链状态服务 (Chain State Service)**
//
// 🎯 **核心职责**：
// - 链尖信息（高度/最佳区块哈希/难度）的读写
// - UTXO视图的读写（区块组装的付款方解析回退路径）
//
// 💡 **键空间布局**：
//   - chain:info              链尖信息
//   - utxo:<txHash><index>    未花费输出
//
// 链遍历与难度调整算法属于外部协作方，本层只做存取。
package chainstate

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	"github.com/veryn/v1/pkg/types"
)

const (
	chainInfoKey = "chain:info"
	utxoPrefix   = "utxo:"
)

// utxoKey UTXO键：前缀 + 交易哈希 + 输出索引（大端4字节）
func utxoKey(txHash []byte, index uint32) []byte {
	key := make([]byte, 0, len(utxoPrefix)+len(txHash)+4)
	key = append(key, utxoPrefix...)
	key = append(key, txHash...)
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], index)
	return append(key, idx[:]...)
}

// Service 链状态服务，实现ChainQuery与UTXOQuery
type Service struct {
	store  storage.BadgerStore
	logger log.Logger
}

// New 创建链状态服务
func New(store storage.BadgerStore, logger log.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// GetChainInfo 获取链尖信息
//
// 创世前（无链尖记录）返回高度0、零哈希、难度1。
func (s *Service) GetChainInfo(ctx context.Context) (*types.ChainInfo, error) {
	raw, err := s.store.Get(ctx, []byte(chainInfoKey))
	if err != nil {
		return nil, fmt.Errorf("读取链尖信息失败: %w", err)
	}
	if raw == nil {
		return &types.ChainInfo{
			Height:        0,
			BestBlockHash: make([]byte, types.HashSize),
			Difficulty:    1,
		}, nil
	}
	return decodeChainInfo(raw)
}

// SetChainInfo 更新链尖信息
func (s *Service) SetChainInfo(ctx context.Context, info *types.ChainInfo) error {
	if info == nil {
		return fmt.Errorf("链尖信息不能为空")
	}
	if !types.IsValidHash(info.BestBlockHash) {
		return fmt.Errorf("最佳区块哈希长度非法: %d", len(info.BestBlockHash))
	}
	if err := s.store.Set(ctx, []byte(chainInfoKey), encodeChainInfo(info)); err != nil {
		return fmt.Errorf("写入链尖信息失败: %w", err)
	}
	return nil
}

// GetOutput 按 (交易哈希, 输出索引) 查找未花费输出
func (s *Service) GetOutput(ctx context.Context, txHash []byte, index uint32) (*types.TxOutput, error) {
	raw, err := s.store.Get(ctx, utxoKey(txHash, index))
	if err != nil {
		return nil, fmt.Errorf("读取UTXO失败: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeOutput(raw)
}

// PutOutput 记录新的未花费输出
func (s *Service) PutOutput(ctx context.Context, txHash []byte, index uint32, output *types.TxOutput) error {
	if !types.IsValidHash(txHash) {
		return fmt.Errorf("交易哈希长度非法: %d", len(txHash))
	}
	if output == nil {
		return fmt.Errorf("输出不能为空")
	}
	if err := s.store.Set(ctx, utxoKey(txHash, index), encodeOutput(output)); err != nil {
		return fmt.Errorf("写入UTXO失败: %w", err)
	}
	return nil
}

// SpendOutput 移除已花费输出
func (s *Service) SpendOutput(ctx context.Context, txHash []byte, index uint32) error {
	if err := s.store.Delete(ctx, utxoKey(txHash, index)); err != nil {
		return fmt.Errorf("删除UTXO失败: %w", err)
	}
	if s.logger != nil {
		s.logger.Debugf("UTXO已花费: tx=%s index=%d", hex.EncodeToString(txHash), index)
	}
	return nil
}

// 编译时检查接口实现
var (
	_ persistence.ChainQuery = (*Service)(nil)
	_ persistence.UTXOQuery  = (*Service)(nil)
)
