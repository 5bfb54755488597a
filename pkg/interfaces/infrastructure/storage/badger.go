// Package storage 提供VERYN系统的BadgerDB存储接口定义
//
// 💾 **BadgerDB存储服务 (BadgerDB Storage Service)**
//
// 本文件定义了VERYN区块链系统的BadgerDB存储接口，专注于：
// - 高性能存储：BadgerDB的原生高性能键值存储服务
// - 事务支持：支持原子批量写入
// - 前缀扫描：状态根摘要重算依赖确定性的全量前缀遍历
//
// 🏧 **设计原则**
// - 性能优先：充分利用BadgerDB的性能优势
// - 数据安全：支持事务和数据完整性保障
// - 易用性：简洁的接口设计和错误处理
package storage

import "context"

// BadgerStore 定义了键值存储的应用接口
//
// 提供简单易用的键值存储操作，被合约状态库、链状态等模块使用。
type BadgerStore interface {
	// Get 获取指定键的值
	// 如果键不存在，返回nil值和nil错误
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set 设置键值对
	// 如果键已存在，将覆盖原有值
	Set(ctx context.Context, key, value []byte) error

	// Delete 删除指定键的值
	// 如果键不存在，不会返回错误
	Delete(ctx context.Context, key []byte) error

	// Exists 检查键是否存在
	Exists(ctx context.Context, key []byte) (bool, error)

	// PrefixScan 按前缀遍历键值对（按键字节序升序）
	//
	// 参数：
	//   - ctx: 上下文
	//   - prefix: 键前缀
	//   - fn: 回调，返回false终止遍历
	PrefixScan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// WriteBatch 原子批量写入（sets按序写入，deletes按序删除）
	WriteBatch(ctx context.Context, sets map[string][]byte, deletes [][]byte) error

	// Close 关闭BadgerDB数据库连接
	// 应用关闭时必须调用此方法以避免数据损坏
	Close() error
}
