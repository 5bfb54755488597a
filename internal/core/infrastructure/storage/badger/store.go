// Package badger 提供基于BadgerDB的存储实现
package badger

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v3"
	storagecfg "github.com/veryn/v1/internal/config/storage"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	interfaces "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
)

// Store 实现BadgerStore接口
type Store struct {
	db     *badgerdb.DB
	logger log.Logger

	// 避免 Close 过程中仍被写入触发 Badger 内部断言退出
	closing int32
}

// New 创建新的BadgerStore实例
//
// 参数：
//   - options: 存储配置
//   - logger: 日志记录器（允许为nil）
//
// 返回：
//   - interfaces.BadgerStore: 存储实例
//   - error: 打开数据库错误
func New(options *storagecfg.Options, logger log.Logger) (interfaces.BadgerStore, error) {
	if options == nil {
		options = storagecfg.New(nil)
	}

	var opts badgerdb.Options
	if options.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		dataDir := options.DataDir
		if err := os.MkdirAll(dataDir, 0o700); err != nil {
			return nil, fmt.Errorf("创建BadgerDB数据目录失败: %w", err)
		}
		opts = badgerdb.DefaultOptions(dataDir)
		opts.SyncWrites = options.SyncWrites
	}

	// 降低缓存占用，该库默认值针对大内存服务器
	opts.BlockCacheSize = 64 << 20
	opts.IndexCacheSize = 64 << 20
	opts.NumMemtables = 2
	opts.Logger = nil

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("打开BadgerDB失败: %w", err)
	}

	if logger != nil {
		logger.Infof("BadgerDB存储初始化完成: dataDir=%s inMemory=%v", options.DataDir, options.InMemory)
	}

	return &Store{
		db:     db,
		logger: logger,
	}, nil
}

// Get 获取指定键的值
// 键不存在时返回nil值和nil错误
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if err == badgerdb.ErrKeyNotFound {
				return nil
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("复制键值失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set 设置键值对
func (s *Store) Set(ctx context.Context, key, value []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Set(key, value); err != nil {
			return fmt.Errorf("设置键值失败: %w", err)
		}
		return nil
	})
}

// Delete 删除指定键的值
// 键不存在时不返回错误
func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("删除键值失败: %w", err)
		}
		return nil
	})
}

// Exists 检查键是否存在
func (s *Store) Exists(ctx context.Context, key []byte) (bool, error) {
	if err := s.checkOpen(); err != nil {
		return false, err
	}

	exists := false
	err := s.db.View(func(txn *badgerdb.Txn) error {
		_, err := txn.Get(key)
		if err == badgerdb.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return fmt.Errorf("检查键存在性失败: %w", err)
		}
		exists = true
		return nil
	})
	return exists, err
}

// PrefixScan 按前缀遍历键值对（按键字节序升序）
func (s *Store) PrefixScan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.View(func(txn *badgerdb.Txn) error {
		iterOpts := badgerdb.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// 上下文取消时提前终止，避免长扫描阻塞关闭流程
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			key := item.KeyCopy(nil)
			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("复制键值失败: %w", err)
			}
			if !fn(key, value) {
				return nil
			}
		}
		return nil
	})
}

// WriteBatch 原子批量写入
func (s *Store) WriteBatch(ctx context.Context, sets map[string][]byte, deletes [][]byte) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	return s.db.Update(func(txn *badgerdb.Txn) error {
		for key, value := range sets {
			if err := txn.Set([]byte(key), value); err != nil {
				return fmt.Errorf("批量写入设置键值失败: %w", err)
			}
		}
		for _, key := range deletes {
			if err := txn.Delete(key); err != nil {
				return fmt.Errorf("批量写入删除键值失败: %w", err)
			}
		}
		return nil
	})
}

// Close 关闭BadgerDB数据库连接
func (s *Store) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closing, 0, 1) {
		return nil // 已关闭
	}

	if s.logger != nil {
		s.logger.Info("正在关闭BadgerDB存储")
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("关闭BadgerDB失败: %w", err)
	}
	return nil
}

// checkOpen 检查存储是否处于可用状态
func (s *Store) checkOpen() error {
	if atomic.LoadInt32(&s.closing) != 0 {
		return fmt.Errorf("存储已关闭")
	}
	return nil
}

// 编译时检查接口实现
var _ interfaces.BadgerStore = (*Store)(nil)
