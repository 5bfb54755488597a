// Package state 提供合约状态库的具体实现
//
// 🗄️ **合约状态库实现 (Contract State Repository Implementation)**
//
// 🎯 **核心职责**：
// - 将合约代码、存储槽、余额持久化到BadgerDB
// - 提供区块级外层上下文与调用级嵌套上下文（深度固定为2）
// - 外层提交时原子落库并重算SHA3-256根摘要
//
// 💡 **键空间布局**：
//   - cs:c:<addr>        合约代码
//   - cs:s:<addr>:<key>  合约存储槽
//   - cs:b:<addr>        合约账户余额（8字节大端序）
package state

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"

	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
)

// 状态键前缀
const (
	statePrefix   = "cs:"
	codePrefix    = "cs:c:"
	storagePrefix = "cs:s:"
	balancePrefix = "cs:b:"
)

// codeKey 合约代码键
func codeKey(addr []byte) string {
	return codePrefix + string(addr)
}

// storageKey 合约存储槽键
func storageKey(addr []byte, key []byte) string {
	return storagePrefix + string(addr) + ":" + string(key)
}

// balanceKey 合约账户余额键
func balanceKey(addr []byte) string {
	return balancePrefix + string(addr)
}

// Repository 合约状态库实现
type Repository struct {
	store  storage.BadgerStore
	hasher crypto.HashManager
	logger log.Logger

	mu    sync.Mutex
	outer *trackingContext // 当前未决的外层上下文（至多一个）
	root  []byte           // 最近一次提交后的根摘要
}

// NewRepository 创建合约状态库
//
// 参数：
//   - store: BadgerDB存储
//   - hasher: 哈希管理器
//   - logger: 日志记录器（允许为nil）
func NewRepository(store storage.BadgerStore, hasher crypto.HashManager, logger log.Logger) *Repository {
	return &Repository{
		store:  store,
		hasher: hasher,
		logger: logger,
	}
}

// Begin 打开区块级外层跟踪上下文
func (r *Repository) Begin(ctx context.Context) (stateiface.TrackingContext, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outer != nil && r.outer.state == ctxActive {
		return nil, fmt.Errorf("上一个外层上下文尚未终结，拒绝重复打开")
	}

	outer := newOuterContext(r)
	r.outer = outer
	return outer, nil
}

// Root 返回已提交状态的根摘要（32字节）
func (r *Repository) Root(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	cached := r.root
	r.mu.Unlock()

	if cached != nil {
		out := make([]byte, len(cached))
		copy(out, cached)
		return out, nil
	}

	// 尚无缓存（进程刚启动）：全量重算
	digest, err := r.computeRoot(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.root = digest
	r.mu.Unlock()

	out := make([]byte, len(digest))
	copy(out, digest)
	return out, nil
}

// commitOuter 外层上下文提交：写集原子落库并重算根摘要
func (r *Repository) commitOuter(outer *trackingContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.outer != outer {
		return fmt.Errorf("外层上下文已失效，拒绝提交")
	}

	ctx := context.Background()

	if len(outer.writes) > 0 || len(outer.deletes) > 0 {
		deletes := make([][]byte, 0, len(outer.deletes))
		for key := range outer.deletes {
			deletes = append(deletes, []byte(key))
		}
		if err := r.store.WriteBatch(ctx, outer.writes, deletes); err != nil {
			return fmt.Errorf("状态写集落库失败: %w", err)
		}
	}

	digest, err := r.computeRoot(ctx)
	if err != nil {
		return fmt.Errorf("根摘要重算失败: %w", err)
	}
	r.root = digest
	r.outer = nil

	if r.logger != nil {
		r.logger.Debugf("状态提交完成: writes=%d deletes=%d root=%s",
			len(outer.writes), len(outer.deletes), hex.EncodeToString(digest))
	}
	return nil
}

// releaseOuter 外层上下文回滚后释放占位
func (r *Repository) releaseOuter(outer *trackingContext) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outer == outer {
		r.outer = nil
	}
}

// computeRoot 遍历全部已提交状态键值对计算SHA3-256根摘要
//
// BadgerDB前缀扫描按键字节序升序返回，摘要对同一状态集合
// 是确定性的。每个键值对按 len(key)|key|len(value)|value 吸收。
func (r *Repository) computeRoot(ctx context.Context) ([]byte, error) {
	var buf []byte
	lenBuf := make([]byte, 4)

	err := r.store.PrefixScan(ctx, []byte(statePrefix), func(key, value []byte) bool {
		binary.BigEndian.PutUint32(lenBuf, uint32(len(key)))
		buf = append(buf, lenBuf...)
		buf = append(buf, key...)
		binary.BigEndian.PutUint32(lenBuf, uint32(len(value)))
		buf = append(buf, lenBuf...)
		buf = append(buf, value...)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("状态前缀扫描失败: %w", err)
	}

	return r.hasher.SHA3_256(buf), nil
}

// 编译时检查接口实现
var _ stateiface.Repository = (*Repository)(nil)
