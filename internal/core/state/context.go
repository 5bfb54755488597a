// Package state 提供合约状态库的具体实现
package state

import (
	"context"
	"encoding/binary"
	"fmt"

	stateiface "github.com/veryn/v1/pkg/interfaces/state"
)

// 上下文生命周期标签
type contextState int32

const (
	ctxActive contextState = iota
	ctxCommitted
	ctxRolledBack
)

// String 返回生命周期标签的可读表示
func (s contextState) String() string {
	switch s {
	case ctxActive:
		return "active"
	case ctxCommitted:
		return "committed"
	case ctxRolledBack:
		return "rolledback"
	default:
		return "unknown"
	}
}

// trackingContext 跟踪上下文实现
//
// 💡 **写集缓冲**：
// 写操作只进入writes/deletes，读操作按
// 本级写集 → 父级写集 → 底层存储 的顺序穿透。
//
// ⚠️ 嵌套深度固定为2：repo非nil表示外层上下文，
// parent非nil表示调用级嵌套上下文，二者互斥。
type trackingContext struct {
	repo   *Repository      // 外层上下文持有状态库（嵌套上下文为nil）
	parent *trackingContext // 嵌套上下文持有父级（外层上下文为nil）

	writes  map[string][]byte   // 键 → 新值
	deletes map[string]struct{} // 待删除键集合

	nested *trackingContext // 单槽：当前未决的嵌套上下文
	state  contextState     // 生命周期标签
}

// newOuterContext 创建区块级外层上下文
func newOuterContext(repo *Repository) *trackingContext {
	return &trackingContext{
		repo:    repo,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
		state:   ctxActive,
	}
}

// OpenNested 打开调用级嵌套上下文（单槽）
func (c *trackingContext) OpenNested() (stateiface.TrackingContext, error) {
	if c.state != ctxActive {
		return nil, fmt.Errorf("上下文已终结（%s），无法打开嵌套上下文", c.state)
	}
	if c.parent != nil {
		return nil, fmt.Errorf("嵌套上下文不允许再嵌套")
	}
	if c.nested != nil && c.nested.state == ctxActive {
		return nil, fmt.Errorf("存在未决的嵌套上下文")
	}

	nested := &trackingContext{
		parent:  c,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
		state:   ctxActive,
	}
	c.nested = nested
	return nested, nil
}

// Commit 提交本上下文
//
// 嵌套上下文：写集合并进外层上下文；
// 外层上下文：写集原子落库并重算根摘要。
func (c *trackingContext) Commit() error {
	if c.state != ctxActive {
		return fmt.Errorf("非法提交：上下文状态为%s", c.state)
	}

	if c.parent != nil {
		// 嵌套上下文：合并到父级写集
		for key, value := range c.writes {
			c.parent.writes[key] = value
			delete(c.parent.deletes, key)
		}
		for key := range c.deletes {
			delete(c.parent.writes, key)
			c.parent.deletes[key] = struct{}{}
		}
		c.state = ctxCommitted
		c.parent.nested = nil
		return nil
	}

	// 外层上下文：嵌套上下文未决时拒绝提交
	if c.nested != nil && c.nested.state == ctxActive {
		return fmt.Errorf("存在未决的嵌套上下文，外层上下文无法提交")
	}

	if err := c.repo.commitOuter(c); err != nil {
		return err
	}
	c.state = ctxCommitted
	return nil
}

// Rollback 回滚本上下文（丢弃全部缓冲写）
func (c *trackingContext) Rollback() error {
	if c.state != ctxActive {
		return fmt.Errorf("非法回滚：上下文状态为%s", c.state)
	}

	// 外层回滚时连带丢弃未决的嵌套上下文
	if c.nested != nil && c.nested.state == ctxActive {
		c.nested.state = ctxRolledBack
	}
	c.nested = nil
	c.writes = nil
	c.deletes = nil
	c.state = ctxRolledBack

	if c.parent != nil {
		c.parent.nested = nil
	} else {
		c.repo.releaseOuter(c)
	}
	return nil
}

// lookup 按 本级写集 → 父级写集 → 底层存储 顺序读取
func (c *trackingContext) lookup(ctx context.Context, key string) ([]byte, error) {
	if c.state != ctxActive {
		return nil, fmt.Errorf("上下文已终结（%s），无法读取", c.state)
	}

	cur := c
	for cur != nil {
		if _, deleted := cur.deletes[key]; deleted {
			return nil, nil
		}
		if value, ok := cur.writes[key]; ok {
			return value, nil
		}
		cur = cur.parent
	}

	return c.root().repo.store.Get(ctx, []byte(key))
}

// put 写入本级写集
func (c *trackingContext) put(key string, value []byte) error {
	if c.state != ctxActive {
		return fmt.Errorf("上下文已终结（%s），无法写入", c.state)
	}
	c.writes[key] = value
	delete(c.deletes, key)
	return nil
}

// del 在本级写集中记录删除
func (c *trackingContext) del(key string) error {
	if c.state != ctxActive {
		return fmt.Errorf("上下文已终结（%s），无法删除", c.state)
	}
	delete(c.writes, key)
	c.deletes[key] = struct{}{}
	return nil
}

// root 返回外层上下文
func (c *trackingContext) root() *trackingContext {
	cur := c
	for cur.parent != nil {
		cur = cur.parent
	}
	return cur
}

// GetCode 读取合约代码
func (c *trackingContext) GetCode(ctx context.Context, addr []byte) ([]byte, error) {
	return c.lookup(ctx, codeKey(addr))
}

// SetCode 写入合约代码
func (c *trackingContext) SetCode(ctx context.Context, addr []byte, code []byte) error {
	return c.put(codeKey(addr), code)
}

// GetStorage 读取合约存储槽
func (c *trackingContext) GetStorage(ctx context.Context, addr []byte, key []byte) ([]byte, error) {
	return c.lookup(ctx, storageKey(addr, key))
}

// SetStorage 写入合约存储槽
func (c *trackingContext) SetStorage(ctx context.Context, addr []byte, key, value []byte) error {
	return c.put(storageKey(addr, key), value)
}

// DeleteStorage 删除合约存储槽
func (c *trackingContext) DeleteStorage(ctx context.Context, addr []byte, key []byte) error {
	return c.del(storageKey(addr, key))
}

// GetBalance 读取合约账户余额
func (c *trackingContext) GetBalance(ctx context.Context, addr []byte) (uint64, error) {
	raw, err := c.lookup(ctx, balanceKey(addr))
	if err != nil {
		return 0, err
	}
	return decodeBalance(raw), nil
}

// AddBalance 增加合约账户余额
func (c *trackingContext) AddBalance(ctx context.Context, addr []byte, amount uint64) error {
	balance, err := c.GetBalance(ctx, addr)
	if err != nil {
		return err
	}
	newBalance := balance + amount
	if newBalance < balance {
		return fmt.Errorf("余额溢出: balance=%d amount=%d", balance, amount)
	}
	return c.put(balanceKey(addr), encodeBalance(newBalance))
}

// SubBalance 减少合约账户余额（余额不足返回错误）
func (c *trackingContext) SubBalance(ctx context.Context, addr []byte, amount uint64) error {
	balance, err := c.GetBalance(ctx, addr)
	if err != nil {
		return err
	}
	if balance < amount {
		return fmt.Errorf("余额不足: balance=%d amount=%d", balance, amount)
	}
	return c.put(balanceKey(addr), encodeBalance(balance-amount))
}

// encodeBalance 余额编码为8字节大端序
func encodeBalance(amount uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, amount)
	return buf
}

// decodeBalance 解码余额（nil/非法长度视为0）
func decodeBalance(raw []byte) uint64 {
	if len(raw) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(raw)
}

// 编译时检查接口实现
var _ stateiface.TrackingContext = (*trackingContext)(nil)
