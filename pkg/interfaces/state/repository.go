// Package state 提供合约状态库的公共接口定义
//
// 🗄️ **合约状态库 (Contract State Repository)**
//
// 本包定义 VERYN 系统的合约状态存储接口：
// (地址 → 代码/存储/余额) 的版本化键值库，支持嵌套跟踪上下文
// 与根摘要计算。
//
// 🎯 **核心职责**：
// - 区块级外层上下文：一次组装调用恰好一个，终结时一次性提交
// - 调用级嵌套上下文：一次合约调用一个，成功合并/失败丢弃
// - 根摘要：提交后的32字节状态承诺，写入区块头
//
// ⚠️ **核心约束**：
// - 嵌套深度固定为2（外层区块上下文 + 单槽调用上下文）
// - 同一时刻至多一个未决嵌套上下文（串行组装的正确性要求）
// - 状态库在一次组装调用期间被独占，外层提交前不允许并发修改
package state

import "context"

// Repository 合约状态库接口
type Repository interface {
	// Begin 打开区块级外层跟踪上下文
	//
	// 一次组装调用恰好打开一个外层上下文；上一个外层上下文
	// 尚未提交或回滚时再次调用返回错误。
	//
	// 参数：
	//   - ctx: 上下文对象
	//
	// 返回：
	//   - TrackingContext: 外层跟踪上下文
	//   - error: 打开错误
	Begin(ctx context.Context) (TrackingContext, error)

	// Root 返回已提交状态的根摘要（32字节）
	//
	// 区块头的状态承诺必须严格在外层上下文最终提交之后读取。
	Root(ctx context.Context) ([]byte, error)
}

// TrackingContext 嵌套跟踪上下文
//
// 🎯 **缓冲写集的状态快照**：
// 写操作只进入本上下文的写集；Commit 将写集合并到父级
// （外层上下文则落库并重算根摘要），Rollback 无条件丢弃。
//
// 生命周期为带标签的状态机（活动/已提交/已回滚）：
// 重复提交、回滚后提交等非法转移直接返回错误。
type TrackingContext interface {
	// OpenNested 打开调用级嵌套上下文（单槽）
	//
	// 已有未决嵌套上下文时返回错误；嵌套上下文自身不允许再嵌套。
	OpenNested() (TrackingContext, error)

	// Commit 提交本上下文
	//
	// 嵌套上下文：写集合并进外层上下文；
	// 外层上下文：写集原子落库并重算根摘要。
	Commit() error

	// Rollback 回滚本上下文（丢弃全部缓冲写）
	Rollback() error

	// GetCode 读取合约代码
	GetCode(ctx context.Context, addr []byte) ([]byte, error)

	// SetCode 写入合约代码
	SetCode(ctx context.Context, addr []byte, code []byte) error

	// GetStorage 读取合约存储槽
	GetStorage(ctx context.Context, addr []byte, key []byte) ([]byte, error)

	// SetStorage 写入合约存储槽
	SetStorage(ctx context.Context, addr []byte, key, value []byte) error

	// DeleteStorage 删除合约存储槽
	DeleteStorage(ctx context.Context, addr []byte, key []byte) error

	// GetBalance 读取合约账户余额
	GetBalance(ctx context.Context, addr []byte) (uint64, error)

	// AddBalance 增加合约账户余额
	AddBalance(ctx context.Context, addr []byte, amount uint64) error

	// SubBalance 减少合约账户余额（余额不足返回错误）
	SubBalance(ctx context.Context, addr []byte, amount uint64) error
}
