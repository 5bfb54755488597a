// Package block 提供区块组装服务的公共接口定义
//
// 🧱 **区块模板组装 (Block Template Assembly)**
//
// 本包定义面向节点出块请求路径的组装入口。
// 不引入任何网络协议或CLI；调用方为共识/挖矿控制器。
package block

import (
	"context"

	"github.com/veryn/v1/pkg/types"
)

// Assembler 区块模板组装器接口
type Assembler interface {
	// CreateNewBlock 组装一个新的挖矿区块模板
	//
	// 组装要么返回完全一致的模板，要么整体失败；
	// 绝不返回部分/降级模板。
	//
	// 参数：
	//   - ctx: 上下文对象
	//   - payoutOwner: 激励输出归属地址（20字节矿工地址）
	//
	// 返回：
	//   - *types.BlockTemplate: 区块模板
	//   - error: 组装错误
	CreateNewBlock(ctx context.Context, payoutOwner []byte) (*types.BlockTemplate, error)
}
