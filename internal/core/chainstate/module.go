// Package chainstate 提供链状态模块的fx装配
package chainstate

import (
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	"go.uber.org/fx"
)

// ModuleParams 定义链状态模块的依赖参数
type ModuleParams struct {
	fx.In

	Store  storage.BadgerStore // BadgerDB存储
	Logger log.Logger          // 日志记录器
}

// ModuleOutput 定义链状态模块的输出结构
type ModuleOutput struct {
	fx.Out

	Service    *Service               // 链状态服务（写路径）
	ChainQuery persistence.ChainQuery // 链查询
	UTXOQuery  persistence.UTXOQuery  // UTXO查询
}

// Module 返回链状态模块
func Module() fx.Option {
	return fx.Module("chainstate",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供链状态服务
func ProvideServices(params ModuleParams) ModuleOutput {
	service := New(params.Store, params.Logger)
	return ModuleOutput{
		Service:    service,
		ChainQuery: service,
		UTXOQuery:  service,
	}
}
