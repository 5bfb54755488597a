// Package state 提供合约状态库模块的fx装配
package state

import (
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	storage "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	"go.uber.org/fx"
)

// ModuleParams 定义状态库模块的依赖参数
type ModuleParams struct {
	fx.In

	Store  storage.BadgerStore // BadgerDB存储
	Hasher crypto.HashManager  // 哈希管理器
	Logger log.Logger          // 日志记录器
}

// ModuleOutput 定义状态库模块的输出结构
type ModuleOutput struct {
	fx.Out

	Repository stateiface.Repository // 合约状态库
}

// Module 返回状态库模块
func Module() fx.Option {
	return fx.Module("state",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供状态库服务
func ProvideServices(params ModuleParams) ModuleOutput {
	return ModuleOutput{
		Repository: NewRepository(params.Store, params.Hasher, params.Logger),
	}
}
