// Package storage 提供存储模块的fx装配
package storage

import (
	"context"

	"github.com/veryn/v1/internal/core/infrastructure/storage/badger"
	"github.com/veryn/v1/pkg/interfaces/config"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	interfaces "github.com/veryn/v1/pkg/interfaces/infrastructure/storage"
	"go.uber.org/fx"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	Store interfaces.BadgerStore // BadgerDB存储
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 提供存储服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	store, err := badger.New(params.Provider.GetStorage(), params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Store: store}, nil
}

// registerLifecycle 注册存储的生命周期钩子
// 应用关闭时关闭数据库，避免数据损坏
func registerLifecycle(lc fx.Lifecycle, store interfaces.BadgerStore) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})
}
