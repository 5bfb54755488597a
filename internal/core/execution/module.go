// Package execution 提供合约执行模块的fx装配
package execution

import (
	"context"

	"github.com/veryn/v1/pkg/interfaces/config"
	executioniface "github.com/veryn/v1/pkg/interfaces/execution"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	"go.uber.org/fx"
)

// ModuleParams 定义执行模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider config.Provider // 配置提供者
	Logger   log.Logger      // 日志记录器
}

// ModuleOutput 定义执行模块的输出结构
type ModuleOutput struct {
	fx.Out

	Executor executioniface.ContractExecutor // 合约执行器
}

// Module 返回合约执行模块
func Module() fx.Option {
	return fx.Module("execution",
		fx.Provide(ProvideServices),
		fx.Invoke(registerLifecycle),
	)
}

// ProvideServices 提供合约执行服务
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	executor, err := NewExecutor(params.Provider.GetChainID(), params.Logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	return ModuleOutput{Executor: executor}, nil
}

// registerLifecycle 注册执行器的生命周期钩子
func registerLifecycle(lc fx.Lifecycle, executor executioniface.ContractExecutor) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if closer, ok := executor.(*Executor); ok {
				return closer.Close()
			}
			return nil
		},
	})
}
