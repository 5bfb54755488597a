// Package txpool 提供交易池模块的fx装配
package txpool

import (
	"github.com/veryn/v1/internal/core/infrastructure/event"
	txcore "github.com/veryn/v1/internal/core/tx"
	"github.com/veryn/v1/pkg/interfaces/config"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	mempooliface "github.com/veryn/v1/pkg/interfaces/mempool"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	"go.uber.org/fx"
)

// ModuleParams 定义交易池模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider       // 配置提供者
	Hasher    *txcore.Hasher        // 交易哈希器
	UTXOQuery persistence.UTXOQuery // UTXO查询
	Bus       *event.Bus            // 事件总线
	Logger    log.Logger            // 日志记录器
}

// ModuleOutput 定义交易池模块的输出结构
type ModuleOutput struct {
	fx.Out

	TxPool mempooliface.TxPool // 交易池
}

// Module 返回交易池模块
func Module() fx.Option {
	return fx.Module("txpool",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供交易池服务
func ProvideServices(params ModuleParams) ModuleOutput {
	return ModuleOutput{
		TxPool: New(params.Provider.GetTxPool(), params.Hasher, params.UTXOQuery, params.Bus, params.Logger),
	}
}
