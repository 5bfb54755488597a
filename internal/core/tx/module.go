// Package tx 提供交易域模块的fx装配
package tx

import (
	"github.com/veryn/v1/pkg/interfaces/config"
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"go.uber.org/fx"
)

// ModuleParams 定义交易域模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider    config.Provider       // 配置提供者
	HashManager crypto.HashManager    // 哈希管理器
	UTXOQuery   persistence.UTXOQuery // UTXO查询
	Logger      log.Logger            // 日志记录器
}

// ModuleOutput 定义交易域模块的输出结构
type ModuleOutput struct {
	fx.Out

	Hasher     *Hasher             // 交易哈希器
	Codec      txiface.CarrierCodec // 合约载荷编解码器
	Resolver   txiface.SenderResolver // 付款方解析器
	FeeManager txiface.FeeManager  // 手续费管理器
}

// Module 返回交易域模块
func Module() fx.Option {
	return fx.Module("tx",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供交易域服务
func ProvideServices(params ModuleParams) ModuleOutput {
	hasher := NewHasher(params.HashManager)
	return ModuleOutput{
		Hasher:     hasher,
		Codec:      NewCodec(),
		Resolver:   NewResolver(params.UTXOQuery, hasher, params.HashManager, params.Logger),
		FeeManager: NewFeeManager(params.Provider.GetAssembler(), params.Logger),
	}
}
