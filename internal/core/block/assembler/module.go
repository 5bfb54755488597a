// Package assembler 提供区块组装模块的fx装配
package assembler

import (
	"github.com/veryn/v1/internal/core/block/merkle"
	"github.com/veryn/v1/internal/core/infrastructure/event"
	txcore "github.com/veryn/v1/internal/core/tx"
	blockiface "github.com/veryn/v1/pkg/interfaces/block"
	"github.com/veryn/v1/pkg/interfaces/config"
	executioniface "github.com/veryn/v1/pkg/interfaces/execution"
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	mempooliface "github.com/veryn/v1/pkg/interfaces/mempool"
	"github.com/veryn/v1/pkg/interfaces/persistence"
	stateiface "github.com/veryn/v1/pkg/interfaces/state"
	txiface "github.com/veryn/v1/pkg/interfaces/tx"
	"go.uber.org/fx"
)

// ModuleParams 定义区块组装模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider    config.Provider                 // 配置提供者
	ChainQuery  persistence.ChainQuery          // 链查询
	TxPool      mempooliface.TxPool             // 交易池
	Codec       txiface.CarrierCodec            // 合约载荷编解码器
	Resolver    txiface.SenderResolver          // 付款方解析器
	FeeManager  txiface.FeeManager              // 手续费管理器
	Repository  stateiface.Repository           // 合约状态库
	Executor    executioniface.ContractExecutor // 合约执行器
	Hasher      *txcore.Hasher                  // 交易哈希器
	HashManager crypto.HashManager              // 哈希管理器
	Bus         *event.Bus                      // 事件总线
	Logger      log.Logger                      // 日志记录器
}

// ModuleOutput 定义区块组装模块的输出结构
type ModuleOutput struct {
	fx.Out

	Assembler blockiface.Assembler // 区块模板组装器
}

// Module 返回区块组装模块
func Module() fx.Option {
	return fx.Module("assembler",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供区块组装服务（合约感知挂点）
func ProvideServices(params ModuleParams) ModuleOutput {
	hooks := NewContractHooks(
		params.Codec,
		params.Resolver,
		params.Repository,
		params.Executor,
		params.FeeManager,
		params.Hasher,
		params.Logger,
	)
	service := NewService(
		params.Provider.GetChainID(),
		params.Provider.GetAssembler(),
		params.ChainQuery,
		params.TxPool,
		params.FeeManager,
		params.Hasher,
		merkle.NewCalculator(params.HashManager),
		hooks,
		params.Bus,
		params.Logger,
	)
	return ModuleOutput{Assembler: service}
}
