// Package config 提供VERYN系统的配置装配实现
//
// ⚙️ **配置提供者实现 (Configuration Provider Implementation)**
//
// 🎯 **核心职责**：
// - 聚合各模块配置节，实现 pkg/interfaces/config.Provider
// - 应用默认值并做启动期校验
//
// 💡 **设计理念**：
// - 模块只见自己的配置节，不耦合加载路径
// - 非法配置在装配期失败，而不是运行期踩坑
package config

import (
	"fmt"

	assemblercfg "github.com/veryn/v1/internal/config/assembler"
	logcfg "github.com/veryn/v1/internal/config/log"
	storagecfg "github.com/veryn/v1/internal/config/storage"
	txpoolcfg "github.com/veryn/v1/internal/config/txpool"
	configiface "github.com/veryn/v1/pkg/interfaces/config"
)

// UserConfig 用户配置（来自配置文件/命令行）
type UserConfig struct {
	ChainID   uint64              `json:"chain_id"`
	Log       *logcfg.Options     `json:"log"`
	Storage   *storagecfg.Options `json:"storage"`
	TxPool    *txpoolcfg.Options  `json:"txpool"`
	Assembler *assemblercfg.Options `json:"assembler"`
}

// Provider 配置提供者实现
type Provider struct {
	chainID   uint64
	log       *logcfg.Options
	storage   *storagecfg.Options
	txpool    *txpoolcfg.Options
	assembler *assemblercfg.Options
}

// NewProvider 创建配置提供者
//
// 参数：
//   - user: 用户配置（nil表示全部使用默认值，链ID默认为1）
//
// 返回：
//   - *Provider: 配置提供者
//   - error: 校验错误
func NewProvider(user *UserConfig) (*Provider, error) {
	p := &Provider{
		chainID:   1,
		log:       logcfg.New(nil),
		storage:   storagecfg.New(nil),
		txpool:    txpoolcfg.New(nil),
		assembler: assemblercfg.New(nil),
	}

	if user != nil {
		if user.ChainID > 0 {
			p.chainID = user.ChainID
		}
		p.log = logcfg.New(user.Log)
		p.storage = storagecfg.New(user.Storage)
		p.txpool = txpoolcfg.New(user.TxPool)
		p.assembler = assemblercfg.New(user.Assembler)
	}

	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	return p, nil
}

// validate 启动期配置校验
func (p *Provider) validate() error {
	if p.chainID == 0 {
		return fmt.Errorf("链ID不能为0")
	}
	if p.assembler.BlockVersion == 0 {
		return fmt.Errorf("区块版本不能为0")
	}
	if p.txpool.MiningMaxEntries <= 0 {
		return fmt.Errorf("挖矿选取条目上限必须为正: %d", p.txpool.MiningMaxEntries)
	}
	return nil
}

// GetChainID 获取链标识
func (p *Provider) GetChainID() uint64 { return p.chainID }

// GetLog 获取日志配置
func (p *Provider) GetLog() *logcfg.Options { return p.log }

// GetStorage 获取存储配置
func (p *Provider) GetStorage() *storagecfg.Options { return p.storage }

// GetTxPool 获取交易池配置
func (p *Provider) GetTxPool() *txpoolcfg.Options { return p.txpool }

// GetAssembler 获取区块组装配置
func (p *Provider) GetAssembler() *assemblercfg.Options { return p.assembler }

// 编译时检查接口实现
var _ configiface.Provider = (*Provider)(nil)
