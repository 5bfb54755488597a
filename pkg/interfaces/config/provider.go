// Package config 提供VERYN系统的配置提供者接口定义
//
// ⚙️ **配置提供者 (Configuration Provider)**
//
// 各模块通过 Provider 读取自己的配置节，避免直接耦合
// 配置文件格式与加载路径。
package config

import (
	assemblercfg "github.com/veryn/v1/internal/config/assembler"
	logcfg "github.com/veryn/v1/internal/config/log"
	storagecfg "github.com/veryn/v1/internal/config/storage"
	txpoolcfg "github.com/veryn/v1/internal/config/txpool"
)

// Provider 配置提供者接口
type Provider interface {
	// GetChainID 获取链标识（0为非法配置）
	GetChainID() uint64

	// GetLog 获取日志配置
	GetLog() *logcfg.Options

	// GetStorage 获取存储配置
	GetStorage() *storagecfg.Options

	// GetTxPool 获取交易池配置
	GetTxPool() *txpoolcfg.Options

	// GetAssembler 获取区块组装配置
	GetAssembler() *assemblercfg.Options
}
