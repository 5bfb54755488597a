// Package config 提供配置模块的fx装配
package config

import (
	configiface "github.com/veryn/v1/pkg/interfaces/config"
	"go.uber.org/fx"
)

// Module 返回配置模块
//
// 参数：
//   - user: 用户配置（nil表示默认配置）
func Module(user *UserConfig) fx.Option {
	return fx.Module("config",
		fx.Provide(func() (configiface.Provider, error) {
			return NewProvider(user)
		}),
	)
}
