// Package crypto 提供密码学模块的fx装配
package crypto

import (
	"github.com/veryn/v1/internal/core/infrastructure/crypto/hash"
	crypto "github.com/veryn/v1/pkg/interfaces/infrastructure/crypto"
	"go.uber.org/fx"
)

// ModuleOutput 定义密码学模块的输出结构
type ModuleOutput struct {
	fx.Out

	HashManager crypto.HashManager // 哈希管理器
}

// Module 返回密码学模块
func Module() fx.Option {
	return fx.Module("crypto",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 提供密码学服务
func ProvideServices() ModuleOutput {
	return ModuleOutput{
		HashManager: hash.NewManager(),
	}
}
