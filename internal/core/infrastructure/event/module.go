// Package event 提供事件总线模块的fx装配
package event

import (
	"go.uber.org/fx"
)

// Module 返回事件总线模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(New),
	)
}
