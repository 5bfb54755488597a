// 基于asaskevich/EventBus的事件总线封装
//
// 🎯 **核心职责**：
// - 为交易池、区块组装等模块提供进程内发布/订阅能力
// - 统一事件主题命名，避免各模块散落魔法字符串
package event

import (
	evbus "github.com/asaskevich/EventBus"
)

// 事件主题定义
const (
	// TopicTxAccepted 交易进入交易池
	// 载荷：交易哈希（[]byte）
	TopicTxAccepted = "txpool:accepted"

	// TopicTxRemoved 交易离开交易池
	// 载荷：交易哈希（[]byte）
	TopicTxRemoved = "txpool:removed"

	// TopicTemplateAssembled 区块模板组装完成
	// 载荷：*types.BlockTemplate
	TopicTemplateAssembled = "assembler:template"
)

// Bus 进程内事件总线
type Bus struct {
	bus evbus.Bus
}

// New 创建事件总线实例
func New() *Bus {
	return &Bus{bus: evbus.New()}
}

// Subscribe 订阅主题
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	return b.bus.Subscribe(topic, fn)
}

// SubscribeAsync 异步订阅主题（handler在独立goroutine中执行）
func (b *Bus) SubscribeAsync(topic string, fn interface{}) error {
	return b.bus.SubscribeAsync(topic, fn, false)
}

// Unsubscribe 取消订阅
func (b *Bus) Unsubscribe(topic string, fn interface{}) error {
	return b.bus.Unsubscribe(topic, fn)
}

// Publish 发布事件
// 同步订阅者在当前goroutine中执行，发布方不应持有长锁
func (b *Bus) Publish(topic string, args ...interface{}) {
	b.bus.Publish(topic, args...)
}

// WaitAsync 等待所有异步handler完成（测试/关闭时使用）
func (b *Bus) WaitAsync() {
	b.bus.WaitAsync()
}
