// Package storage 提供存储模块的配置定义
package storage

// Options 存储配置选项
type Options struct {
	// DataDir BadgerDB数据目录
	DataDir string `json:"data_dir"`

	// InMemory 是否使用纯内存模式（测试/工具场景）
	InMemory bool `json:"in_memory"`

	// SyncWrites 是否同步写盘（生产环境建议开启）
	SyncWrites bool `json:"sync_writes"`
}

// New 创建存储配置（nil返回默认配置）
func New(userOptions *Options) *Options {
	defaults := &Options{
		DataDir:    "data/badger",
		InMemory:   false,
		SyncWrites: true,
	}
	if userOptions == nil {
		return defaults
	}
	if userOptions.DataDir != "" {
		defaults.DataDir = userOptions.DataDir
	}
	defaults.InMemory = userOptions.InMemory
	defaults.SyncWrites = userOptions.SyncWrites
	return defaults
}
