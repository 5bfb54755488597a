// Package log 提供日志模块的配置定义
package log

// Options 日志配置选项
// 专注于基础设施核心功能的简化配置
type Options struct {
	// === 基础配置 ===
	Level     string `json:"level"`      // 日志级别 (debug, info, warn, error, fatal)
	ToConsole bool   `json:"to_console"` // 是否输出到控制台
	FilePath  string `json:"file_path"`  // 日志文件路径（空表示仅控制台）

	// === 基础轮转配置 ===
	MaxSize    int  `json:"max_size"`    // 单个日志文件最大大小(MB)
	MaxBackups int  `json:"max_backups"` // 最大备份文件数
	MaxAge     int  `json:"max_age"`     // 日志文件最大保留天数
	Compress   bool `json:"compress"`    // 是否压缩历史日志文件

	// === 调试配置 ===
	EnableCaller bool `json:"enable_caller"` // 是否启用调用者信息
}

// New 创建日志配置（nil返回默认配置）
func New(userOptions *Options) *Options {
	defaults := defaultOptions()
	if userOptions == nil {
		return defaults
	}

	// 用户配置覆盖默认值（零值字段保留默认）
	if userOptions.Level != "" {
		defaults.Level = userOptions.Level
	}
	defaults.ToConsole = userOptions.ToConsole
	if userOptions.FilePath != "" {
		defaults.FilePath = userOptions.FilePath
	}
	if userOptions.MaxSize > 0 {
		defaults.MaxSize = userOptions.MaxSize
	}
	if userOptions.MaxBackups > 0 {
		defaults.MaxBackups = userOptions.MaxBackups
	}
	if userOptions.MaxAge > 0 {
		defaults.MaxAge = userOptions.MaxAge
	}
	defaults.Compress = userOptions.Compress
	defaults.EnableCaller = userOptions.EnableCaller

	return defaults
}

// defaultOptions 创建默认日志配置
//
// 默认值基于生产环境实践：info级别平衡信息量与性能；
// 100MB轮转避免单文件过大；保留7天满足常规排障窗口。
func defaultOptions() *Options {
	return &Options{
		Level:        "info",
		ToConsole:    true,
		FilePath:     "",
		MaxSize:      100,
		MaxBackups:   10,
		MaxAge:       7,
		Compress:     true,
		EnableCaller: false,
	}
}
