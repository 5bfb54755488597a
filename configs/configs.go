// Package configs 提供VERYN节点的内置默认配置
//
// 📦 **内置配置 (Embedded Configuration)**
//
// 默认配置随二进制一起分发，节点在没有 --config 参数时
// 直接使用内置配置启动（内存友好的单机默认值）。
package configs

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/veryn/v1/internal/config"
)

//go:embed default.json
var embedded embed.FS

// LoadDefault 加载内置默认配置
func LoadDefault() (*config.UserConfig, error) {
	data, err := embedded.ReadFile("default.json")
	if err != nil {
		return nil, fmt.Errorf("读取内置配置失败: %w", err)
	}
	return parse(data)
}

// Parse 解析JSON格式的用户配置
func Parse(data []byte) (*config.UserConfig, error) {
	return parse(data)
}

func parse(data []byte) (*config.UserConfig, error) {
	var user config.UserConfig
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &user, nil
}
