// Package assembler 提供区块组装模块的配置定义
package assembler

// Options 区块组装配置选项
type Options struct {
	// BlockVersion 新区块版本号
	BlockVersion uint32 `json:"block_version"`

	// SizeAccounting 是否启用模板字节大小统计
	SizeAccounting bool `json:"size_accounting"`

	// BlockRewardBase 基础区块奖励（最小单位）
	BlockRewardBase uint64 `json:"block_reward_base"`

	// RewardHalvingInterval 奖励减半间隔（区块数，0表示不减半）
	RewardHalvingInterval uint64 `json:"reward_halving_interval"`
}

// New 创建区块组装配置（nil返回默认配置）
func New(userOptions *Options) *Options {
	defaults := &Options{
		BlockVersion:          1,
		SizeAccounting:        true,
		BlockRewardBase:       5_000_000_000, // 5 VRN
		RewardHalvingInterval: 0,
	}
	if userOptions == nil {
		return defaults
	}
	if userOptions.BlockVersion > 0 {
		defaults.BlockVersion = userOptions.BlockVersion
	}
	defaults.SizeAccounting = userOptions.SizeAccounting
	if userOptions.BlockRewardBase > 0 {
		defaults.BlockRewardBase = userOptions.BlockRewardBase
	}
	if userOptions.RewardHalvingInterval > 0 {
		defaults.RewardHalvingInterval = userOptions.RewardHalvingInterval
	}
	return defaults
}
