// Package txpool 提供交易池模块的配置定义
package txpool

// Options 交易池配置选项
type Options struct {
	// MaxPoolSize 池内交易数量上限
	MaxPoolSize int `json:"max_pool_size"`

	// MiningMaxEntries 单次挖矿选取条目数上限
	MiningMaxEntries int `json:"mining_max_entries"`

	// MiningMaxWeight 单次挖矿选取累积权重上限
	MiningMaxWeight uint64 `json:"mining_max_weight"`

	// MiningMaxSigOpCost 单次挖矿选取累积签名成本上限
	MiningMaxSigOpCost uint64 `json:"mining_max_sigop_cost"`
}

// New 创建交易池配置（nil返回默认配置）
func New(userOptions *Options) *Options {
	defaults := &Options{
		MaxPoolSize:        50_000,
		MiningMaxEntries:   2_000,
		MiningMaxWeight:    4_000_000,
		MiningMaxSigOpCost: 80_000,
	}
	if userOptions == nil {
		return defaults
	}
	if userOptions.MaxPoolSize > 0 {
		defaults.MaxPoolSize = userOptions.MaxPoolSize
	}
	if userOptions.MiningMaxEntries > 0 {
		defaults.MiningMaxEntries = userOptions.MiningMaxEntries
	}
	if userOptions.MiningMaxWeight > 0 {
		defaults.MiningMaxWeight = userOptions.MiningMaxWeight
	}
	if userOptions.MiningMaxSigOpCost > 0 {
		defaults.MiningMaxSigOpCost = userOptions.MiningMaxSigOpCost
	}
	return defaults
}
