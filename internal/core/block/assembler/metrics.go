// Package assembler 提供区块组装相关的监控指标
package assembler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// templatesAssembledTotal 成功组装的模板总数
	templatesAssembledTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "templates_total",
		Help:      "Total number of successfully assembled block templates",
	})

	// templatesAbortedTotal 中止的组装总数
	templatesAbortedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "templates_aborted_total",
		Help:      "Total number of aborted template assemblies",
	})

	// templateBuildDuration 模板组装耗时（直方图）
	templateBuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "build_duration_seconds",
		Help:      "Duration of block template assembly in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms ~ 4s
	})

	// templateTxCount 模板内交易数（直方图）
	templateTxCount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "template_tx_count",
		Help:      "Number of transactions per assembled template",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// invocationsTotal 合约调用总数（按结果分类）
	invocationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veryn",
			Subsystem: "assembler",
			Name:      "invocations_total",
			Help:      "Total number of contract invocations by outcome",
		},
		[]string{"outcome"}, // success, out_of_gas, other
	)

	// gasUsedTotal 累计Gas消耗
	gasUsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "gas_used_total",
		Help:      "Total gas units consumed by contract invocations",
	})

	// refundAmountTotal 累计退款金额
	refundAmountTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "veryn",
		Subsystem: "assembler",
		Name:      "refund_amount_total",
		Help:      "Total gas refund amount settled to payers",
	})
)

func init() {
	prometheus.MustRegister(
		templatesAssembledTotal,
		templatesAbortedTotal,
		templateBuildDuration,
		templateTxCount,
		invocationsTotal,
		gasUsedTotal,
		refundAmountTotal,
	)
}
