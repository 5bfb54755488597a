package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/veryn/v1/configs"
	"github.com/veryn/v1/internal/config"
	"github.com/veryn/v1/internal/core/block/assembler"
	"github.com/veryn/v1/internal/core/chainstate"
	"github.com/veryn/v1/internal/core/execution"
	"github.com/veryn/v1/internal/core/infrastructure/crypto"
	"github.com/veryn/v1/internal/core/infrastructure/event"
	logmod "github.com/veryn/v1/internal/core/infrastructure/log"
	"github.com/veryn/v1/internal/core/infrastructure/storage"
	"github.com/veryn/v1/internal/core/mempool/txpool"
	"github.com/veryn/v1/internal/core/state"
	txcore "github.com/veryn/v1/internal/core/tx"
	"go.uber.org/fx"
)

// GlobalFlags 全局标志
type GlobalFlags struct {
	ConfigPath string // 配置文件路径（空表示使用内置默认配置）
	InMemory   bool   // 强制使用内存存储（调试/演示）
}

var globalFlags GlobalFlags

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "veryn-node",
	Short: "VERYN 区块链节点",
	Long: `VERYN Node - 合约感知的PoW区块链节点

核心能力:
- 交易池准入与挖矿候选选取（费率降序）
- 合约感知的区块模板组装（WASM执行、Gas结算、退款）
- Badger持久化的链状态与合约状态视图

使用方式:
  veryn-node run                       # 内置默认配置启动
  veryn-node run --config node.json    # 指定配置文件
  veryn-node template --miner <地址>   # 一次性组装模板并打印`,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalFlags.ConfigPath, "config", "", "配置文件路径 (JSON, 默认使用内置配置)")
	rootCmd.PersistentFlags().BoolVar(&globalFlags.InMemory, "in-memory", false, "使用内存存储（数据不落盘）")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(templateCmd)
}

// loadUserConfig 按全局标志加载用户配置
func loadUserConfig() (*config.UserConfig, error) {
	var user *config.UserConfig
	var err error

	if globalFlags.ConfigPath != "" {
		data, readErr := os.ReadFile(globalFlags.ConfigPath)
		if readErr != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", readErr)
		}
		user, err = configs.Parse(data)
	} else {
		user, err = configs.LoadDefault()
	}
	if err != nil {
		return nil, err
	}

	if globalFlags.InMemory && user.Storage != nil {
		user.Storage.InMemory = true
	}
	return user, nil
}

// coreModules 组装节点核心fx模块
func coreModules(user *config.UserConfig) fx.Option {
	return fx.Options(
		config.Module(user),
		logmod.Module(),
		storage.Module(),
		crypto.Module(),
		event.Module(),
		state.Module(),
		execution.Module(),
		chainstate.Module(),
		txcore.Module(),
		txpool.Module(),
		assembler.Module(),
	)
}
