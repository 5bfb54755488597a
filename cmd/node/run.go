package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mr-tron/base58"
	"github.com/spf13/cobra"
	blockiface "github.com/veryn/v1/pkg/interfaces/block"
	log "github.com/veryn/v1/pkg/interfaces/infrastructure/log"
	"github.com/veryn/v1/pkg/types"
	"go.uber.org/fx"
)

var (
	mineToFlag   string
	intervalFlag time.Duration
)

// runCmd 启动长驻节点
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "启动节点",
	Long: `启动长驻节点进程。

指定 --mine-to 后，节点按固定间隔组装区块模板并输出摘要，
可作为外部矿工的模板来源。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := loadUserConfig()
		if err != nil {
			return err
		}

		var payout []byte
		if mineToFlag != "" {
			payout, err = decodeMinerAddress(mineToFlag)
			if err != nil {
				return err
			}
		}

		app := fx.New(
			coreModules(user),
			fx.NopLogger,
			fx.Invoke(func(lc fx.Lifecycle, asm blockiface.Assembler, logger log.Logger) {
				if payout == nil {
					return
				}
				registerTemplateLoop(lc, asm, logger, payout)
			}),
		)
		app.Run()
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&mineToFlag, "mine-to", "", "矿工收款地址 (Base58)，设置后定期组装模板")
	runCmd.Flags().DurationVar(&intervalFlag, "interval", 10*time.Second, "模板组装间隔")
}

// registerTemplateLoop 注册周期性模板组装循环
func registerTemplateLoop(lc fx.Lifecycle, asm blockiface.Assembler, logger log.Logger, payout []byte) {
	loopCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(done)
				ticker := time.NewTicker(intervalFlag)
				defer ticker.Stop()
				for {
					select {
					case <-loopCtx.Done():
						return
					case <-ticker.C:
						template, err := asm.CreateNewBlock(loopCtx, payout)
						if err != nil {
							logger.Errorf("模板组装失败: %v", err)
							continue
						}
						logger.Infof("模板就绪: height=%d txs=%d fees=%d weight=%d",
							template.Header.Height, template.TxCount,
							template.TotalFees, template.TotalWeight)
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-ctx.Done():
			}
			return nil
		},
	})
}

// decodeMinerAddress 解析Base58矿工地址
func decodeMinerAddress(encoded string) ([]byte, error) {
	addr, err := base58.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("矿工地址不是合法的Base58编码: %w", err)
	}
	if !types.IsValidAddress(addr) {
		return nil, fmt.Errorf("矿工地址长度非法: %d (期望%d字节)", len(addr), types.AddressSize)
	}
	return addr, nil
}
