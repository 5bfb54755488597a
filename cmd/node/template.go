package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	blockiface "github.com/veryn/v1/pkg/interfaces/block"
	"github.com/veryn/v1/pkg/types"
	"go.uber.org/fx"
)

var minerFlag string

// templateSummary 模板摘要的输出形态
type templateSummary struct {
	Height       uint64 `json:"height"`
	PreviousHash string `json:"previous_hash"`
	MerkleRoot   string `json:"merkle_root"`
	StateRoot    string `json:"state_root"`
	Timestamp    uint64 `json:"timestamp"`
	Difficulty   uint64 `json:"difficulty"`
	TxCount      uint64 `json:"tx_count"`
	TotalFees    uint64 `json:"total_fees"`
	TotalWeight  uint64 `json:"total_weight"`
	TotalSize    uint64 `json:"total_size"`
}

// templateCmd 一次性组装区块模板并打印摘要
var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "组装一个区块模板并打印摘要",
	RunE: func(cmd *cobra.Command, args []string) error {
		payout, err := decodeMinerAddress(minerFlag)
		if err != nil {
			return err
		}

		user, err := loadUserConfig()
		if err != nil {
			return err
		}

		var asm blockiface.Assembler
		app := fx.New(
			coreModules(user),
			fx.NopLogger,
			fx.Populate(&asm),
		)

		startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := app.Start(startCtx); err != nil {
			return fmt.Errorf("节点启动失败: %w", err)
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			_ = app.Stop(stopCtx)
		}()

		template, err := asm.CreateNewBlock(context.Background(), payout)
		if err != nil {
			return fmt.Errorf("模板组装失败: %w", err)
		}

		return printSummary(template)
	},
}

func init() {
	templateCmd.Flags().StringVar(&minerFlag, "miner", "", "矿工收款地址 (Base58, 必需)")
	_ = templateCmd.MarkFlagRequired("miner")
}

func printSummary(template *types.BlockTemplate) error {
	summary := templateSummary{
		Height:       template.Header.Height,
		PreviousHash: hex.EncodeToString(template.Header.PreviousHash),
		MerkleRoot:   hex.EncodeToString(template.Header.MerkleRoot),
		StateRoot:    hex.EncodeToString(template.Header.StateRoot),
		Timestamp:    template.Header.Timestamp,
		Difficulty:   template.Header.Difficulty,
		TxCount:      template.TxCount,
		TotalFees:    template.TotalFees,
		TotalWeight:  template.TotalWeight,
		TotalSize:    template.TotalSize,
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化模板摘要失败: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
