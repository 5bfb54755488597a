// Package types 提供区块相关的业务数据结构
package types

// BlockHeader 区块头
//
// 🎯 **PoW区块头**：
// StateRoot 是合约状态库的根摘要，在模板外层状态上下文
// 最终提交之后才写入（模板返回前的最后一次修改）。
type BlockHeader struct {
	// ChainID 链标识
	ChainID uint64

	// Version 区块版本
	Version uint32

	// PreviousHash 父区块哈希（32字节）
	PreviousHash []byte

	// MerkleRoot 交易Merkle根（32字节）
	MerkleRoot []byte

	// Timestamp 区块时间戳（Unix秒）
	Timestamp uint64

	// Height 区块高度
	Height uint64

	// Nonce 挖矿随机数（8字节，挖矿时修改）
	Nonce []byte

	// Difficulty 难度值
	Difficulty uint64

	// StateRoot 合约状态根摘要（32字节）
	StateRoot []byte
}

// BlockBody 区块体
type BlockBody struct {
	// Transactions 交易列表（Coinbase在首位）
	Transactions []*Transaction
}

// Block 完整区块
type Block struct {
	Header *BlockHeader
	Body   *BlockBody
}

// ChainInfo 链尖信息
//
// 由链状态查询服务返回，供区块组装器读取当前高度/父哈希/难度。
type ChainInfo struct {
	// Height 当前链高度
	Height uint64

	// BestBlockHash 最佳区块哈希（32字节）
	BestBlockHash []byte

	// Difficulty 当前难度
	Difficulty uint64
}
