// Package execution 提供基于wazero的合约执行器实现
package execution

// 燃料成本表
//
// 💡 宿主函数按调用计费，存储写入额外按字节计费。
// 数值为协议常量，修改会导致共识分叉。
const (
	gasBase           uint64 = 500 // 单次调用的固定开销
	gasPerPayloadByte uint64 = 4   // 入参载荷按字节计费
	gasStorageGet     uint64 = 50
	gasStorageSet     uint64 = 200
	gasStoragePerByte uint64 = 8 // 存储写入按字节计费
	gasStorageDelete  uint64 = 100
	gasBalanceRead    uint64 = 20
	gasTransfer       uint64 = 300
	gasEnvRead        uint64 = 10 // 高度/难度等环境读取
)

// gasMeter 燃料计量器
//
// 超限时将used钳制到limit，调用方据此判定OutOfGas。
type gasMeter struct {
	limit uint64
	used  uint64
}

func newGasMeter(limit uint64) *gasMeter {
	return &gasMeter{limit: limit}
}

// charge 扣减燃料，超限返回false
func (g *gasMeter) charge(amount uint64) bool {
	if g.used+amount > g.limit || g.used+amount < g.used {
		g.used = g.limit
		return false
	}
	g.used += amount
	return true
}

// remaining 剩余燃料
func (g *gasMeter) remaining() uint64 {
	return g.limit - g.used
}
