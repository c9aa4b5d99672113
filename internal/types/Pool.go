package types

// PoolState is an immutable snapshot of the live pool taken at the start of a
// cycle. ActiveLiquidity is unit-normalized (raw uint128 chain liquidity
// divided by the configured precision factor) and GasPrice is in wei.
// Tick, ProtocolFee and LPFee are informational; the solver does not consume
// them.
type PoolState struct {
	ActiveLiquidity float64
	Tick            int32
	ProtocolFee     uint16
	LPFee           uint32
	GasPrice        float64
}
