package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/imbue-bit/no-JIT/internal/logger"
	"github.com/imbue-bit/no-JIT/internal/types"
	"github.com/imbue-bit/no-JIT/internal/utils"
)

// poolManagerABI covers the two view functions the guard reads each cycle.
const poolManagerABI = `[
	{"inputs":[{"internalType":"PoolId","name":"id","type":"bytes32"}],"name":"getLiquidity","outputs":[{"internalType":"uint128","name":"liquidity","type":"uint128"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"PoolId","name":"id","type":"bytes32"}],"name":"getSlot0","outputs":[{"internalType":"uint160","name":"sqrtPriceX96","type":"uint160"},{"internalType":"int24","name":"tick","type":"int24"},{"internalType":"uint16","name":"protocolFee","type":"uint16"},{"internalType":"uint24","name":"lpFee","type":"uint24"}],"stateMutability":"view","type":"function"}
]`

// EthereumProvider reads pool state from a PoolManager contract over JSON-RPC.
type EthereumProvider struct {
	logger             zerolog.Logger
	client             *ethclient.Client
	poolManager        common.Address
	poolID             common.Hash
	abi                abi.ABI
	liquidityPrecision int
}

var _ StateProvider = (*EthereumProvider)(nil)

// NewEthereumProvider creates a provider bound to one pool on one PoolManager.
// liquidityPrecision is the number of decimals used to unit-normalize the raw
// uint128 liquidity value before it is handed to the solver.
func NewEthereumProvider(client *ethclient.Client, poolManager common.Address, poolID common.Hash, liquidityPrecision int) (*EthereumProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("eth client cannot be nil")
	}

	parsedABI, err := abi.JSON(strings.NewReader(poolManagerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool manager ABI: %w", err)
	}

	return &EthereumProvider{
		logger:             logger.GetForComponent("chain_provider"),
		client:             client,
		poolManager:        poolManager,
		poolID:             poolID,
		abi:                parsedABI,
		liquidityPrecision: liquidityPrecision,
	}, nil
}

// PoolState performs the three reads of a cycle: getLiquidity, getSlot0 and
// the suggested gas price, and converts them into the solver's input domain.
func (p *EthereumProvider) PoolState(ctx context.Context) (types.PoolState, error) {
	rawLiquidity, err := p.getLiquidity(ctx)
	if err != nil {
		return types.PoolState{}, fmt.Errorf("failed to read pool liquidity: %w", err)
	}

	tick, protocolFee, lpFee, err := p.getSlot0(ctx)
	if err != nil {
		return types.PoolState{}, fmt.Errorf("failed to read pool slot0: %w", err)
	}

	gasPrice, err := p.client.SuggestGasPrice(ctx)
	if err != nil {
		return types.PoolState{}, fmt.Errorf("failed to read gas price: %w", err)
	}

	liquidity, err := utils.SDKIntToFloat64(sdkmath.NewIntFromBigInt(rawLiquidity), p.liquidityPrecision)
	if err != nil {
		return types.PoolState{}, fmt.Errorf("failed to normalize pool liquidity: %w", err)
	}

	state := types.PoolState{
		ActiveLiquidity: liquidity,
		Tick:            tick,
		ProtocolFee:     protocolFee,
		LPFee:           lpFee,
		GasPrice:        float64(gasPrice.Uint64()),
	}

	p.logger.Debug().
		Str("raw_liquidity", rawLiquidity.String()).
		Float64("active_liquidity", state.ActiveLiquidity).
		Int32("tick", state.Tick).
		Str("gas_price", gasPrice.String()).
		Msg("Fetched pool state")

	return state, nil
}

// Close releases the underlying RPC connection.
func (p *EthereumProvider) Close() error {
	p.client.Close()
	return nil
}

func (p *EthereumProvider) getLiquidity(ctx context.Context) (*big.Int, error) {
	data, err := p.abi.Pack("getLiquidity", p.poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to pack getLiquidity call: %w", err)
	}

	output, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &p.poolManager, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("getLiquidity call failed: %w", err)
	}

	results, err := p.abi.Unpack("getLiquidity", output)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack getLiquidity result: %w", err)
	}

	liquidity, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected getLiquidity result type %T", results[0])
	}
	return liquidity, nil
}

func (p *EthereumProvider) getSlot0(ctx context.Context) (int32, uint16, uint32, error) {
	data, err := p.abi.Pack("getSlot0", p.poolID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to pack getSlot0 call: %w", err)
	}

	output, err := p.client.CallContract(ctx, ethereum.CallMsg{To: &p.poolManager, Data: data}, nil)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("getSlot0 call failed: %w", err)
	}

	results, err := p.abi.Unpack("getSlot0", output)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to unpack getSlot0 result: %w", err)
	}
	if len(results) != 4 {
		return 0, 0, 0, fmt.Errorf("unexpected getSlot0 result arity %d", len(results))
	}

	tick, ok := results[1].(*big.Int)
	if !ok {
		return 0, 0, 0, fmt.Errorf("unexpected tick result type %T", results[1])
	}
	protocolFee, ok := results[2].(uint16)
	if !ok {
		return 0, 0, 0, fmt.Errorf("unexpected protocolFee result type %T", results[2])
	}
	lpFee, ok := results[3].(*big.Int)
	if !ok {
		return 0, 0, 0, fmt.Errorf("unexpected lpFee result type %T", results[3])
	}

	return int32(tick.Int64()), protocolFee, uint32(lpFee.Uint64()), nil
}
