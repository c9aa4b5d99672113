package publisher

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"github.com/imbue-bit/no-JIT/internal/logger"
	"github.com/imbue-bit/no-JIT/internal/types"
	"github.com/imbue-bit/no-JIT/internal/utils"
)

// hookABI covers the single governor method the guard writes.
const hookABI = `[
	{"inputs":[{"components":[{"internalType":"uint128","name":"thresholdRatioBps","type":"uint128"},{"internalType":"uint24","name":"feePips","type":"uint24"}],"internalType":"struct JITDefenseHook.FeeTier[]","name":"_newTiers","type":"tuple[]"}],"name":"setFeeTiers","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// feeTierArg mirrors the hook's FeeTier tuple for ABI encoding.
type feeTierArg struct {
	ThresholdRatioBps *big.Int `abi:"thresholdRatioBps"`
	FeePips           *big.Int `abi:"feePips"`
}

// HookPublisher signs and submits setFeeTiers transactions to the JIT defense
// hook with the governor key.
type HookPublisher struct {
	logger              zerolog.Logger
	client              *ethclient.Client
	hook                common.Address
	abi                 abi.ABI
	chainID             *big.Int
	key                 *ecdsa.PrivateKey
	from                common.Address
	gasLimit            uint64
	gasFeeCapMultiplier float64
}

var _ FeePublisher = (*HookPublisher)(nil)

// NewHookPublisher creates a publisher bound to one hook contract.
// governorKeyHex is the hex-encoded private key of the hook governor.
func NewHookPublisher(client *ethclient.Client, hook common.Address, chainID uint64, governorKeyHex string, gasLimit uint64, gasFeeCapMultiplier float64) (*HookPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("eth client cannot be nil")
	}
	if gasLimit == 0 {
		return nil, fmt.Errorf("gas limit must be positive")
	}
	if gasFeeCapMultiplier < 1 {
		return nil, fmt.Errorf("gas fee cap multiplier must be at least 1, got %f", gasFeeCapMultiplier)
	}

	parsedABI, err := abi.JSON(strings.NewReader(hookABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse hook ABI: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(governorKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse governor private key: %w", err)
	}

	return &HookPublisher{
		logger:              logger.GetForComponent("hook_publisher"),
		client:              client,
		hook:                hook,
		abi:                 parsedABI,
		chainID:             new(big.Int).SetUint64(chainID),
		key:                 key,
		from:                crypto.PubkeyToAddress(key.PublicKey),
		gasLimit:            gasLimit,
		gasFeeCapMultiplier: gasFeeCapMultiplier,
	}, nil
}

// PublishFeeTiers encodes the tier table, builds an EIP-1559 transaction with
// headroom over the suggested gas price, signs it with the governor key and
// broadcasts it.
func (h *HookPublisher) PublishFeeTiers(ctx context.Context, tiers []types.FeeTier) (string, error) {
	if len(tiers) == 0 {
		return "", fmt.Errorf("refusing to publish an empty fee tier table")
	}

	args := make([]feeTierArg, len(tiers))
	for i, t := range tiers {
		args[i] = feeTierArg{
			ThresholdRatioBps: new(big.Int).SetUint64(uint64(t.RatioBps)),
			FeePips:           new(big.Int).SetUint64(uint64(t.FeePips)),
		}
	}

	data, err := h.abi.Pack("setFeeTiers", args)
	if err != nil {
		return "", fmt.Errorf("failed to pack setFeeTiers call: %w", err)
	}

	nonce, err := h.client.PendingNonceAt(ctx, h.from)
	if err != nil {
		return "", fmt.Errorf("failed to fetch governor nonce: %w", err)
	}

	gasPrice, err := h.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas price: %w", err)
	}

	gasTipCap, err := h.client.SuggestGasTipCap(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch gas tip cap: %w", err)
	}

	gasFeeCap, err := utils.ScaleIntByFloat(sdkmath.NewIntFromBigInt(gasPrice), h.gasFeeCapMultiplier)
	if err != nil {
		return "", fmt.Errorf("failed to compute gas fee cap: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:   h.chainID,
		Nonce:     nonce,
		GasTipCap: gasTipCap,
		GasFeeCap: gasFeeCap.BigInt(),
		Gas:       h.gasLimit,
		To:        &h.hook,
		Data:      data,
	})

	signedTx, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(h.chainID), h.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign setFeeTiers transaction: %w", err)
	}

	if err := h.client.SendTransaction(ctx, signedTx); err != nil {
		return "", fmt.Errorf("failed to broadcast setFeeTiers transaction: %w", err)
	}

	txHash := signedTx.Hash().Hex()
	h.logger.Info().
		Str("tx_hash", txHash).
		Int("tiers", len(tiers)).
		Uint64("nonce", nonce).
		Str("gas_fee_cap", gasFeeCap.String()).
		Msg("Broadcast fee tier update")

	return txHash, nil
}

// Close is a no-op; the underlying client is owned by the caller and shared
// with the state provider.
func (h *HookPublisher) Close() error {
	return nil
}
