package config

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
)

// Endpoint and contract configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// NodeRPC is the JSON-RPC endpoint of the target EVM node.
	NodeRPC string
	// PoolManagerAddress is the address of the PoolManager contract holding
	// the defended pool.
	PoolManagerAddress common.Address
	// HookAddress is the address of the JIT defense hook receiving fee tier
	// updates.
	HookAddress common.Address
	// PoolID is the 32-byte identifier of the defended pool.
	PoolID common.Hash
)

// loadEndpointConfig loads endpoint and contract configuration from
// environment variables. This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	NodeRPC, err = getEnv("NODE_RPC")
	if err != nil {
		return err
	}

	PoolManagerAddress, err = getEnvAsAddress("POOL_MANAGER_ADDRESS")
	if err != nil {
		return err
	}

	HookAddress, err = getEnvAsAddress("HOOK_ADDRESS")
	if err != nil {
		return err
	}

	PoolID, err = getEnvAsHash("POOL_ID")
	if err != nil {
		return err
	}

	log.Debug().
		Str("NodeRPC", NodeRPC).
		Str("PoolManagerAddress", PoolManagerAddress.Hex()).
		Str("HookAddress", HookAddress.Hex()).
		Str("PoolID", PoolID.Hex()).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}

// getEnvAsAddress retrieves an environment variable as a checksummed EVM address.
func getEnvAsAddress(key string) (common.Address, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(valueStr) {
		return common.Address{}, errors.New("environment variable " + key + " must be a valid hex address, got: " + valueStr)
	}
	return common.HexToAddress(valueStr), nil
}

// getEnvAsHash retrieves an environment variable as a 32-byte hex identifier.
func getEnvAsHash(key string) (common.Hash, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return common.Hash{}, err
	}
	raw := strings.TrimPrefix(valueStr, "0x")
	decoded, err := hex.DecodeString(raw)
	if err != nil || len(decoded) != common.HashLength {
		return common.Hash{}, errors.New("environment variable " + key + " must be a 32-byte hex value, got: " + valueStr)
	}
	return common.BytesToHash(decoded), nil
}
