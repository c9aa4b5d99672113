package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// ChainID is the chain ID of the target EVM network.
	ChainID uint64

	// GovernorPrivateKey is the hex-encoded private key of the hook governor
	// used to sign fee tier updates.
	GovernorPrivateKey string

	// DefaultGasLimit is the gas limit for fee tier update transactions.
	DefaultGasLimit uint64
	// GasFeeCapMultiplier is the headroom multiplier applied to the suggested
	// gas price when setting the transaction fee cap.
	GasFeeCapMultiplier float64

	// LiquidityPrecision is the number of decimals used to unit-normalize raw
	// uint128 pool liquidity before it enters the solver.
	LiquidityPrecision int

	// LoopInterval is the wall-clock cadence of the guard cycle.
	LoopInterval time.Duration
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	ChainID, err = getEnvAsUint64("CHAIN_ID")
	if err != nil {
		return err
	}

	GovernorPrivateKey, err = getEnv("GOVERNOR_PRIVATE_KEY")
	if err != nil {
		return err
	}

	DefaultGasLimit, err = getEnvAsUint64("GAS_DEFAULT_LIMIT")
	if err != nil {
		return err
	}

	GasFeeCapMultiplier, err = getEnvAsFloat64("GAS_FEE_CAP_MULTIPLIER")
	if err != nil {
		return err
	}

	LiquidityPrecision, err = getEnvAsInt("LIQUIDITY_PRECISION")
	if err != nil {
		return err
	}

	intervalSeconds, err := getEnvAsUint64("LOOP_INTERVAL_SECONDS")
	if err != nil {
		return err
	}
	if intervalSeconds == 0 {
		return errors.New("environment variable LOOP_INTERVAL_SECONDS must be positive")
	}
	LoopInterval = time.Duration(intervalSeconds) * time.Second

	// Load endpoint and contract configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	log.Debug().
		Uint64("ChainID", ChainID).
		Uint64("DefaultGasLimit", DefaultGasLimit).
		Float64("GasFeeCapMultiplier", GasFeeCapMultiplier).
		Dur("LoopInterval", LoopInterval).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt retrieves an environment variable as an int. Returns error if not set or invalid.
func getEnvAsInt(key string) (int, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsFloat64 retrieves an environment variable as a float64. Returns error if not set or invalid.
func getEnvAsFloat64(key string) (float64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}
