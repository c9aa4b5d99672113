package main

import (
	"context"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/imbue-bit/no-JIT/internal/chain"
	"github.com/imbue-bit/no-JIT/internal/config"
	"github.com/imbue-bit/no-JIT/internal/guard"
	"github.com/imbue-bit/no-JIT/internal/logger"
	"github.com/imbue-bit/no-JIT/internal/publisher"
	"github.com/imbue-bit/no-JIT/internal/state"
	"github.com/imbue-bit/no-JIT/internal/web"
)

// main is the entry point for the JIT guard daemon.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("JIT Guard Starting...")

	// Initialize Database Connection (market parameters and published table)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Market Parameters
	marketParams, err := state.LoadActiveMarketParameters(guard.DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active market parameters, using defaults and saving.")
		defaultParams := config.DefaultMarketParameters
		if _, err := state.SaveMarketParameters(defaultParams, guard.DEFAULT_PARAMS_CONFIG_NAME, guard.DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default market parameters.")
		}
		marketParams = &defaultParams
	}
	log.Info().Msg("Market parameters loaded successfully.")

	// --- Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, guard.DEFAULT_PARAMS_CONFIG_NAME)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting guard status server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// Initialize RPC Connection
	ethClient, err := ethclient.Dial(config.NodeRPC)
	if err != nil {
		log.Fatal().Err(err).Msg("RPC connection error")
	}
	defer ethClient.Close()
	log.Info().Str("endpoint", config.NodeRPC).Msg("RPC connected")

	// --- 2. Chain Collaborators Initialization (with Safety Switch) ---
	guardMode := os.Getenv("GUARD_MODE")
	if guardMode != "live" {
		log.Fatal().Msg("GUARD_MODE is not set to 'live'. Halting to prevent accidental execution. Set GUARD_MODE=live to run.")
	}
	log.Warn().Msg("Initializing guard in LIVE mode. Real transactions will be broadcast.")

	provider, err := chain.NewEthereumProvider(ethClient, config.PoolManagerAddress, config.PoolID, config.LiquidityPrecision)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize chain state provider")
	}

	feePublisher, err := publisher.NewHookPublisher(
		ethClient,
		config.HookAddress,
		config.ChainID,
		config.GovernorPrivateKey,
		config.DefaultGasLimit,
		config.GasFeeCapMultiplier,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize fee publisher")
	}

	// --- 3. Create Guard Instance with Dependency Injection ---
	log.Info().Msg("Creating guard instance with dependency injection...")

	guardConfig := guard.Config{
		Provider:      provider,
		Publisher:     feePublisher,
		Params:        marketParams,
		ConfigName:    guard.DEFAULT_PARAMS_CONFIG_NAME,
		ConfigVersion: guard.DEFAULT_PARAMS_CONFIG_VERSION,
	}

	guardInstance, err := guard.New(guardConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create guard instance")
	}

	log.Info().Msg("Guard instance created successfully")

	// --- 4. Start Guard Main Loop ---
	log.Info().Str("interval", config.LoopInterval.String()).Msg("Starting guard main loop")

	ctx := context.Background()

	// Start the guard loop (this will run indefinitely)
	guardInstance.RunLoop(ctx, config.LoopInterval)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
