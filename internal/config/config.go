package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/NiftyBay/market-engine/internal/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env     string
	Network string
	Index   string
	Debug   bool
	LogPath string

	Owner         string
	EngineAddress string
	CustodyMode   string
	FeeMode       string
	DefaultFee    string
	ApiPort       string

	TokenRpc      TokenRpcConfig
	ElasticSearch ElasticSearchConfig
	Aws           AwsConfig
}

type TokenRpcConfig struct {
	Url     string
	Debug   bool
	Timeout int
}

type AwsConfig struct {
	AccessKey string
	SecretKey string
	Region    string
	QueueName string
}

type ElasticSearchConfig struct {
	Hosts            []string
	Sniff            bool
	HealthCheck      bool
	Debug            bool
	Username         string
	Password         string
	BulkPersistCount int
	Refresh          string
	MappingDir       string
	Reindex          bool
}

const (
	CustodyEscrow     = "escrow"
	CustodySellerHeld = "sellerHeld"

	FeeDirect   = "direct"
	FeeBuffered = "buffered"

	DefaultFeeSkip = "skip"
	DefaultFeeSink = "sink"
)

func Init(service string) {
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().With(zap.Error(err)).Warn("Unable to load .env, using environment")
	}

	initLogger(service)
}

func initLogger(service string) {
	log.NewLogger(Get().LogPath+"/"+service+".log", Get().Debug)
}

func Get() *Config {
	return &Config{
		Env:           getString("ENV", ""),
		Network:       getString("NETWORK", "mainnet"),
		Index:         getString("INDEX_NAME", "market"),
		Debug:         getBool("DEBUG", false),
		LogPath:       getString("LOG_PATH", "./var/logs"),
		Owner:         getString("OWNER_ADDRESS", ""),
		EngineAddress: getString("ENGINE_ADDRESS", ""),
		CustodyMode:   getString("CUSTODY_MODE", CustodyEscrow),
		FeeMode:       getString("FEE_MODE", FeeDirect),
		DefaultFee:    getString("DEFAULT_FEE_POLICY", DefaultFeeSkip),
		ApiPort:       getString("API_PORT", "8080"),
		Aws: AwsConfig{
			AccessKey: getString("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getString("AWS_SECRET_KEY_ID", ""),
			Region:    getString("AWS_REGION", ""),
			QueueName: getString("AWS_QUEUE_NAME", ""),
		},
		TokenRpc: TokenRpcConfig{
			Url:     getString("TOKEN_RPC_URL", ""),
			Timeout: getInt("TOKEN_RPC_TIMEOUT", 30),
			Debug:   getBool("TOKEN_RPC_DEBUG", false),
		},
		ElasticSearch: ElasticSearchConfig{
			Hosts:            getSlice("ELASTIC_SEARCH_HOSTS", make([]string, 0), ","),
			Sniff:            getBool("ELASTIC_SEARCH_SNIFF", true),
			HealthCheck:      getBool("ELASTIC_SEARCH_HEALTH_CHECK", true),
			Debug:            getBool("ELASTIC_SEARCH_DEBUG", false),
			Username:         getString("ELASTIC_SEARCH_USERNAME", ""),
			Password:         getString("ELASTIC_SEARCH_PASSWORD", ""),
			BulkPersistCount: getInt("ELASTIC_SEARCH_BULK_PERSIST_COUNT", 300),
			Refresh:          getString("ELASTIC_SEARCH_REFRESH", "wait_for"),
			MappingDir:       getString("ELASTIC_SEARCH_MAPPING_DIR", "./mappings"),
			Reindex:          getBool("REINDEX", false),
		},
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getInt(key string, defaultValue int) int {
	valStr := getString(key, "")
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultValue
	}

	return val
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}

func getSlice(key string, defaultVal []string, sep string) []string {
	valStr := getString(key, "")
	if valStr == "" {
		return defaultVal
	}

	return strings.Split(valStr, sep)
}
