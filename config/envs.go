package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultMaxMessageSize  = 1024 * 6
	defaultLeaderboardKey  = "duo-platformer:endless"
	defaultLeaderboardSize = 10
	defaultMongoDB         = "duo_platformer"
)

// Config holds the application's configuration values.
type Config struct {
	HostIP          string // Address the game socket binds to, empty for all interfaces
	GamePort        int    // Port for the game socket, 0 means ask on stdin
	StatusAddr      string // Address of the HTTP status API, empty disables it
	MaxMessageSize  int    // Largest accepted request in bytes
	RedisAddr       string // Redis address for the endless leaderboard, empty disables it
	RedisPassword   string // Password for Redis
	LeaderboardKey  string // Sorted set key holding endless scores
	LeaderboardSize int    // Number of entries kept on the leaderboard
	MongoURI        string // MongoDB URI for race results, empty disables them
	MongoDB         string // Database name for race results
	GinMode         string // Mode for the Gin framework (e.g., release, debug, test)
	TraceOutput     string // Where finished spans go: "stdout", a file path, or empty for nowhere
}

// Envs holds the application's configuration loaded from environment variables.
var Envs = initConfig()

// initConfig initializes and returns the application configuration.
// It loads environment variables from a .env file.
func initConfig() Config {
	// Load .env file if available
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	return Load()
}

// Load reads the configuration from the current environment.
func Load() Config {
	return Config{
		HostIP:          getEnvWithDefault("HOST_IP", ""),
		GamePort:        getEnvAsIntWithDefault("GAME_PORT", 0),
		StatusAddr:      getEnvWithDefault("STATUS_ADDR", ""),
		MaxMessageSize:  getEnvAsIntWithDefault("MAX_MESSAGE_SIZE", defaultMaxMessageSize),
		RedisAddr:       getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:   getEnvWithDefault("REDIS_PASSWORD", ""),
		LeaderboardKey:  getEnvWithDefault("LEADERBOARD_KEY", defaultLeaderboardKey),
		LeaderboardSize: getEnvAsIntWithDefault("LEADERBOARD_SIZE", defaultLeaderboardSize),
		MongoURI:        getEnvWithDefault("MONGO_URI", ""),
		MongoDB:         getEnvWithDefault("MONGO_DB", defaultMongoDB),
		GinMode:         getEnvWithDefault("GIN_MODE", "release"),
		TraceOutput:     getEnvWithDefault("TRACE_OUTPUT", ""),
	}
}

// getEnvAsIntWithDefault retrieves the value of an environment variable as an integer.
// It logs a fatal error if the value is set but cannot be parsed.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Fatalf("[APP] [FATAL] Environment variable %s must be an integer: %v", key, err)
	}
	return value
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
