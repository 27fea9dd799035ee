package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/beka-birhanu/duo-platformer/api"
	gameapi "github.com/beka-birhanu/duo-platformer/api/game"
	api_i "github.com/beka-birhanu/duo-platformer/api/i"
	"github.com/beka-birhanu/duo-platformer/config"
	"github.com/beka-birhanu/duo-platformer/game"
	jsonenc "github.com/beka-birhanu/duo-platformer/game/json_encoder"
	logger "github.com/beka-birhanu/duo-platformer/infrastruture/log"
	"github.com/beka-birhanu/duo-platformer/infrastruture/metrics"
	"github.com/beka-birhanu/duo-platformer/infrastruture/repo"
	"github.com/beka-birhanu/duo-platformer/infrastruture/sortedstorage"
	"github.com/beka-birhanu/duo-platformer/infrastruture/tracing"
	"github.com/beka-birhanu/duo-platformer/service"
	"github.com/beka-birhanu/duo-platformer/service/i"
	"github.com/beka-birhanu/duo-platformer/tcp"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	connectTimeout       = 10 * time.Second
	matchResultsCollName = "match_results"
	serviceName          = "duo-platformer"
)

// Global variables for dependencies
var (
	redisClient        *redis.Client
	mongoClient        *mongo.Client
	session            *game.Session
	encoder            *jsonenc.JSON
	registry           *prometheus.Registry
	tracerProvider     *sdktrace.TracerProvider
	traceOutput        *os.File
	sessionMetrics     i.Metrics
	leaderboard        *service.Leaderboard
	matchResults       i.MatchResultRepo
	gameSessionManager *service.GameSessionManager
	serverSocket       *tcp.ServerSocketManager
	statusController   api_i.Controller
	router             *api.Router
	appLogger          i.Logger
)

func newLogger(prefix, color string) i.Logger {
	l, err := logger.New(prefix, color, os.Stdout)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating %s logger: %v", prefix, err))
		os.Exit(1)
	}
	return l
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		appLogger.Warning("REDIS_ADDR not set, endless leaderboard disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLeaderboard() {
	if redisClient == nil {
		return
	}

	var err error
	leaderboard, err = service.NewLeaderboard(
		sortedstorage.NewRedisSortedSet(redisClient),
		newLogger("LEADERBOARD", config.ColorYellow),
		&service.LeaderboardOptions{
			Key:  config.Envs.LeaderboardKey,
			Size: int64(config.Envs.LeaderboardSize),
		},
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initMongo(ctx context.Context) {
	if config.Envs.MongoURI == "" {
		appLogger.Warning("MONGO_URI not set, race results are not stored")
		return
	}

	var err error
	mongoClient, err = mongo.Connect(ctx, options.Client().ApplyURI(config.Envs.MongoURI))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initMatchResultRepo() {
	if mongoClient == nil {
		return
	}
	matchResults = repo.NewMatchResultRepo(mongoClient, config.Envs.MongoDB, matchResultsCollName)
	appLogger.Info("Match result repository initialized")
}

func initMetrics() {
	registry = prometheus.NewRegistry()
	sessionMetrics = metrics.New(registry, "")
	appLogger.Info("Metrics initialized")
}

func initTracing() {
	var w io.Writer
	switch config.Envs.TraceOutput {
	case "":
	case "stdout":
		w = os.Stdout
	default:
		f, err := os.OpenFile(config.Envs.TraceOutput, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			appLogger.Error(fmt.Sprintf("Opening trace output: %v", err))
			os.Exit(1)
		}
		traceOutput, w = f, f
	}

	var err error
	tracerProvider, err = tracing.NewProvider(serviceName, w)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating tracer provider: %v", err))
		os.Exit(1)
	}
	otel.SetTracerProvider(tracerProvider)
	appLogger.Info("Tracing initialized")
}

func initGameSessionManager() {
	session = game.NewSession()
	encoder = jsonenc.New()

	c := &service.Config{
		Session: session,
		Encoder: encoder,
		Logger:  newLogger("SESSION", config.ColorCyan),
		Metrics: sessionMetrics,
		Results: matchResults,

		TracerProvider: tracerProvider,
	}
	// A nil *Leaderboard must not become a non-nil interface.
	if leaderboard != nil {
		c.Scores = leaderboard
	}

	var err error
	gameSessionManager, err = service.NewGameSessionManager(c)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Game session manager initialized")
}

func initServerSocket(addr string) {
	var err error
	serverSocket, err = tcp.NewServerSocketManager(
		tcp.ServerConfig{ListenAddr: addr},
		tcp.ServerWithConnectionHandler(gameSessionManager.HandleConnection),
		tcp.ServerWithMaxMessageSize(config.Envs.MaxMessageSize),
		tcp.ServerWithLogger(newLogger("SOCKET", config.ColorBlue)),
	)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Starting game socket: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Server started")
}

func initStatusController() {
	if config.Envs.StatusAddr == "" {
		return
	}

	c := gameapi.StatusConfig{
		Session:        session,
		Encoder:        encoder,
		OnConnection:   gameSessionManager.HandleConnection,
		MaxMessageSize: config.Envs.MaxMessageSize,
		Logger:         newLogger("STATUS", config.ColorMagenta),
	}
	if leaderboard != nil {
		c.Board = leaderboard
	}

	var err error
	statusController, err = gameapi.NewStatusController(c)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating status controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Status controller initialized")
}

func initRouter() {
	if statusController == nil {
		appLogger.Warning("STATUS_ADDR not set, status API disabled")
		return
	}

	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		Addr:           config.Envs.StatusAddr,
		BaseURL:        "/api",
		Controllers:    []api_i.Controller{statusController},
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         newLogger("API", config.ColorMagenta),
	})
	appLogger.Info("Router initialized")
}

// listenAddr joins the address and port from args, falling back to the environment and
// then to asking on in for the port. A single argument that parses as a port is the port.
func listenAddr(args []string, in io.Reader, out io.Writer) (string, error) {
	host := config.Envs.HostIP
	port := config.Envs.GamePort

	switch len(args) {
	case 1:
		if p, err := parsePort(args[0]); err == nil {
			port = p
		} else {
			host = args[0]
		}
	case 2:
		p, err := parsePort(args[1])
		if err != nil {
			return "", err
		}
		host, port = args[0], p
	}

	if port == 0 {
		fmt.Fprint(out, "Port: ")
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", errors.New("no port given")
		}
		p, err := parsePort(scanner.Text())
		if err != nil {
			return "", err
		}
		port = p
	}

	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p <= 0 || p > 65535 {
		return 0, fmt.Errorf("invalid port %q", s)
	}
	return p, nil
}

func run(cmd *cobra.Command, args []string) error {
	addr, err := listenAddr(args, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	initRedis(connectCtx)
	if redisClient != nil {
		defer redisClient.Close()
	}
	initMongo(connectCtx)
	if mongoClient != nil {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}

	initLeaderboard()
	initMatchResultRepo()
	initMetrics()
	initTracing()
	defer func() {
		_ = tracerProvider.Shutdown(context.Background())
		if traceOutput != nil {
			_ = traceOutput.Close()
		}
	}()
	initGameSessionManager()
	initServerSocket(addr)
	initStatusController()
	initRouter()

	if router != nil {
		go func() {
			if err := router.Run(ctx); err != nil {
				appLogger.Error(fmt.Sprintf("Status API stopped: %v", err))
			}
		}()
	}

	go func() {
		<-ctx.Done()
		_ = serverSocket.Stop()
	}()

	return serverSocket.Serve()
}

func main() {
	appLogger = newLogger("APP", config.ColorGreen)

	rootCmd := &cobra.Command{
		Use:   "duo-platformer [address] [port]",
		Short: "Two-player session server for the duo platformer",
		Long: `Runs the authoritative session server for one two-player room.

Players connect over TCP and exchange newline-delimited JSON. A single argument
that is a number is taken as the port. When the port is neither given nor set in
GAME_PORT it is read from stdin.`,
		Args:          cobra.MaximumNArgs(2),
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := rootCmd.Execute(); err != nil {
		appLogger.Error(err.Error())
		os.Exit(1)
	}
}
